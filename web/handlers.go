package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arraypress/flyouts/app"
	"github.com/arraypress/flyouts/pkg/envelope"
)

// maxBodySize caps request bodies; panel submissions are small.
const maxBodySize = 1 << 20

// payload is the common request body for the POST operations.
type payload struct {
	Manager   string         `json:"manager"`
	Flyout    string         `json:"flyout"`
	ItemID    any            `json:"item_id"`
	FormData  map[string]any `json:"form_data"`
	FieldKey  string         `json:"field_key"`
	Term      string         `json:"term"`
	Include   []any          `json:"include"`
	ActionKey string         `json:"action_key"`
	Nonce     string         `json:"nonce"`
}

// parseBody decodes the request body once into the typed payload and the
// raw map handed to action handlers.
func parseBody(r *http.Request) (payload, map[string]any, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return payload{}, nil, fmt.Errorf("read body: %w", err)
	}
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return payload{}, nil, fmt.Errorf("decode body: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		raw = map[string]any{}
	}
	return p, raw, nil
}

// toRequest converts the wire payload to a dispatch request.
func (p payload) toRequest(raw map[string]any) app.Request {
	return app.Request{
		Namespace: p.Manager,
		Local:     p.Flyout,
		RecordID:  normalizeID(p.ItemID),
		FormData:  p.FormData,
		FieldKey:  p.FieldKey,
		Term:      p.Term,
		Include:   normalizeInclude(p.Include),
		ActionKey: p.ActionKey,
		Payload:   raw,
		Nonce:     p.Nonce,
	}
}

// normalizeID accepts the wire item_id as int or string, defaulting to 0.
func normalizeID(v any) string {
	switch x := v.(type) {
	case nil:
		return "0"
	case string:
		t := strings.TrimSpace(x)
		if t == "" {
			return "0"
		}
		return t
	case float64:
		return strconv.FormatInt(int64(x), 10)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return "0"
	}
}

func normalizeInclude(items []any) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, v := range items {
		var s string
		if f, ok := v.(float64); ok {
			s = strconv.FormatInt(int64(f), 10)
		} else {
			s = strings.TrimSpace(fmt.Sprintf("%v", v))
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// finish writes the response for one operation and records the outcome.
func (h *Handler) finish(w http.ResponseWriter, op, reqID string, started time.Time, err error, write func()) {
	code := "ok"
	if err != nil {
		de, ok := app.AsError(err)
		if !ok {
			de = app.ErrInternal("request failed", err)
		}
		code = de.Code
		h.logger.Warn().
			Str("request_id", reqID).
			Str("operation", op).
			Str("code", de.Code).
			Err(err).
			Msg("dispatch failed")
		envelope.WriteError(w, de.Status, de.Code, de.Message)
	} else {
		h.logger.Debug().
			Str("request_id", reqID).
			Str("operation", op).
			Dur("elapsed", time.Since(started)).
			Msg("dispatch ok")
		write()
	}
	h.metrics.Observe(op, code, time.Since(started).Seconds())
}

// begin sets up per-request bookkeeping.
func (h *Handler) begin() (string, time.Time) {
	if h.metrics != nil {
		h.metrics.DispatchInFlight.Inc()
	}
	return uuid.NewString(), time.Now()
}

func (h *Handler) done() {
	if h.metrics != nil {
		h.metrics.DispatchInFlight.Dec()
	}
}

// Load renders a panel for one record.
func (h *Handler) Load(w http.ResponseWriter, r *http.Request) {
	reqID, started := h.begin()
	defer h.done()

	p, raw, err := parseBody(r)
	if err != nil {
		h.badRequest(w, OpLoad, reqID, started, err)
		return
	}
	res, err := h.dispatcher.Load(p.toRequest(raw))
	h.finish(w, OpLoad, reqID, started, err, func() {
		envelope.OK().Field("html", res.HTML).Write(w)
	})
}

// Save sanitizes and persists a panel submission.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	reqID, started := h.begin()
	defer h.done()

	p, raw, err := parseBody(r)
	if err != nil {
		h.badRequest(w, OpSave, reqID, started, err)
		return
	}
	res, err := h.dispatcher.Save(p.toRequest(raw))
	h.finish(w, OpSave, reqID, started, err, func() {
		envelope.OK().Field("message", res.Message).Write(w)
	})
}

// Delete removes a record.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	reqID, started := h.begin()
	defer h.done()

	p, raw, err := parseBody(r)
	if err != nil {
		h.badRequest(w, OpDelete, reqID, started, err)
		return
	}
	res, err := h.dispatcher.Delete(p.toRequest(raw))
	h.finish(w, OpDelete, reqID, started, err, func() {
		envelope.OK().Field("message", res.Message).Write(w)
	})
}

// Search answers a search field lookup. Parameters arrive in the query
// string: manager, flyout, field_key, term, and repeated or
// comma-separated include ids.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	reqID, started := h.begin()
	defer h.done()

	q := r.URL.Query()
	req := app.Request{
		Namespace: q.Get("manager"),
		Local:     q.Get("flyout"),
		RecordID:  normalizeID(q.Get("item_id")),
		FieldKey:  q.Get("field_key"),
		Term:      q.Get("term"),
		Include:   parseIncludeParam(q["include"]),
	}

	res, err := h.dispatcher.Search(req)
	h.finish(w, OpSearch, reqID, started, err, func() {
		if res.Raw != nil {
			envelope.OK().Field("results", res.Raw).Write(w)
			return
		}
		envelope.OK().Field("results", res.Results).Write(w)
	})
}

// Action routes an action key to its bound handler.
func (h *Handler) Action(w http.ResponseWriter, r *http.Request) {
	reqID, started := h.begin()
	defer h.done()

	p, raw, err := parseBody(r)
	if err != nil {
		h.badRequest(w, OpAction, reqID, started, err)
		return
	}
	res, err := h.dispatcher.Action(p.toRequest(raw))
	h.finish(w, OpAction, reqID, started, err, func() {
		envelope.OK().Merge(res.Extra).Write(w)
	})
}

func (h *Handler) badRequest(w http.ResponseWriter, op, reqID string, started time.Time, err error) {
	h.logger.Warn().Str("request_id", reqID).Str("operation", op).Err(err).Msg("bad request")
	envelope.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body")
	h.metrics.Observe(op, "bad_request", time.Since(started).Seconds())
}

// parseIncludeParam accepts repeated include params and comma lists.
func parseIncludeParam(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

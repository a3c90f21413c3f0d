package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/arraypress/flyouts/app"
	"github.com/arraypress/flyouts/core/component"
	"github.com/arraypress/flyouts/core/manager"
	"github.com/arraypress/flyouts/core/registry"
	"github.com/arraypress/flyouts/core/sanitize"
	"github.com/arraypress/flyouts/domain/panel"
)

type grantAll struct{}

func (grantAll) Can(string) bool { return true }

type denyAll struct{}

func (denyAll) Can(string) bool { return false }

type echoRenderer struct{}

func (echoRenderer) RenderPanel(p *panel.Panel) (string, error) {
	return "<div>" + p.ID + ":" + p.RecordID + "</div>", nil
}

type cents struct{}

func (cents) ToMinorUnits(amount, currency string) (int64, error) {
	var whole, frac int64
	if _, err := fmt.Sscanf(amount, "%d.%d", &whole, &frac); err == nil {
		return whole*100 + frac, nil
	}
	if _, err := fmt.Sscanf(amount, "%d", &whole); err == nil {
		return whole * 100, nil
	}
	return 0, errors.New("bad amount")
}

func (cents) FromMinorUnits(units int64, currency string) string {
	return fmt.Sprintf("%d.%02d", units/100, units%100)
}

type anyAttachment struct{}

func (anyAttachment) IsValid(int64) bool { return true }

type webHarness struct {
	handler *Handler
	saved   map[string]any
	savedID string
	actions []panel.ActionRequest
}

func newWebHarness(t *testing.T, perms interface{ Can(string) bool }) *webHarness {
	t.Helper()

	h := &webHarness{}

	components := component.NewRegistry()
	sanitizer := sanitize.New(sanitize.Deps{
		Currency:    cents{},
		Attachments: anyAttachment{},
		Logger:      zerolog.Nop(),
	})
	reg := registry.New(func(ns string) *manager.Manager {
		return manager.New(ns, manager.Deps{Components: components, Logger: zerolog.Nop()})
	})

	def := &panel.Definition{
		Title: "Order",
		Fields: []panel.Field{
			{Key: "number", Type: panel.TypeText},
			{
				Key:  "customer",
				Type: panel.TypeSearchSelect,
				Search: &panel.SearchConfig{
					Search: func(term string, include []string) ([]panel.SearchResult, error) {
						if len(include) > 0 {
							out := make([]panel.SearchResult, 0, len(include))
							for _, id := range include {
								out = append(out, panel.SearchResult{ID: id, Text: "hydrated " + id})
							}
							return out, nil
						}
						return []panel.SearchResult{{ID: 1, Text: "match " + term}}, nil
					},
				},
			},
			{
				Key:  "toolbar",
				Type: panel.TypeButtonGroup,
				Items: []panel.ActionItem{
					{Label: "Refund", Action: "refund", Handler: func(req panel.ActionRequest) (map[string]any, error) {
						h.actions = append(h.actions, req)
						return map[string]any{"refunded": true}, nil
					}},
				},
			},
		},
		Load: func(id string) (any, error) {
			if id == "404" {
				return nil, panel.ErrRecordNotFound
			}
			return map[string]any{"number": "INV-" + id}, nil
		},
		Save: func(id string, data map[string]any) (any, error) {
			h.saved = data
			h.savedID = id
			return true, nil
		},
		Delete: func(id string) (any, error) { return true, nil },
	}

	mgr, _ := reg.GetOrCreate("shop")
	if err := mgr.RegisterPanel("order", def); err != nil {
		t.Fatalf("RegisterPanel() error = %v", err)
	}

	dispatcher := app.NewDispatcher(app.Deps{
		Registry:    reg,
		Sanitizer:   sanitizer,
		Permissions: perms,
		Renderer:    echoRenderer{},
		Logger:      zerolog.Nop(),
	})
	h.handler = NewHandler(Deps{Dispatcher: dispatcher, Logger: zerolog.Nop()})
	return h
}

func doJSON(t *testing.T, h *Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("{}")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	var parsed map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
	}
	return rec, parsed
}

func TestHandler_Load(t *testing.T) {
	h := newWebHarness(t, grantAll{})

	t.Run("success", func(t *testing.T) {
		rec, body := doJSON(t, h.handler, http.MethodPost, "/load",
			`{"manager":"shop","flyout":"order","item_id":7}`)
		if rec.Code != 200 {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		if body["success"] != true || body["html"] != "<div>shop_order:7</div>" {
			t.Errorf("body = %v", body)
		}
	})

	t.Run("string item id", func(t *testing.T) {
		_, body := doJSON(t, h.handler, http.MethodPost, "/load",
			`{"manager":"shop","flyout":"order","item_id":"12"}`)
		if body["html"] != "<div>shop_order:12</div>" {
			t.Errorf("html = %v", body["html"])
		}
	})

	t.Run("record not found", func(t *testing.T) {
		rec, body := doJSON(t, h.handler, http.MethodPost, "/load",
			`{"manager":"shop","flyout":"order","item_id":"404"}`)
		if rec.Code != 404 || body["code"] != "not_found" {
			t.Errorf("status = %d, body = %v", rec.Code, body)
		}
	})

	t.Run("unknown panel", func(t *testing.T) {
		rec, body := doJSON(t, h.handler, http.MethodPost, "/load",
			`{"manager":"shop","flyout":"invoice"}`)
		if rec.Code != 404 || body["success"] != false {
			t.Errorf("status = %d, body = %v", rec.Code, body)
		}
	})

	t.Run("bad body", func(t *testing.T) {
		rec, body := doJSON(t, h.handler, http.MethodPost, "/load", `{"manager":`)
		if rec.Code != 400 || body["code"] != "bad_request" {
			t.Errorf("status = %d, body = %v", rec.Code, body)
		}
	})
}

func TestHandler_Forbidden(t *testing.T) {
	h := newWebHarness(t, denyAll{})

	rec, body := doJSON(t, h.handler, http.MethodPost, "/load",
		`{"manager":"shop","flyout":"order","item_id":1}`)
	if rec.Code != 403 || body["code"] != "forbidden" {
		t.Errorf("status = %d, body = %v", rec.Code, body)
	}
}

func TestHandler_Save(t *testing.T) {
	h := newWebHarness(t, grantAll{})

	rec, body := doJSON(t, h.handler, http.MethodPost, "/save",
		`{"manager":"shop","flyout":"order","item_id":7,"form_data":{"number":" INV-9 "}}`)
	if rec.Code != 200 {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if body["message"] != "Saved." {
		t.Errorf("message = %v", body["message"])
	}
	if h.saved["number"] != "INV-9" {
		t.Errorf("number = %v, want trimmed", h.saved["number"])
	}
	if h.savedID != "7" {
		t.Errorf("savedID = %q", h.savedID)
	}
}

func TestHandler_Delete(t *testing.T) {
	h := newWebHarness(t, grantAll{})

	rec, body := doJSON(t, h.handler, http.MethodPost, "/delete",
		`{"manager":"shop","flyout":"order","item_id":7}`)
	if rec.Code != 200 || body["message"] != "Deleted." {
		t.Errorf("status = %d, body = %v", rec.Code, body)
	}
}

func TestHandler_Action(t *testing.T) {
	h := newWebHarness(t, grantAll{})

	t.Run("merged extras", func(t *testing.T) {
		rec, body := doJSON(t, h.handler, http.MethodPost, "/action",
			`{"manager":"shop","flyout":"order","item_id":7,"action_key":"refund","reason":"damaged"}`)
		if rec.Code != 200 {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		if body["refunded"] != true || body["success"] != true {
			t.Errorf("body = %v", body)
		}
		if len(h.actions) != 1 {
			t.Fatalf("actions = %d", len(h.actions))
		}
		if h.actions[0].Payload["reason"] != "damaged" {
			t.Errorf("payload = %v, want full body passed through", h.actions[0].Payload)
		}
	})

	t.Run("unknown action", func(t *testing.T) {
		rec, body := doJSON(t, h.handler, http.MethodPost, "/action",
			`{"manager":"shop","flyout":"order","action_key":"explode"}`)
		if rec.Code != 404 || body["code"] != "not_found" {
			t.Errorf("status = %d, body = %v", rec.Code, body)
		}
	})
}

func TestHandler_Search(t *testing.T) {
	h := newWebHarness(t, grantAll{})

	t.Run("free text", func(t *testing.T) {
		rec, body := doJSON(t, h.handler, http.MethodGet,
			"/search?manager=shop&flyout=order&field_key=customer&term=ada", "")
		if rec.Code != 200 {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		results, ok := body["results"].([]any)
		if !ok || len(results) != 1 {
			t.Fatalf("results = %v", body["results"])
		}
		first := results[0].(map[string]any)
		if first["text"] != "match ada" {
			t.Errorf("text = %v", first["text"])
		}
	})

	t.Run("comma separated include", func(t *testing.T) {
		_, body := doJSON(t, h.handler, http.MethodGet,
			"/search?manager=shop&flyout=order&field_key=customer&include=5,9", "")
		results := body["results"].([]any)
		if len(results) != 2 {
			t.Fatalf("results = %v", results)
		}
	})

	t.Run("repeated include params", func(t *testing.T) {
		_, body := doJSON(t, h.handler, http.MethodGet,
			"/search?manager=shop&flyout=order&field_key=customer&include=5&include=9", "")
		results := body["results"].([]any)
		if len(results) != 2 {
			t.Fatalf("results = %v", results)
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		rec, _ := doJSON(t, h.handler, http.MethodGet,
			"/search?manager=shop&flyout=order&field_key=nope", "")
		if rec.Code != 404 {
			t.Errorf("status = %d", rec.Code)
		}
	})
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "0"},
		{"", "0"},
		{"  ", "0"},
		{"abc-7", "abc-7"},
		{float64(42), "42"},
		{int64(9), "9"},
		{true, "0"},
	}
	for _, tt := range tests {
		if got := normalizeID(tt.in); got != tt.want {
			t.Errorf("normalizeID(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// Package app implements the request dispatcher: the use-case layer
// between the JSON transport and the panel registries.
package app

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arraypress/flyouts/core/manager"
	"github.com/arraypress/flyouts/core/registry"
	"github.com/arraypress/flyouts/core/sanitize"
	"github.com/arraypress/flyouts/domain/panel"
	"github.com/arraypress/flyouts/ports"
)

// Request is one parsed dispatch request. Operation-specific fields are
// zero for the operations that do not use them.
type Request struct {
	// Namespace and Local address the panel. With Namespace empty,
	// Local is treated as a compound id ("namespace_localId", the form
	// trigger markup emits) and split on its first underscore.
	Namespace string
	Local     string

	RecordID string

	// FormData is the raw submitted form (save).
	FormData map[string]any

	// FieldKey, Term, and Include drive search.
	FieldKey string
	Term     string
	Include  []string

	// ActionKey selects an action handler; Payload is the full request
	// body handed to it.
	ActionKey string
	Payload   map[string]any

	// Nonce accompanies the mutating operations. Verified only when the
	// dispatcher has a nonce issuer configured.
	Nonce string
}

// LoadResult is the load operation's success payload.
type LoadResult struct {
	HTML string
}

// SaveResult is the save operation's success payload.
type SaveResult struct {
	Message string
}

// DeleteResult is the delete operation's success payload.
type DeleteResult struct {
	Message string
}

// SearchResults is the search operation's success payload. Raw is set
// instead of Results when a legacy raw callback answered.
type SearchResults struct {
	Results []panel.SearchResult
	Raw     any
}

// ActionResult is the action operation's success payload; Extra is merged
// into the success envelope.
type ActionResult struct {
	Extra map[string]any
}

// Deps carries the dispatcher's collaborators.
type Deps struct {
	Registry    *registry.Registry
	Sanitizer   *sanitize.Sanitizer
	Permissions ports.PermissionChecker
	Renderer    ports.Renderer
	Logger      zerolog.Logger

	// Nonces enables nonce verification on save, delete, and action.
	// Nil skips it; embedding hosts often run their own CSRF layer.
	Nonces ports.NonceIssuer
}

// Dispatcher serves the five panel operations. It holds no per-request
// state; every method runs to completion synchronously.
type Dispatcher struct {
	registry    *registry.Registry
	sanitizer   *sanitize.Sanitizer
	permissions ports.PermissionChecker
	renderer    ports.Renderer
	logger      zerolog.Logger
	nonces      ports.NonceIssuer
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(deps Deps) *Dispatcher {
	return &Dispatcher{
		registry:    deps.Registry,
		sanitizer:   deps.Sanitizer,
		permissions: deps.Permissions,
		renderer:    deps.Renderer,
		logger:      deps.Logger,
		nonces:      deps.Nonces,
	}
}

// resolved is the common per-request context after steps 1-4.
type resolved struct {
	mgr    *manager.Manager
	def    *panel.Definition
	fields []panel.Field
}

// resolve runs the shared prefix of every operation: identifier
// normalization, namespace lookup, panel lookup, then the capability
// check. The permission check always runs before any operation-specific
// logic. Compound ids are rewritten into the request in place.
func (d *Dispatcher) resolve(req *Request) (resolved, *Error) {
	if req.Namespace == "" && req.Local != "" {
		ns, local, ok := registry.ParseID(req.Local)
		if !ok {
			return resolved{}, ErrMalformedID(req.Local)
		}
		req.Namespace, req.Local = ns, local
	}
	if req.Namespace == "" || req.Local == "" {
		return resolved{}, ErrNotFound("panel")
	}
	mgr, ok := d.registry.Get(req.Namespace)
	if !ok {
		return resolved{}, ErrNotFound("namespace " + req.Namespace)
	}
	def, ok := mgr.GetPanel(req.Local)
	if !ok {
		return resolved{}, ErrNotFound("panel " + registry.JoinID(req.Namespace, req.Local))
	}

	capability := def.EffectiveCapability()
	if d.permissions == nil || !d.permissions.Can(capability) {
		return resolved{}, ErrForbidden(capability)
	}

	fields, _ := mgr.Fields(req.Local)
	return resolved{mgr: mgr, def: def, fields: fields}, nil
}

// checkNonce verifies the nonce on mutating operations. It runs after
// the permission check and only when an issuer is configured.
func (d *Dispatcher) checkNonce(req Request) *Error {
	if d.nonces == nil {
		return nil
	}
	if !d.nonces.Verify(manager.NonceAction(req.Namespace, req.Local), req.Nonce) {
		return &Error{
			Code:    CodeForbidden,
			Message: "invalid or expired nonce",
			Status:  http.StatusForbidden,
		}
	}
	return nil
}

// Load fetches the record, builds the panel, and renders it.
func (d *Dispatcher) Load(req Request) (LoadResult, error) {
	rc, derr := d.resolve(&req)
	if derr != nil {
		return LoadResult{}, derr
	}
	if rc.def.Load == nil {
		return LoadResult{}, ErrMisconfigured("panel has no load callback")
	}

	data, err := rc.def.Load(req.RecordID)
	if err != nil {
		if errors.Is(err, panel.ErrRecordNotFound) {
			return LoadResult{}, ErrNotFound("record " + req.RecordID)
		}
		return LoadResult{}, ErrInternal("load failed", err)
	}

	built, err := rc.mgr.BuildPanel(req.Local, data, req.RecordID)
	if err != nil {
		return LoadResult{}, ErrInternal("build failed", err)
	}
	if d.renderer == nil {
		return LoadResult{}, ErrMisconfigured("no renderer configured")
	}
	html, err := d.renderer.RenderPanel(built)
	if err != nil {
		return LoadResult{}, ErrInternal("render failed", err)
	}
	return LoadResult{HTML: html}, nil
}

// Save sanitizes the submission, runs optional validation, and invokes
// the host save callback. The effective record id prefers an "id" present
// in the sanitized payload over the transport record id.
func (d *Dispatcher) Save(req Request) (SaveResult, error) {
	rc, derr := d.resolve(&req)
	if derr != nil {
		return SaveResult{}, derr
	}
	if derr := d.checkNonce(req); derr != nil {
		return SaveResult{}, derr
	}
	if rc.def.Save == nil {
		return SaveResult{}, ErrMisconfigured("panel has no save callback")
	}

	clean := d.sanitizer.SanitizeForm(req.FormData, rc.fields)

	if rc.def.Validate != nil {
		if err := rc.def.Validate(req.RecordID, clean); err != nil {
			var verr *panel.ValidationError
			if errors.As(err, &verr) {
				return SaveResult{}, ErrValidation(verr.Message)
			}
			return SaveResult{}, ErrValidation(err.Error())
		}
	}

	recordID := req.RecordID
	if id := payloadID(clean); id != "" {
		recordID = id
	}

	result, err := rc.def.Save(recordID, clean)
	if err != nil {
		return SaveResult{}, ErrInternal("save failed", err)
	}
	if falsy(result) {
		return SaveResult{}, ErrInternal("save callback reported failure", nil)
	}
	return SaveResult{Message: "Saved."}, nil
}

// Delete invokes the host delete callback.
func (d *Dispatcher) Delete(req Request) (DeleteResult, error) {
	rc, derr := d.resolve(&req)
	if derr != nil {
		return DeleteResult{}, derr
	}
	if derr := d.checkNonce(req); derr != nil {
		return DeleteResult{}, derr
	}
	if rc.def.Delete == nil {
		return DeleteResult{}, ErrMisconfigured("panel has no delete callback")
	}

	result, err := rc.def.Delete(req.RecordID)
	if err != nil {
		return DeleteResult{}, ErrInternal("delete failed", err)
	}
	if falsy(result) {
		return DeleteResult{}, ErrInternal("delete callback reported failure", nil)
	}
	return DeleteResult{Message: "Deleted."}, nil
}

// Search locates the search field by key (falling back to its submission
// name) and invokes its callback: a hydration call when an include list is
// present, a free-text call otherwise.
func (d *Dispatcher) Search(req Request) (SearchResults, error) {
	rc, derr := d.resolve(&req)
	if derr != nil {
		return SearchResults{}, derr
	}

	field := findField(rc.fields, req.FieldKey)
	if field == nil {
		return SearchResults{}, ErrNotFound("field " + req.FieldKey)
	}
	if field.Search == nil {
		return SearchResults{}, ErrMisconfigured("field has no search configuration")
	}

	// Legacy raw path: the callback's shape goes back untouched.
	if field.Search.Raw != nil {
		out, err := field.Search.Raw(req.Term, req.Include)
		if err != nil {
			return SearchResults{}, ErrInternal("search failed", err)
		}
		return SearchResults{Raw: out}, nil
	}

	if field.Search.Search == nil {
		return SearchResults{}, ErrMisconfigured("field has no search callback")
	}

	var results []panel.SearchResult
	var err error
	if len(req.Include) > 0 {
		results, err = field.Search.Search("", req.Include)
	} else {
		results, err = field.Search.Search(req.Term, nil)
	}
	if err != nil {
		return SearchResults{}, ErrInternal("search failed", err)
	}
	if results == nil {
		results = []panel.SearchResult{}
	}
	return SearchResults{Results: results}, nil
}

// Action walks the flat field list for an actionable item matching the
// action key. Button and menu items match on their action attribute
// (separators skipped); notes fields match their add/delete keys; footer
// actions are checked last. First match wins.
func (d *Dispatcher) Action(req Request) (ActionResult, error) {
	rc, derr := d.resolve(&req)
	if derr != nil {
		return ActionResult{}, derr
	}
	if derr := d.checkNonce(req); derr != nil {
		return ActionResult{}, derr
	}
	if req.ActionKey == "" {
		return ActionResult{}, ErrNotFound("action")
	}

	handler := findAction(rc.fields, rc.def, req.ActionKey)
	if handler == nil {
		return ActionResult{}, ErrNotFound("action " + req.ActionKey)
	}

	out, err := handler(panel.ActionRequest{
		RecordID:  req.RecordID,
		ActionKey: req.ActionKey,
		Payload:   req.Payload,
	})
	if err != nil {
		return ActionResult{}, ErrInternal("action failed", err)
	}
	return ActionResult{Extra: out}, nil
}

// findField matches the declaration by exact key first, then by
// submission name.
func findField(fields []panel.Field, key string) *panel.Field {
	if key == "" {
		return nil
	}
	for i := range fields {
		if fields[i].Key == key {
			return &fields[i]
		}
	}
	for i := range fields {
		if fields[i].SubmissionName() == key {
			return &fields[i]
		}
	}
	return nil
}

// findAction locates the first handler bound to the action key.
func findAction(fields []panel.Field, def *panel.Definition, key string) panel.ActionFunc {
	for i := range fields {
		f := &fields[i]
		switch f.Type {
		case panel.TypeButtonGroup, panel.TypeActionMenu:
			for _, item := range f.Items {
				if item.Separator {
					continue
				}
				if item.Action == key && item.Handler != nil {
					return item.Handler
				}
			}
		case panel.TypeNotes:
			if f.Notes == nil || f.Notes.Handler == nil {
				continue
			}
			if key == f.Notes.AddAction || key == f.Notes.DeleteAction {
				return f.Notes.Handler
			}
		}
	}
	for _, a := range def.Actions {
		if a.Action == key && a.Handler != nil {
			return a.Handler
		}
	}
	return nil
}

// payloadID pulls a usable id out of the sanitized payload.
func payloadID(clean map[string]any) string {
	v, ok := clean["id"]
	if !ok || v == nil {
		return ""
	}
	s := strings.TrimSpace(fmt.Sprintf("%v", v))
	if s == "" || s == "0" {
		return ""
	}
	return s
}

// falsy mirrors the loose host-callback success contract: nil, false,
// zero, and empty string read as failure.
func falsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case int:
		return x == 0
	case int64:
		return x == 0
	case float64:
		return x == 0
	case string:
		return x == ""
	default:
		return false
	}
}

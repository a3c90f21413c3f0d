// Package web exposes the panel operations as a JSON route group:
// load, save, delete, and action over POST, search over GET.
package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/arraypress/flyouts/adapters/metrics"
	"github.com/arraypress/flyouts/app"
)

// Operation names used for routing, metrics, and logs.
const (
	OpLoad   = "load"
	OpSave   = "save"
	OpDelete = "delete"
	OpSearch = "search"
	OpAction = "action"
)

// Deps contains dependencies for the web handler.
type Deps struct {
	Dispatcher *app.Dispatcher
	Logger     zerolog.Logger

	// Metrics is optional; nil disables instrumentation.
	Metrics *metrics.Collector
}

// Handler serves the panel JSON endpoints.
type Handler struct {
	dispatcher *app.Dispatcher
	logger     zerolog.Logger
	metrics    *metrics.Collector
}

// NewHandler creates a web handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
	}
}

// Routes returns the route group. Mount it under the host's API prefix:
//
//	r.Mount("/flyouts", handler.Routes())
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/"+OpLoad, h.Load)
	r.Post("/"+OpSave, h.Save)
	r.Post("/"+OpDelete, h.Delete)
	r.Post("/"+OpAction, h.Action)
	r.Get("/"+OpSearch, h.Search)
	return r
}

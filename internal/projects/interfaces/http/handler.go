package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"energywatch/internal/breakdown"
	projectapp "energywatch/internal/projects/application"
)

// envelope matches the dashboard response shape.
type envelope struct {
	Datetime time.Time `json:"datetime"`
	Status   string    `json:"status"`
	Items    any       `json:"items"`
}

// Handler provides the plant registry HTTP endpoints.
type Handler struct {
	service *projectapp.Service
	now     func() time.Time
}

// NewHandler constructs a handler.
func NewHandler(service *projectapp.Service) (*Handler, error) {
	if service == nil {
		return nil, errors.New("project handler: nil service")
	}
	return &Handler{service: service, now: time.Now}, nil
}

// ServeHTTP handles the registry count and location subroutes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/v1/electric/cont/project/renew":
		h.respondCounts(w, r, h.service.CountRenewable)
	case "/api/v1/electric/cont/project/fossil":
		h.respondCounts(w, r, h.service.CountFossil)
	case "/api/v1/electric/project/location/fuel":
		locations, err := h.service.Locations(r.Context())
		if err != nil {
			respondError(w, h.now())
			return
		}
		respond(w, envelope{Datetime: h.now(), Status: "ok", Items: locations})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) respondCounts(w http.ResponseWriter, r *http.Request, counts func(context.Context) ([]breakdown.Item, error)) {
	items, err := counts(r.Context())
	if err != nil {
		respondError(w, h.now())
		return
	}
	respond(w, envelope{Datetime: h.now(), Status: "ok", Items: items})
}

func respond(w http.ResponseWriter, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, at time.Time) {
	respond(w, envelope{Datetime: at, Status: "error", Items: []any{}})
}

package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	gasapp "energywatch/internal/gas/application"
	gas "energywatch/internal/gas/domain"
	"energywatch/internal/observability/metrics"
)

const dateLayout = "2006-01-02"

// defaultRangeDays is the end-of-day window served when the caller gives no
// explicit dates.
const defaultRangeDays = 30

// envelope is the dashboard response shape: every payload carries its data
// timestamp and a coarse ok/error status alongside the items.
type envelope struct {
	Datetime time.Time `json:"datetime"`
	Status   string    `json:"status"`
	Items    any       `json:"items"`
}

// Handler provides the natural gas dashboard HTTP endpoints.
type Handler struct {
	service *gasapp.Service
	now     func() time.Time
}

// NewHandler constructs a handler.
func NewHandler(service *gasapp.Service) (*Handler, error) {
	if service == nil {
		return nil, errors.New("gas handler: nil service")
	}
	return &Handler{service: service, now: time.Now}, nil
}

// ServeHTTP handles /api/v1/natural-gas subroutes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/v1/natural-gas/current/supply/mmscfd":
		h.get(w, r, h.handleCurrentSupply)
	case "/api/v1/natural-gas/current/demand/mmscfd":
		h.get(w, r, h.handleCurrentDemand)
	case "/api/v1/natural-gas/current/lng/invent/m3":
		h.get(w, r, h.handleInventory)
	case "/api/v1/natural-gas/eod/lng/sendout/mmscf":
		h.get(w, r, h.eodHandler(gas.MeasureSendout))
	case "/api/v1/natural-gas/eod/lng/invent/m3":
		h.get(w, r, h.eodHandler(gas.MeasureInvent))
	case "/api/v1/natural-gas/update/lng/sendout-invent":
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleRefresh(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	next(w, r)
}

func (h *Handler) handleCurrentSupply(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() { metrics.ObserveAggregation("gas_current_supply", result, time.Since(start)) }()

	snapshot, err := h.service.CurrentSupply(r.Context())
	if err != nil {
		result = metrics.ResultError
		respondError(w, h.now())
		return
	}
	respond(w, envelope{Datetime: snapshot.At, Status: "ok", Items: snapshot.Items})
}

func (h *Handler) handleCurrentDemand(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() { metrics.ObserveAggregation("gas_current_demand", result, time.Since(start)) }()

	snapshot, err := h.service.CurrentDemand(r.Context())
	if err != nil {
		result = metrics.ResultError
		respondError(w, h.now())
		return
	}
	respond(w, envelope{Datetime: snapshot.At, Status: "ok", Items: snapshot.Items})
}

func (h *Handler) handleInventory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() { metrics.ObserveAggregation("gas_lng_inventory", result, time.Since(start)) }()

	snapshot, err := h.service.CurrentLNGInventory(r.Context())
	if err != nil {
		result = metrics.ResultError
		respondError(w, h.now())
		return
	}
	respond(w, envelope{Datetime: snapshot.At, Status: "ok", Items: snapshot.Items})
}

func (h *Handler) eodHandler(measure string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, to, err := rangeQuery(r, h.now())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		series, err := h.service.EODSeries(r.Context(), measure, from, to)
		if err != nil {
			respondError(w, h.now())
			return
		}
		respond(w, envelope{Datetime: h.now(), Status: "ok", Items: series})
	}
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	daysBack := 1
	if raw := r.URL.Query().Get("days_back"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "days_back must be a positive integer", http.StatusBadRequest)
			return
		}
		daysBack = parsed
	}

	processed, err := h.service.RefreshEOD(r.Context(), daysBack)
	if err != nil {
		respondError(w, h.now())
		return
	}
	metrics.AddEODRefreshDays(processed)
	respond(w, envelope{Datetime: h.now(), Status: "ok", Items: map[string]int{"days": processed}})
}

// rangeQuery reads the inclusive date window; absent bounds fall back to the
// last month ending today.
func rangeQuery(r *http.Request, now time.Time) (time.Time, time.Time, error) {
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if raw := r.URL.Query().Get("date_to"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("date_to must be YYYY-MM-DD")
		}
		to = parsed
	}
	from := to.AddDate(0, 0, -(defaultRangeDays - 1))
	if raw := r.URL.Query().Get("date_from"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("date_from must be YYYY-MM-DD")
		}
		from = parsed
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("date_to precedes date_from")
	}
	return from, to, nil
}

func respond(w http.ResponseWriter, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

// respondError keeps the dashboard contract: upstream failures surface as a
// status "error" payload, not a transport error.
func respondError(w http.ResponseWriter, at time.Time) {
	respond(w, envelope{Datetime: at, Status: "error", Items: []any{}})
}

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	electricapp "energywatch/internal/electric/application"
	"energywatch/internal/feeds/gridfeed"
	"energywatch/internal/observability/metrics"
	peakapp "energywatch/internal/peaks/application"
)

const dateLayout = "2006-01-02"

// envelope is the dashboard response shape: every payload carries its data
// timestamp and a coarse ok/error status alongside the items.
type envelope struct {
	Datetime time.Time `json:"datetime"`
	Status   string    `json:"status"`
	Items    any       `json:"items"`
}

// Handler provides the electricity dashboard HTTP endpoints.
type Handler struct {
	supply *electricapp.SupplyService
	demand *electricapp.DemandService
	peaks  *peakapp.Service
	now    func() time.Time
}

// NewHandler constructs a handler.
func NewHandler(supply *electricapp.SupplyService, demand *electricapp.DemandService, peaks *peakapp.Service) (*Handler, error) {
	if supply == nil || demand == nil || peaks == nil {
		return nil, errors.New("electric handler: nil service")
	}
	return &Handler{supply: supply, demand: demand, peaks: peaks, now: time.Now}, nil
}

// ServeHTTP handles /api/v1/electric subroutes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/v1/electric/current/supply":
		h.handleCurrentSupply(w, r)
	case "/api/v1/electric/current/demand":
		h.handleCurrentDemand(w, r)
	case "/api/v1/electric/profile/supply":
		h.handleSupplyProfile(w, r)
	case "/api/v1/electric/profile/supply/fuel":
		h.handleFuelProfile(w, r)
	case "/api/v1/electric/profile/demand":
		h.handleDemandProfile(w, r)
	case "/api/v1/electric/summary/peak":
		h.handlePeakSummary(w, r)
	case "/api/v1/electric/report/daily":
		h.handleDailyReport(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleCurrentSupply(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() { metrics.ObserveAggregation("electric_current_supply", result, time.Since(start)) }()

	source, err := sourceQuery(r)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	includeIPS := boolQuery(r, "include_ips", true)

	snapshot, err := h.supply.CurrentSupply(r.Context(), source, includeIPS)
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
	defer func() { metrics.ObserveAggregation("electric_current_demand", result, time.Since(start)) }()

	includeIPS := boolQuery(r, "include_ips", false)

	snapshot, err := h.demand.CurrentDemand(r.Context(), includeIPS)
	if err != nil {
		result = metrics.ResultError
		respondError(w, h.now())
		return
	}
	respond(w, envelope{Datetime: snapshot.At, Status: "ok", Items: snapshot.Items})
}

func (h *Handler) handleSupplyProfile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() { metrics.ObserveAggregation("electric_supply_profile", result, time.Since(start)) }()

	source, err := sourceQuery(r)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if source == gridfeed.SourceByTime {
		result = metrics.ResultError
		http.Error(w, "source must be 1 or 2", http.StatusBadRequest)
		return
	}
	day, err := dateQuery(r, h.now())
	if err != nil {
		result = metrics.ResultError
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	includeIPS := boolQuery(r, "include_ips", true)

	profile, err := h.supply.PlantProfile(r.Context(), day, source, includeIPS)
	if err != nil {
		result = metrics.ResultError
		respondError(w, h.now())
		return
	}
	respond(w, envelope{Datetime: profile.At, Status: "ok", Items: profile.Series})
}

func (h *Handler) handleFuelProfile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() { metrics.ObserveAggregation("electric_fuel_profile", result, time.Since(start)) }()

	source, err := sourceQuery(r)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if source == gridfeed.SourceByTime {
		result = metrics.ResultError
		http.Error(w, "source must be 1 or 2", http.StatusBadRequest)
		return
	}
	day, err := dateQuery(r, h.now())
	if err != nil {
		result = metrics.ResultError
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	includeIPS := boolQuery(r, "include_ips", true)

	profile, err := h.supply.FuelProfile(r.Context(), day, source, includeIPS)
	if err != nil {
		result = metrics.ResultError
		respondError(w, h.now())
		return
	}
	respond(w, envelope{Datetime: profile.At, Status: "ok", Items: profile.Series})
}

func (h *Handler) handleDemandProfile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() { metrics.ObserveAggregation("electric_demand_profile", result, time.Since(start)) }()

	day, err := dateQuery(r, h.now())
	if err != nil {
		result = metrics.ResultError
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	updatePeak := boolQuery(r, "update_peak", true)

	series, err := h.demand.DemandProfile(r.Context(), day, updatePeak)
	if err != nil {
		result = metrics.ResultError
		respondError(w, h.now())
		return
	}
	respond(w, envelope{Datetime: h.now(), Status: "ok", Items: []any{series}})
}

func (h *Handler) handlePeakSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.peaks.Summary(r.Context(), "demand")
	if err != nil {
		respondError(w, h.now())
		return
	}
	respond(w, envelope{Datetime: h.now(), Status: "ok", Items: summary})
}

// handleDailyReport serves the day's demand profile and peak summary as a
// downloadable PDF or workbook.
func (h *Handler) handleDailyReport(w http.ResponseWriter, r *http.Request) {
	day, err := dateQuery(r, h.now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "pdf"
	}
	if format != "pdf" && format != "xlsx" {
		http.Error(w, "format must be pdf or xlsx", http.StatusBadRequest)
		return
	}

	profile, err := h.demand.DemandProfile(r.Context(), day, false)
	if err != nil {
		respondError(w, h.now())
		return
	}
	summary, err := h.peaks.Summary(r.Context(), "demand")
	if err != nil {
		respondError(w, h.now())
		return
	}

	var data []byte
	contentType := "application/pdf"
	if format == "pdf" {
		data, err = BuildDailyReportPDF(day, profile, summary)
	} else {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		data, err = BuildDailyReportXLSX(day, profile, summary)
	}
	if err != nil {
		respondError(w, h.now())
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=daily-report-%s.%s", day.Format(dateLayout), format))
	_, _ = w.Write(data)
}

func sourceQuery(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("source")
	if raw == "" {
		return gridfeed.SourcePlant, nil
	}
	source, err := strconv.Atoi(raw)
	if err != nil || source < gridfeed.SourcePlant || source > gridfeed.SourceByTime {
		return 0, errors.New("source must be 1, 2 or 3")
	}
	return source, nil
}

func dateQuery(r *http.Request, fallback time.Time) (time.Time, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return time.Date(fallback.Year(), fallback.Month(), fallback.Day(), 0, 0, 0, 0, fallback.Location()), nil
	}
	day, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, errors.New("date must be YYYY-MM-DD")
	}
	return day, nil
}

func boolQuery(r *http.Request, key string, fallback bool) bool {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
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

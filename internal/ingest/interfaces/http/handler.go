// Package http exposes the dashboard's file submission endpoints. Each
// endpoint takes one multipart upload under the "file" field and answers a
// flat status message: structurally bad uploads get a 400, row-level
// failures land what they can and report the rejects.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"energywatch/internal/audit"
	"energywatch/internal/auth"
	gas "energywatch/internal/gas/domain"
	"energywatch/internal/ingest"
	"energywatch/internal/observability/metrics"
	peakapp "energywatch/internal/peaks/application"
	projectapp "energywatch/internal/projects/application"
	readings "energywatch/internal/readings/domain"
)

// maxUploadBytes bounds one submission; registry workbooks run to a few MB.
const maxUploadBytes = 32 << 20

// Msg is the submission response shape.
type Msg struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Handler provides the file submission endpoints.
type Handler struct {
	readings readings.Store
	peaks    *peakapp.Service
	tanks    gas.TankStore
	eod      gas.EODStore
	projects *projectapp.Service
	audit    audit.Logger
	logger   *log.Logger
	now      func() time.Time
}

// Option configures the handler.
type Option func(*Handler)

// WithAudit records submissions through the given audit logger.
func WithAudit(logger audit.Logger) Option {
	return func(h *Handler) { h.audit = logger }
}

// WithLogger sets the handler logger.
func WithLogger(logger *log.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

// WithClock overrides the submission clock.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// NewHandler constructs a submission handler.
func NewHandler(store readings.Store, peaks *peakapp.Service, tanks gas.TankStore, eod gas.EODStore, projects *projectapp.Service, opts ...Option) (*Handler, error) {
	if store == nil || peaks == nil || tanks == nil || eod == nil || projects == nil {
		return nil, errors.New("ingest handler: nil dependency")
	}
	h := &Handler{
		readings: store,
		peaks:    peaks,
		tanks:    tanks,
		eod:      eod,
		projects: projects,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// ServeHTTP routes the submission endpoints.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/v1/electric/submit/dummy":
		h.handleOverrides(w, r)
	case "/api/v1/electric/submit/peak":
		h.handlePeak(w, r)
	case "/api/v1/electric/submit/project":
		h.handleProject(w, r)
	case "/api/v1/natural-gas/submit/lng/tank-table":
		h.handleTankTable(w, r)
	case "/api/v1/natural-gas/submit/eod/value":
		h.handleEOD(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleOverrides(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title != "ips" && title != "vspp" {
		respondMsg(w, http.StatusBadRequest, Msg{Status: "error", Message: fmt.Sprintf("unknown title %q", title)})
		return
	}
	started := h.now()
	data, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	rows, report, err := ingest.DecodeOverrides(bytes.NewReader(data), title, started)
	if err != nil {
		h.finishBad(w, r, ingest.FormatOverrides, started, err)
		return
	}
	if len(rows) > 0 {
		if err := h.readings.Insert(r.Context(), rows); err != nil {
			h.logf("override insert failed: %v", err)
			h.finish(w, r, ingest.FormatOverrides, started, data, ingest.Report{
				Total:  report.Total,
				Failed: report.Total,
				Errors: []ingest.RowError{{Reason: fmt.Sprintf("insert failed: %v", err)}},
			})
			return
		}
	}
	h.finish(w, r, ingest.FormatOverrides, started, data, report)
}

func (h *Handler) handlePeak(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title != "demand" {
		respondMsg(w, http.StatusBadRequest, Msg{Status: "error", Message: fmt.Sprintf("unknown title %q", title)})
		return
	}
	started := h.now()
	data, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	rows, report, err := ingest.DecodePeakCorrections(bytes.NewReader(data))
	if err != nil {
		h.finishBad(w, r, ingest.FormatPeak, started, err)
		return
	}
	for _, row := range rows {
		if err := h.peaks.Commit(r.Context(), title, row.At, row.Value); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, ingest.RowError{Line: row.Line, Reason: err.Error()})
		}
	}
	h.finish(w, r, ingest.FormatPeak, started, data, report)
}

func (h *Handler) handleProject(w http.ResponseWriter, r *http.Request) {
	started := h.now()
	data, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	rows, report, err := ingest.DecodeProjects(bytes.NewReader(data), started)
	if err != nil {
		h.finishBad(w, r, ingest.FormatProject, started, err)
		return
	}
	for _, row := range rows {
		if err := h.projects.Upsert(r.Context(), row.Project); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, ingest.RowError{Line: row.Line, Reason: err.Error()})
		}
	}
	h.finish(w, r, ingest.FormatProject, started, data, report)
}

func (h *Handler) handleTankTable(w http.ResponseWriter, r *http.Request) {
	started := h.now()
	data, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	rows, report, err := ingest.DecodeTankTable(bytes.NewReader(data))
	if err != nil {
		h.finishBad(w, r, ingest.FormatTankTable, started, err)
		return
	}
	if len(rows) > 0 {
		if err := h.tanks.UpsertBreakpoints(r.Context(), rows); err != nil {
			h.logf("tank table upsert failed: %v", err)
			h.finish(w, r, ingest.FormatTankTable, started, data, ingest.Report{
				Total:  report.Total,
				Failed: report.Total,
				Errors: []ingest.RowError{{Reason: fmt.Sprintf("upsert failed: %v", err)}},
			})
			return
		}
	}
	h.finish(w, r, ingest.FormatTankTable, started, data, report)
}

func (h *Handler) handleEOD(w http.ResponseWriter, r *http.Request) {
	started := h.now()
	data, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	rows, report, err := ingest.DecodeEODValues(bytes.NewReader(data), started)
	if err != nil {
		h.finishBad(w, r, ingest.FormatEOD, started, err)
		return
	}
	for _, row := range rows {
		if err := h.eod.Upsert(r.Context(), row.Value); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, ingest.RowError{Line: row.Line, Reason: err.Error()})
		}
	}
	h.finish(w, r, ingest.FormatEOD, started, data, report)
}

// readUpload pulls the "file" multipart field. Responds 400 itself on
// failure and reports whether the caller should continue.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		respondMsg(w, http.StatusBadRequest, Msg{Status: "error", Message: "missing file field"})
		return nil, false
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		respondMsg(w, http.StatusBadRequest, Msg{Status: "error", Message: "unreadable file"})
		return nil, false
	}
	return data, true
}

// finishBad rejects a structurally invalid upload.
func (h *Handler) finishBad(w http.ResponseWriter, r *http.Request, format string, started time.Time, err error) {
	metrics.ObserveIngest(format, metrics.ResultError, h.now().Sub(started))
	h.writeAudit(r, format, nil, ingest.Report{}, err)
	respondMsg(w, http.StatusBadRequest, Msg{Status: "error", Message: err.Error()})
}

// finish records metrics and audit for a processed batch and answers with
// the batch report. Row failures keep HTTP 200; the status field carries
// the outcome.
func (h *Handler) finish(w http.ResponseWriter, r *http.Request, format string, started time.Time, data []byte, report ingest.Report) {
	result := metrics.ResultSuccess
	if !report.OK() {
		result = metrics.ResultError
	}
	metrics.ObserveIngest(format, result, h.now().Sub(started))
	metrics.AddIngestRows(format, metrics.ResultSuccess, report.Total-report.Failed)
	metrics.AddIngestRows(format, metrics.ResultError, report.Failed)
	h.writeAudit(r, format, data, report, nil)

	msg := Msg{Status: "ok", Message: report.Summary()}
	if !report.OK() {
		msg.Status = "error"
	}
	respondMsg(w, http.StatusOK, msg)
}

func (h *Handler) writeAudit(r *http.Request, format string, data []byte, report ingest.Report, cause error) {
	if h.audit == nil {
		return
	}
	meta := map[string]any{"total": report.Total, "failed": report.Failed}
	if cause != nil {
		meta["error"] = cause.Error()
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		raw = nil
	}
	ctx := r.Context()
	entry := audit.Entry{
		Actor:         auth.SubjectFromContext(ctx),
		Role:          string(auth.RoleFromContext(ctx)),
		Action:        "submit_" + format,
		ResourceType:  "file",
		ResourceID:    format,
		Metadata:      raw,
		PayloadDigest: audit.Digest(data),
		IP:            r.RemoteAddr,
		UserAgent:     r.UserAgent(),
		CreatedAt:     h.now(),
	}
	if err := h.audit.Log(context.WithoutCancel(ctx), entry); err != nil {
		h.logf("audit write failed: %v", err)
	}
}

func (h *Handler) logf(format string, args ...any) {
	if h.logger != nil {
		h.logger.Printf(format, args...)
	}
}

func respondMsg(w http.ResponseWriter, code int, msg Msg) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(msg)
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	electricapp "energywatch/internal/electric/application"
	"energywatch/internal/feeds/gridfeed"
	peakapp "energywatch/internal/peaks/application"
	peakmem "energywatch/internal/peaks/infrastructure/memory"
	readingmem "energywatch/internal/readings/infrastructure/memory"
)

type fixtureFeed struct {
	records []gridfeed.GenRecord
	err     error
}

func (f *fixtureFeed) GenSnapshot(ctx context.Context, source int) ([]gridfeed.GenRecord, error) {
	return f.records, f.err
}

func (f *fixtureFeed) GenProfile(ctx context.Context, day time.Time, source int) ([]gridfeed.GenSeries, error) {
	return nil, f.err
}

type fixtureLoad struct{ load gridfeed.RegionLoad }

func (f *fixtureLoad) RegionLoad(ctx context.Context, channel string, day time.Time) (gridfeed.RegionLoad, error) {
	return f.load, nil
}

type fixtureDirect struct{}

func (fixtureDirect) DirectCustomerLatest(ctx context.Context) (gridfeed.DirectTotal, error) {
	return gridfeed.DirectTotal{}, nil
}

func (fixtureDirect) DirectCustomerRange(ctx context.Context, from, to time.Time) ([]gridfeed.DirectTotal, error) {
	return nil, nil
}

func newFixtureHandler(t *testing.T, feed *fixtureFeed) *Handler {
	t.Helper()
	logger := log.New(os.Stdout, "", log.LstdFlags)
	store := readingmem.NewReadingStore()
	tracker, err := peakapp.NewService(peakmem.NewPeakRepository(), logger)
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}

	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	load := gridfeed.RegionLoad{Day: day, Samples: []gridfeed.Sample{{Offset: time.Hour, Value: 10}}}
	supply, err := electricapp.NewSupplyService(feed, &fixtureLoad{load: load}, store, logger)
	if err != nil {
		t.Fatalf("new supply: %v", err)
	}
	demand, err := electricapp.NewDemandService(&fixtureLoad{load: load}, fixtureDirect{}, store, tracker, logger)
	if err != nil {
		t.Fatalf("new demand: %v", err)
	}
	tracker.BindRecomputer(demand)

	handler, err := NewHandler(supply, demand, tracker)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler
}

func TestCurrentSupplyEndpoint(t *testing.T) {
	mark := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	handler := newFixtureHandler(t, &fixtureFeed{records: []gridfeed.GenRecord{
		{Label: "SB-T1", PlantType: "EGAT", Value: 1200, At: mark},
	}})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/electric/current/supply?source=1", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var body struct {
		Status string `json:"status"`
		Items  []struct {
			Tag   string  `json:"tag"`
			Value float64 `json:"value"`
		} `json:"items"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" {
		t.Fatalf("expected ok, got %s", body.Status)
	}
	if len(body.Items) == 0 || body.Items[0].Tag != "total" {
		t.Fatalf("expected total-led items, got %+v", body.Items)
	}
}

func TestCurrentSupplyEndpointUpstreamFailure(t *testing.T) {
	handler := newFixtureHandler(t, &fixtureFeed{err: errors.New("upstream down")})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/electric/current/supply", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("feed failures keep the dashboard contract, got %d", recorder.Code)
	}
	var body envelope
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "error" {
		t.Fatalf("expected error status, got %s", body.Status)
	}
}

func TestCurrentSupplyEndpointRejectsBadSource(t *testing.T) {
	handler := newFixtureHandler(t, &fixtureFeed{})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/electric/current/supply?source=9", nil))

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

func TestPeakSummaryEndpoint(t *testing.T) {
	handler := newFixtureHandler(t, &fixtureFeed{})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/electric/summary/peak", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var body envelope
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" {
		t.Fatalf("expected ok, got %s", body.Status)
	}
}

func TestDailyReportPDF(t *testing.T) {
	handler := newFixtureHandler(t, &fixtureFeed{})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/electric/report/daily?date=2026-05-04", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if got := recorder.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("expected pdf content type, got %q", got)
	}
	if body := recorder.Body.Bytes(); len(body) < 4 || string(body[:4]) != "%PDF" {
		t.Fatalf("response is not a PDF")
	}
}

func TestDailyReportXLSX(t *testing.T) {
	handler := newFixtureHandler(t, &fixtureFeed{})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/electric/report/daily?date=2026-05-04&format=xlsx", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if got := recorder.Header().Get("Content-Disposition"); got != "attachment; filename=daily-report-2026-05-04.xlsx" {
		t.Fatalf("unexpected disposition %q", got)
	}
	if recorder.Body.Len() == 0 {
		t.Fatal("empty workbook response")
	}
}

func TestDailyReportRejectsBadFormat(t *testing.T) {
	handler := newFixtureHandler(t, &fixtureFeed{})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/electric/report/daily?format=doc", nil))

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	handler := newFixtureHandler(t, &fixtureFeed{})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/electric/current/supply", nil))

	if recorder.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", recorder.Code)
	}
}

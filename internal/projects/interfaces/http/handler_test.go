package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	projectapp "energywatch/internal/projects/application"
	projects "energywatch/internal/projects/domain"
	projectmem "energywatch/internal/projects/infrastructure/memory"
)

func newFixtureHandler(t *testing.T) *Handler {
	t.Helper()
	repo := projectmem.NewProjectRepository()
	lat, lng := 13.7, 100.5
	if err := repo.Upsert(context.Background(), projects.Project{
		Key:                "p1",
		ContractStatus:     "COD",
		PrimaryFuelAGroup1: "Renewable",
		PrimaryFuelAGroup3: "Solar",
		Lat:                &lat,
		Lng:                &lng,
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	service, err := projectapp.NewService(repo, log.New(os.Stdout, "", log.LstdFlags))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	handler, err := NewHandler(service)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler
}

func TestRenewableCountEnvelope(t *testing.T) {
	handler := newFixtureHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/electric/cont/project/renew", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body envelope
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" {
		t.Fatalf("expected ok, got %s", body.Status)
	}
	items, _ := body.Items.([]any)
	if len(items) != len(projects.RenewableFuels)+1 {
		t.Fatalf("expected %d items, got %d", len(projects.RenewableFuels)+1, len(items))
	}
	last, _ := items[len(items)-1].(map[string]any)
	if last["tag"] != "total" || last["value"].(float64) != 1 {
		t.Fatalf("unexpected trailing total %v", last)
	}
}

func TestLocationEnvelope(t *testing.T) {
	handler := newFixtureHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/electric/project/location/fuel", nil))
	var body envelope
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	pins, _ := body.Items.([]any)
	if len(pins) != 1 {
		t.Fatalf("expected one pin, got %v", body.Items)
	}
	pin, _ := pins[0].(map[string]any)
	if pin["tag"] != "Renewable" || pin["lat"].(float64) != 13.7 {
		t.Fatalf("unexpected pin %v", pin)
	}
}

func TestRegistryRoutesRejectPost(t *testing.T) {
	handler := newFixtureHandler(t)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/electric/cont/project/renew", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

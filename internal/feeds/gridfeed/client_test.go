package gridfeed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testStatServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/LoginApi/GetToken", func(w http.ResponseWriter, r *http.Request) {
		user, password, ok := r.BasicAuth()
		if !ok || user != "user" || password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "token-1"})
	})
	mux.HandleFunc("/", handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestGenProfileDecodesHalfHourColumns(t *testing.T) {
	server := testStatServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/StatDataApi/GetGenMWData" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("token") != "token-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Header.Get("dd") != "04/05/2026" {
			t.Errorf("unexpected dd header %q", r.Header.Get("dd"))
		}
		row := map[string]any{"MEANAME": "SB-T1", "PLANTTYPE": "EGAT", "FUEL": "HYDRO"}
		for i, column := range halfHourColumns {
			row[column] = float64(i)
		}
		placeholder := map[string]any{"MEANAME": "GHOST", "PLANTTYPE": nil}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{row, placeholder}})
	})

	client, err := NewClient(server.URL, server.URL, "user", "secret", nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	profiles, err := client.GenProfile(context.Background(), day, SourcePlant)
	if err != nil {
		t.Fatalf("gen profile: %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("expected the placeholder row dropped, got %d profiles", len(profiles))
	}
	profile := profiles[0]
	if profile.PlantType != "EGAT" || profile.Fuel != "HYDRO" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if len(profile.Samples) != ProfileSlots {
		t.Fatalf("expected %d samples, got %d", ProfileSlots, len(profile.Samples))
	}
	if profile.Samples[0] != 0 || profile.Samples[47] != 47 {
		t.Fatalf("columns decoded out of order: %v", profile.Samples[:3])
	}
}

func TestRegionLoadDecodesTimeline(t *testing.T) {
	loadServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws/sysgen/actual" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("index") != "1" {
			t.Errorf("unexpected index %q", r.URL.Query().Get("index"))
		}
		if r.URL.Query().Get("day") != "04-05-2026" {
			t.Errorf("unexpected day %q", r.URL.Query().Get("day"))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"day":  "04-05-2026",
			"list": [][]float64{{0, 100}, {60, 110}, {120, 120}},
		})
	}))
	defer loadServer.Close()

	client, err := NewClient(loadServer.URL, loadServer.URL, "user", "secret", nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	load, err := client.RegionLoad(context.Background(), ChannelCentral, day)
	if err != nil {
		t.Fatalf("region load: %v", err)
	}
	if load.Len() != 3 {
		t.Fatalf("expected 3 samples, got %d", load.Len())
	}
	last, _ := load.Last()
	if last.Value != 120 || last.Offset != 2*time.Minute {
		t.Fatalf("unexpected last sample: %+v", last)
	}
	if !load.TimeOf(last).Equal(day.Add(2 * time.Minute)) {
		t.Fatalf("unexpected timestamp %s", load.TimeOf(last))
	}
}

func TestDirectCustomerRangeSumsPerTimestamp(t *testing.T) {
	server := testStatServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/StatDataApi/GetDirectCustomerVal" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"directcus": []map[string]any{
					{"TIMESTAMP": "2026-05-04T08:00:00", "VALUE": 10.0},
					{"TIMESTAMP": "2026-05-04T08:00:00", "VALUE": 5.0},
					{"TIMESTAMP": "2026-05-04T08:30:00", "VALUE": 7.0},
				},
			},
		})
	})

	client, err := NewClient(server.URL, server.URL, "user", "secret", nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	totals, err := client.DirectCustomerRange(context.Background(), day, day)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("expected 2 grouped totals, got %d", len(totals))
	}
	if totals[0].Value != 15 {
		t.Fatalf("expected 15 at 08:00, got %v", totals[0].Value)
	}
	if totals[1].Value != 7 {
		t.Fatalf("expected 7 at 08:30, got %v", totals[1].Value)
	}
}

func TestGenSnapshotUsesClosedHalfHourColumn(t *testing.T) {
	server := testStatServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/StatDataApi/GetGenMWData" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		// 10:42 floors to 10:30, minus one half-hour: F10 column.
		row := map[string]any{"MEANAME": "BLCP-T1", "PLANTTYPE": "IPP", "F10": 420.5}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{row}})
	})

	now := time.Date(2026, 5, 4, 10, 42, 0, 0, time.UTC)
	client, err := NewClient(server.URL, server.URL, "user", "secret", nil,
		WithNow(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	records, err := client.GenSnapshot(context.Background(), SourcePlant)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	record := records[0]
	if record.Value != 420.5 {
		t.Fatalf("expected the F10 column value, got %v", record.Value)
	}
	want := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	if !record.At.Equal(want) {
		t.Fatalf("expected mark %s, got %s", want, record.At)
	}
}

package gasfeed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestLatestDecodesPointArrays(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, password, ok := r.BasicAuth()
		if !ok || user != "scada" || password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `{
			"GULF-GAS": [{"timestamp": 1767225600000, "value": 2500.5}],
			"ESAN-SUPPLY": [{"timestamp": 1767225600000, "value": 700}],
			"FD-SPE-LNG": []
		}`)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "scada", "secret")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	values, err := client.Latest(context.Background(), []string{"GULF-GAS", "FD-SPE-LNG", "ESAN-SUPPLY"})
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if !strings.HasSuffix(gotPath, "/rest/v2/point-values/multiple-arrays/latest/GULF-GAS,FD-SPE-LNG,ESAN-SUPPLY") {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if gotQuery != "limit=1" {
		t.Fatalf("unexpected query %s", gotQuery)
	}
	// The empty FD-SPE-LNG array drops out; order follows the request.
	if len(values) != 2 || values[0].Name != "GULF-GAS" || values[1].Name != "ESAN-SUPPLY" {
		t.Fatalf("unexpected values %+v", values)
	}
	if values[0].Value != 2500.5 {
		t.Fatalf("expected 2500.5, got %v", values[0].Value)
	}
	want := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if !values[0].At.Equal(want) {
		t.Fatalf("expected %s, got %s", want, values[0].At)
	}
}

func TestLatestBeforeSendsInstant(t *testing.T) {
	var gotBefore string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBefore = r.URL.Query().Get("before")
		fmt.Fprint(w, `{"ACCF-SPE-LNG": [{"timestamp": 1767168000000, "value": 120}]}`)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "scada", "secret")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	before := time.Date(2025, 12, 31, 17, 0, 0, 0, time.UTC)
	values, err := client.LatestBefore(context.Background(), []string{"ACCF-SPE-LNG"}, before)
	if err != nil {
		t.Fatalf("latest before: %v", err)
	}
	if gotBefore != before.Format(time.RFC3339) {
		t.Fatalf("unexpected before %s", gotBefore)
	}
	if len(values) != 1 || values[0].Value != 120 {
		t.Fatalf("unexpected values %+v", values)
	}

	if _, err := client.LatestBefore(context.Background(), []string{"ACCF-SPE-LNG"}, time.Time{}); err == nil {
		t.Fatal("expected zero-instant error")
	}
}

func TestLatestSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "scada", "secret")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Latest(context.Background(), []string{"GULF-GAS"}); err == nil {
		t.Fatal("expected http error")
	}
}

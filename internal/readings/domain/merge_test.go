package readings

import (
	"testing"
	"time"
)

func TestLatestSubmissionWins(t *testing.T) {
	dataAt := time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)
	nine := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	ten := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

	rows := []Reading{
		{Category: "ips", DataAt: dataAt, SubmitAt: nine, Zone: "zoneA", Value: 5},
		{Category: "ips", DataAt: dataAt, SubmitAt: nine, Zone: "zoneB", Value: 3},
		{Category: "ips", DataAt: dataAt, SubmitAt: ten, Zone: "zoneA", Value: 7},
	}

	submitAt, sum, ok := LatestSubmission(rows)
	if !ok {
		t.Fatal("expected data")
	}
	if !submitAt.Equal(ten) {
		t.Fatalf("expected submit %s, got %s", ten, submitAt)
	}
	// zoneB's 09:00 row is superseded even though 10:00 has no zoneB row.
	if sum != 7 {
		t.Fatalf("expected 7, got %v", sum)
	}
}

func TestLatestSubmissionByZone(t *testing.T) {
	dataAt := time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)
	ten := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

	rows := []Reading{
		{DataAt: dataAt, SubmitAt: ten, Zone: "", Value: 2},
		{DataAt: dataAt, SubmitAt: ten, Zone: "zoneA", Value: 4},
		{DataAt: dataAt, SubmitAt: ten, Zone: "zoneA", Value: 1},
	}
	grouped, ok := LatestSubmissionByZone(rows)
	if !ok {
		t.Fatal("expected data")
	}
	if grouped[""] != 2 || grouped["zoneA"] != 5 {
		t.Fatalf("unexpected grouping: %v", grouped)
	}
}

func TestLatestSubmissionNoData(t *testing.T) {
	if _, _, ok := LatestSubmission(nil); ok {
		t.Fatal("expected no data")
	}
	if _, ok := LatestSubmissionByValueTag(nil); ok {
		t.Fatal("expected no data")
	}
}

func TestMonthKey(t *testing.T) {
	at := time.Date(2026, 4, 17, 13, 45, 59, 123, time.UTC)
	key := MonthKey(at)
	want := time.Date(2026, 4, 1, 13, 45, 0, 0, time.UTC)
	if !key.Equal(want) {
		t.Fatalf("expected %s, got %s", want, key)
	}
}

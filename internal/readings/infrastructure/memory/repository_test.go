package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	readings "energywatch/internal/readings/domain"
)

func TestLatestValueSupersedesOlderBatch(t *testing.T) {
	store := NewReadingStore()
	ctx := context.Background()
	dataAt := time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)
	nine := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	ten := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

	err := store.Insert(ctx, []readings.Reading{
		{Category: "ips", DataAt: dataAt, SubmitAt: nine, Zone: "zoneA", Value: 5},
		{Category: "ips", DataAt: dataAt, SubmitAt: nine, Zone: "zoneB", Value: 3},
		{Category: "ips", DataAt: dataAt, SubmitAt: ten, Zone: "zoneA", Value: 7},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	// Month-key lookup: any timestamp with the same month, hour and minute
	// resolves to the same batch.
	value, err := store.LatestValue(ctx, "ips", time.Date(2026, 4, 20, 9, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("latest value: %v", err)
	}
	if value != 7 {
		t.Fatalf("expected 7, got %v", value)
	}
}

func TestLatestValueNoData(t *testing.T) {
	store := NewReadingStore()
	_, err := store.LatestValue(context.Background(), "ips", time.Now())
	if !errors.Is(err, readings.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestProfilePerTimestampRecency(t *testing.T) {
	store := NewReadingStore()
	ctx := context.Background()
	slot0 := time.Date(2026, 4, 1, 0, 30, 0, 0, time.UTC)
	slot1 := slot0.Add(30 * time.Minute)
	early := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
	late := time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)

	// slot0 was corrected later; slot1 only has the early batch. Submission
	// recency legitimately differs per timestamp.
	err := store.Insert(ctx, []readings.Reading{
		{Category: "vspp", DataAt: slot0, SubmitAt: early, Value: 10},
		{Category: "vspp", DataAt: slot1, SubmitAt: early, Value: 20},
		{Category: "vspp", DataAt: slot0, SubmitAt: late, Value: 11},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	points, err := store.Profile(ctx, "vspp", slot0, slot1, 30*time.Minute)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].Value != 11 || points[1].Value != 20 {
		t.Fatalf("expected [11 20], got %v", points)
	}
}

func TestProfileByValueTag(t *testing.T) {
	store := NewReadingStore()
	ctx := context.Background()
	slot := time.Date(2026, 4, 1, 0, 30, 0, 0, time.UTC)
	submit := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)

	err := store.Insert(ctx, []readings.Reading{
		{Category: "vspp", DataAt: slot, SubmitAt: submit, ValueTag: "ลม", Value: 4},
		{Category: "vspp", DataAt: slot, SubmitAt: submit, ValueTag: "ถ่านหิน", Value: 6},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	points, err := store.ProfileByValueTag(ctx, "vspp", slot, slot, 30*time.Minute)
	if err != nil {
		t.Fatalf("profile by tag: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 tagged points, got %d", len(points))
	}
	sum := points[0].Value + points[1].Value
	if sum != 10 {
		t.Fatalf("expected tagged values summing to 10, got %v", sum)
	}
}

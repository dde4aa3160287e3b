package timeseries

import (
	"errors"
	"testing"
	"time"
)

func testGrid(size int) Grid {
	return Grid{
		Start:    time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Interval: 30 * time.Minute,
		Size:     size,
	}
}

func TestAlignLengthInvariant(t *testing.T) {
	grid := testGrid(4)
	components := map[string][]float64{
		"a": {1, 2, 3, 4, 5, 6},
		"b": {10, 20},
		"c": {7},
	}

	aligned, total, err := Align(grid, components)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	for tag, series := range aligned {
		if len(series.Points) != grid.Size {
			t.Fatalf("series %s: expected %d points, got %d", tag, grid.Size, len(series.Points))
		}
		for i, p := range series.Points {
			want := grid.TimeAt(i)
			if !p.At.Equal(want) {
				t.Fatalf("series %s slot %d: expected %s, got %s", tag, i, want, p.At)
			}
		}
	}
	if len(total.Points) != grid.Size {
		t.Fatalf("total: expected %d points, got %d", grid.Size, len(total.Points))
	}
}

func TestAlignClampsShortComponent(t *testing.T) {
	grid := testGrid(3)
	aligned, total, err := Align(grid, map[string][]float64{
		"a": {10, 20, 30},
		"b": {1, 2},
	})
	if err != nil {
		t.Fatalf("align: %v", err)
	}

	b := aligned["b"]
	wantB := []float64{1, 2, 2}
	for i, want := range wantB {
		if b.Points[i].Value != want {
			t.Fatalf("b slot %d: expected %v, got %v", i, want, b.Points[i].Value)
		}
	}
	wantTotal := []float64{11, 22, 32}
	for i, want := range wantTotal {
		if total.Points[i].Value != want {
			t.Fatalf("total slot %d: expected %v, got %v", i, want, total.Points[i].Value)
		}
	}
}

func TestAlignEmptyComponentContributesZero(t *testing.T) {
	grid := testGrid(2)
	aligned, total, err := Align(grid, map[string][]float64{
		"a": {5, 5},
		"b": nil,
	})
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	if len(aligned["b"].Points) != 0 {
		t.Fatalf("expected empty series for b, got %d points", len(aligned["b"].Points))
	}
	if total.Points[0].Value != 5 || total.Points[1].Value != 5 {
		t.Fatalf("expected totals [5 5], got %v", total.Points)
	}
}

func TestAlignEmptyGrid(t *testing.T) {
	_, _, err := Align(Grid{}, nil)
	if !errors.Is(err, ErrEmptyGrid) {
		t.Fatalf("expected ErrEmptyGrid, got %v", err)
	}
}

func TestSumRejectsMisaligned(t *testing.T) {
	grid := testGrid(2)
	a := Series{Tag: "a", Points: []Point{
		{At: grid.TimeAt(0), Value: 1},
		{At: grid.TimeAt(1), Value: 2},
	}}
	short := Series{Tag: "b", Points: []Point{
		{At: grid.TimeAt(0), Value: 1},
	}}
	if _, err := Sum("total", a, short); !errors.Is(err, ErrMisaligned) {
		t.Fatalf("expected ErrMisaligned for length mismatch, got %v", err)
	}

	shifted := Series{Tag: "b", Points: []Point{
		{At: grid.TimeAt(1), Value: 1},
		{At: grid.TimeAt(0), Value: 2},
	}}
	if _, err := Sum("total", a, shifted); !errors.Is(err, ErrMisaligned) {
		t.Fatalf("expected ErrMisaligned for timestamp mismatch, got %v", err)
	}
}

func TestSumSkipsEmptySeries(t *testing.T) {
	grid := testGrid(2)
	a := Series{Tag: "a", Points: []Point{
		{At: grid.TimeAt(0), Value: 3},
		{At: grid.TimeAt(1), Value: 4},
	}}
	total, err := Sum("total", Series{Tag: "empty"}, a)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if total.Points[0].Value != 3 || total.Points[1].Value != 4 {
		t.Fatalf("expected [3 4], got %v", total.Points)
	}
}

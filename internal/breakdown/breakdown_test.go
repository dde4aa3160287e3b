package breakdown

import "testing"

func TestNew(t *testing.T) {
	items := New([]Item{
		{Tag: "egat", Value: 7500.12342},
		{Tag: "mea", Value: 2499.87658},
	})
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	total := items[0]
	if total.Tag != TotalTag || total.Value != 10000 || total.Percent != 100 {
		t.Fatalf("unexpected total item: %+v", total)
	}
	if items[1].Value != 7500.1234 {
		t.Fatalf("expected value rounded to 4dp, got %v", items[1].Value)
	}
	if items[1].Percent != 75 {
		t.Fatalf("expected 75 percent, got %v", items[1].Percent)
	}
	if items[2].Percent != 25 {
		t.Fatalf("expected 25 percent, got %v", items[2].Percent)
	}
}

func TestNewZeroTotal(t *testing.T) {
	items := New([]Item{
		{Tag: "egat", Value: 0},
		{Tag: "mea", Value: 0},
	})
	for _, item := range items {
		if item.Percent != 0 {
			t.Fatalf("expected zero share for %s, got %v", item.Tag, item.Percent)
		}
	}
}

func TestNewNegativeComponent(t *testing.T) {
	// Exports can run negative; shares still close against the net total.
	items := New([]Item{
		{Tag: "domestic", Value: 1200},
		{Tag: "export", Value: -200},
	})
	if items[0].Value != 1000 {
		t.Fatalf("expected net total 1000, got %v", items[0].Value)
	}
	if items[2].Percent != -20 {
		t.Fatalf("expected -20 percent for export, got %v", items[2].Percent)
	}
}

func TestNewMaxItem(t *testing.T) {
	item := NewMaxItem("lmpt1", 320000, 640000)
	if item.Percent != 50 {
		t.Fatalf("expected 50 percent of capacity, got %v", item.Percent)
	}
	empty := NewMaxItem("gmpt", 10, 0)
	if empty.Percent != 0 {
		t.Fatalf("expected zero share against zero capacity, got %v", empty.Percent)
	}
}

func TestRound(t *testing.T) {
	if got := Round(1.23456, 4); got != 1.2346 {
		t.Fatalf("expected 1.2346, got %v", got)
	}
	if got := Round(33.333333, 2); got != 33.33 {
		t.Fatalf("expected 33.33, got %v", got)
	}
}

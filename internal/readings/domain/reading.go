package readings

import "time"

// Reading is one submitted measurement for a category at a data timestamp.
// Successive correction batches for the same (category, data timestamp) get
// newer submission timestamps; rows are append-only and are superseded as a
// whole batch, never merged field by field.
type Reading struct {
	Category   string
	DataAt     time.Time
	SubmitAt   time.Time
	Zone       string
	Province   string
	ValueTag   string
	Value      float64
}

// TaggedValue is a summed value for one secondary tag within the latest
// submission batch.
type TaggedValue struct {
	Tag   string
	Value float64
}

// MonthKey collapses a data timestamp to the first day of its month.
// Hour and minute are kept: monthly override batches are keyed on the 1st
// at the snapshot's own time of day.
func MonthKey(at time.Time) time.Time {
	return time.Date(at.Year(), at.Month(), 1, at.Hour(), at.Minute(), 0, 0, at.Location())
}

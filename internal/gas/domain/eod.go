package gas

import (
	"errors"
	"fmt"
	"time"
)

// End-of-day value tags, one per terminal and measure.
const (
	TagLMPT1Sendout = "lmpt1_sendout"
	TagLMPT2Sendout = "lmpt2_sendout"
	TagLMPT1Invent  = "lmpt1_invent"
	TagLMPT2Invent  = "lmpt2_invent"
)

// End-of-day measures exposed as date series.
const (
	MeasureSendout = "sendout"
	MeasureInvent  = "invent"
)

// Terminal capacities in cubic meters. The first terminal's four tanks are
// flat-rated; the second terminal's pair is rated per strapping table; the
// third has no storage yet.
const (
	MaxInventLMPT1 = 640000
	MaxInventLMPT2 = 273311.623 + 273248.005
	MaxInventGMPT  = 0
)

// ErrNoBreakpoint indicates a strapping row is missing for a level.
var ErrNoBreakpoint = errors.New("gas: no strapping row for level")

// EODValue is one end-of-day figure for a tag and calendar date. Refreshes
// replace the value in place; one row exists per (tag, date).
type EODValue struct {
	Tag       string    `json:"tag"`
	Date      time.Time `json:"date"`
	Value     float64   `json:"value"`
	UpdatedAt time.Time `json:"update_timestamp"`
}

// Validate checks basic invariants.
func (v EODValue) Validate() error {
	if v.Tag == "" || v.Date.IsZero() {
		return errors.New("gas: eod value missing tag or date")
	}
	return nil
}

// MeasureTags returns the terminal tags backing one measure's date series.
func MeasureTags(measure string) ([]string, error) {
	switch measure {
	case MeasureSendout:
		return []string{TagLMPT1Sendout, TagLMPT2Sendout}, nil
	case MeasureInvent:
		return []string{TagLMPT1Invent, TagLMPT2Invent}, nil
	default:
		return nil, fmt.Errorf("gas: unknown eod measure %q", measure)
	}
}

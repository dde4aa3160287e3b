package gridfeed

import "time"

// GenRecord is one plant's generation value at a single half-hour mark.
type GenRecord struct {
	Label     string
	PlantType string
	Value     float64
	At        time.Time
}

// GenSeries is one plant's full-day half-hour profile. Samples run
// 00:30..24:00, one per half-hour column the upstream reports.
type GenSeries struct {
	Label     string
	PlantType string
	Fuel      string
	Samples   []float64
}

// Sample is one point on a request channel timeline, offset from the
// timeline day's midnight. Offsets at or past 24h belong to the next day's
// midnight; TimeOf resolves that naturally.
type Sample struct {
	Offset time.Duration
	Value  float64
}

// RegionLoad is one request channel's per-minute timeline for a day.
// The current day's timeline is truncated at the latest reported minute.
type RegionLoad struct {
	Day     time.Time
	Samples []Sample
}

// Empty reports whether the timeline holds no samples.
func (l RegionLoad) Empty() bool { return len(l.Samples) == 0 }

// Len returns the number of samples.
func (l RegionLoad) Len() int { return len(l.Samples) }

// At returns the sample at position i, clamping past-the-end positions to
// the last reported sample. Calling At on an empty timeline is a bug; use
// Empty first.
func (l RegionLoad) At(i int) Sample {
	if i > len(l.Samples)-1 {
		i = len(l.Samples) - 1
	}
	if i < 0 {
		i = 0
	}
	return l.Samples[i]
}

// Last returns the latest reported sample.
func (l RegionLoad) Last() (Sample, bool) {
	if len(l.Samples) == 0 {
		return Sample{}, false
	}
	return l.Samples[len(l.Samples)-1], true
}

// TimeOf resolves a sample's wall-clock timestamp on this timeline.
func (l RegionLoad) TimeOf(s Sample) time.Time {
	midnight := time.Date(l.Day.Year(), l.Day.Month(), l.Day.Day(), 0, 0, 0, 0, l.Day.Location())
	return midnight.Add(s.Offset)
}

// GridValues resamples the timeline at fixed minute strides, clamping each
// position to the last reported sample. The result is grid-indexed raw
// samples suitable for timeseries alignment.
func (l RegionLoad) GridValues(startMin, endMin, intervalMin int) []float64 {
	if l.Empty() || intervalMin <= 0 {
		return nil
	}
	values := make([]float64, 0, (endMin-startMin)/intervalMin+1)
	for position := startMin; position <= endMin; position += intervalMin {
		values = append(values, l.At(position).Value)
	}
	return values
}

// DirectTotal is the summed direct-customer draw at one timestamp.
type DirectTotal struct {
	At    time.Time
	Value float64
}

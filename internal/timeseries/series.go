package timeseries

import "time"

// Point is a single sampled value on a fixed-interval timeline.
type Point struct {
	At    time.Time `json:"at"`
	Value float64   `json:"value"`
}

// Series is an ordered sequence of points sharing one tag.
type Series struct {
	Tag    string  `json:"tag"`
	Points []Point `json:"points"`
}

// Grid describes a fixed-interval timeline starting at Start.
// Slot i carries the timestamp Start + i*Interval.
type Grid struct {
	Start    time.Time
	Interval time.Duration
	Size     int
}

// NewDayGrid builds the standard half-hour grid for one day. The first slot
// sits at midnight + interval, matching upstream day profiles that report
// the 00:30..24:00 half-hours.
func NewDayGrid(day time.Time, interval time.Duration) Grid {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	size := int(24 * time.Hour / interval)
	return Grid{Start: midnight.Add(interval), Interval: interval, Size: size}
}

// TimeAt returns the timestamp of slot i.
func (g Grid) TimeAt(i int) time.Time {
	return g.Start.Add(time.Duration(i) * g.Interval)
}

// Empty reports whether the grid holds no slots.
func (g Grid) Empty() bool { return g.Size <= 0 || g.Interval <= 0 }

// Len returns the number of points in the series.
func (s Series) Len() int { return len(s.Points) }

// Last returns the final point and whether one exists.
func (s Series) Last() (Point, bool) {
	if len(s.Points) == 0 {
		return Point{}, false
	}
	return s.Points[len(s.Points)-1], true
}

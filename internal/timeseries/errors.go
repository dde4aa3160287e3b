package timeseries

import "errors"

var (
	// ErrMisaligned indicates series that cannot be folded into one total
	// because lengths or timestamps differ.
	ErrMisaligned = errors.New("timeseries: series are misaligned")
	// ErrEmptyGrid indicates an alignment request over a degenerate grid.
	ErrEmptyGrid = errors.New("timeseries: empty grid")
)

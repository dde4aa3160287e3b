package readings

import "errors"

var (
	// ErrNoData indicates no reading exists for the requested key. Callers
	// must not coerce this to a zero value.
	ErrNoData = errors.New("readings: no data")
	// ErrInvalidReading indicates a reading failed basic validation.
	ErrInvalidReading = errors.New("readings: invalid reading")
)

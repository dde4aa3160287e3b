package timeseries

// Align folds grid-indexed raw samples onto one timeline.
//
// Each component is a raw sample list indexed by grid position (elapsed
// interval count), not by wall clock. A slot requested beyond a component's
// available range clamps to the last available sample; upstream feeds report
// fewer points than the nominal grid while the current day is incomplete.
// A component with no samples at all yields an empty series and contributes
// nothing to the total.
//
// Every non-empty output series, including the returned total, has exactly
// grid.Size points and the slot-i timestamp grid.Start + i*grid.Interval.
func Align(grid Grid, components map[string][]float64) (map[string]Series, Series, error) {
	if grid.Empty() {
		return nil, Series{}, ErrEmptyGrid
	}

	total := Series{Tag: "total", Points: make([]Point, grid.Size)}
	for i := range total.Points {
		total.Points[i] = Point{At: grid.TimeAt(i)}
	}

	aligned := make(map[string]Series, len(components))
	for tag, samples := range components {
		if len(samples) == 0 {
			aligned[tag] = Series{Tag: tag}
			continue
		}
		series := Series{Tag: tag, Points: make([]Point, grid.Size)}
		for i := 0; i < grid.Size; i++ {
			idx := i
			if idx > len(samples)-1 {
				idx = len(samples) - 1
			}
			series.Points[i] = Point{At: grid.TimeAt(i), Value: samples[idx]}
			total.Points[i].Value += samples[idx]
		}
		aligned[tag] = series
	}
	return aligned, total, nil
}

// Sum folds several already-aligned series into a fresh total. All inputs
// must share length and timestamps; otherwise the fold fails rather than
// summing unrelated instants. Empty series are skipped.
func Sum(tag string, series ...Series) (Series, error) {
	total := Series{Tag: tag}
	for _, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		if len(total.Points) == 0 {
			total.Points = make([]Point, len(s.Points))
			for i, p := range s.Points {
				total.Points[i] = Point{At: p.At}
			}
		}
		if err := AddInto(&total, s); err != nil {
			return Series{}, err
		}
	}
	return total, nil
}

// AddInto accumulates src into dst index by index. Lengths and timestamps
// must match exactly.
func AddInto(dst *Series, src Series) error {
	if len(dst.Points) != len(src.Points) {
		return ErrMisaligned
	}
	for i, p := range src.Points {
		if !dst.Points[i].At.Equal(p.At) {
			return ErrMisaligned
		}
		dst.Points[i].Value += p.Value
	}
	return nil
}

// AddAt accumulates value into slot i of dst. Out-of-range slots are
// rejected so a short override profile cannot shift later slots.
func AddAt(dst *Series, i int, value float64) error {
	if i < 0 || i >= len(dst.Points) {
		return ErrMisaligned
	}
	dst.Points[i].Value += value
	return nil
}

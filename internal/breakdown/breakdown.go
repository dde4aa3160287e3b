// Package breakdown folds bucket contributions into totals with rounded
// percent shares, the common response shape of the dashboard aggregates.
package breakdown

import "math"

// TotalTag labels the leading item of every breakdown.
const TotalTag = "total"

// Item is a single bucket contribution.
type Item struct {
	Tag   string  `json:"tag"`
	Value float64 `json:"value"`
}

// PercentItem is a bucket contribution with its share of the total.
type PercentItem struct {
	Tag     string  `json:"tag"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
}

// MaxItem is a level reading against a fixed capacity.
type MaxItem struct {
	Tag     string  `json:"tag"`
	Value   float64 `json:"value"`
	Max     float64 `json:"max"`
	Percent float64 `json:"percent"`
}

// Round rounds half away from zero to the given number of decimal places.
func Round(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}

// New sums the component items and returns the breakdown led by the total.
// Values carry four decimal places and shares two. When the total is zero
// every share, the total's included, is exactly zero rather than NaN.
func New(components []Item) []PercentItem {
	total := 0.0
	for _, component := range components {
		total += component.Value
	}

	out := make([]PercentItem, 0, len(components)+1)
	out = append(out, PercentItem{
		Tag:     TotalTag,
		Value:   Round(total, 4),
		Percent: PercentOf(total, total),
	})
	for _, component := range components {
		out = append(out, PercentItem{
			Tag:     component.Tag,
			Value:   Round(component.Value, 4),
			Percent: PercentOf(component.Value, total),
		})
	}
	return out
}

// NewMaxItem builds a capacity reading; a zero capacity yields a zero share.
func NewMaxItem(tag string, value, max float64) MaxItem {
	return MaxItem{
		Tag:     tag,
		Value:   Round(value, 4),
		Max:     max,
		Percent: PercentOf(value, max),
	}
}

// PercentOf returns value's rounded share of total, zero-guarded.
func PercentOf(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return Round(value/total*100, 2)
}

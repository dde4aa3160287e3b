package readings

import "time"

// LatestSubmission resolves the latest-submission-wins rule over readings
// that already share one (category, data timestamp): only rows carrying the
// single most recent submission timestamp are summed; every earlier batch is
// superseded in full, even for tags the newest batch does not mention.
func LatestSubmission(rows []Reading) (submitAt time.Time, sum float64, ok bool) {
	for _, row := range rows {
		if row.SubmitAt.After(submitAt) {
			submitAt = row.SubmitAt
		}
	}
	if submitAt.IsZero() {
		return time.Time{}, 0, false
	}
	for _, row := range rows {
		if row.SubmitAt.Equal(submitAt) {
			sum += row.Value
			ok = true
		}
	}
	return submitAt, sum, ok
}

// LatestSubmissionByZone is LatestSubmission grouped by zone.
func LatestSubmissionByZone(rows []Reading) (map[string]float64, bool) {
	submitAt, _, ok := LatestSubmission(rows)
	if !ok {
		return nil, false
	}
	grouped := make(map[string]float64)
	for _, row := range rows {
		if row.SubmitAt.Equal(submitAt) {
			grouped[row.Zone] += row.Value
		}
	}
	return grouped, true
}

// LatestSubmissionByValueTag is LatestSubmission grouped by value tag.
func LatestSubmissionByValueTag(rows []Reading) ([]TaggedValue, bool) {
	submitAt, _, ok := LatestSubmission(rows)
	if !ok {
		return nil, false
	}
	grouped := make(map[string]float64)
	order := make([]string, 0)
	for _, row := range rows {
		if !row.SubmitAt.Equal(submitAt) {
			continue
		}
		if _, seen := grouped[row.ValueTag]; !seen {
			order = append(order, row.ValueTag)
		}
		grouped[row.ValueTag] += row.Value
	}
	tagged := make([]TaggedValue, 0, len(order))
	for _, tag := range order {
		tagged = append(tagged, TaggedValue{Tag: tag, Value: grouped[tag]})
	}
	return tagged, true
}

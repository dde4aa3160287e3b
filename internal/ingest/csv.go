// Package ingest decodes the dashboard's file submission formats. Structural
// problems (unreadable file, missing required columns) fail the whole
// submission; bad cells fail only their row and are collected into a batch
// report so the rest of the file still lands.
package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RowError records one rejected row.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Report summarizes a submission batch.
type Report struct {
	Total  int        `json:"total"`
	Failed int        `json:"failed"`
	Errors []RowError `json:"errors,omitempty"`
}

// OK reports whether every row landed.
func (r Report) OK() bool {
	return r.Failed == 0
}

// Summary renders the report for the submission response.
func (r Report) Summary() string {
	if r.OK() {
		return fmt.Sprintf("%d rows inserted without error", r.Total)
	}
	reasons := make([]string, 0, len(r.Errors))
	for _, rowErr := range r.Errors {
		reasons = append(reasons, fmt.Sprintf("line %d: %s", rowErr.Line, rowErr.Reason))
	}
	return fmt.Sprintf("%d of %d rows failed: %s", r.Failed, r.Total, strings.Join(reasons, "; "))
}

func (r *Report) reject(line int, reason string) {
	r.Failed++
	r.Errors = append(r.Errors, RowError{Line: line, Reason: reason})
}

// table is a decoded CSV with header-indexed cell access.
type table struct {
	index map[string]int
	rows  [][]string
}

// readTable decodes a CSV stream, tolerating a UTF-8 BOM, and checks the
// required column set up front. Missing columns are itemized in the error.
func readTable(r io.Reader, required []string) (*table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ingest: read file: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ingest: decode csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("ingest: empty file")
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.TrimSpace(name)] = i
	}

	missing := make([]string, 0)
	for _, name := range required {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("ingest: missing required columns: %s", strings.Join(missing, ", "))
	}

	return &table{index: index, rows: records[1:]}, nil
}

// cell returns a named column's trimmed value; short rows read as empty.
func (t *table) cell(row []string, column string) string {
	i, ok := t.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// timestampLayouts are the accepted submission timestamp shapes.
var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if at, err := time.Parse(layout, raw); err == nil {
			return at, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", raw)
}

package ingest

import (
	"fmt"
	"io"
	"strconv"
	"time"

	gas "energywatch/internal/gas/domain"
	readings "energywatch/internal/readings/domain"
)

// Submission format names, used for metrics labels and audit actions.
const (
	FormatOverrides = "overrides"
	FormatPeak      = "peak"
	FormatProject   = "project"
	FormatTankTable = "tank_table"
	FormatEOD       = "eod_value"
)

const eodDateLayout = "02-01-2006"

// DecodeOverrides decodes a measurement correction CSV into override
// readings for one category. Every row of a batch carries the same
// submission timestamp so the batch supersedes older ones as a whole.
func DecodeOverrides(r io.Reader, category string, submitAt time.Time) ([]readings.Reading, Report, error) {
	tab, err := readTable(r, []string{"DTM", "ZONE", "PROVINCE", "TYPE", "VALDUMMY"})
	if err != nil {
		return nil, Report{}, err
	}

	report := Report{Total: len(tab.rows)}
	rows := make([]readings.Reading, 0, len(tab.rows))
	for i, row := range tab.rows {
		line := i + 2
		dataAt, err := parseTimestamp(tab.cell(row, "DTM"))
		if err != nil {
			report.reject(line, err.Error())
			continue
		}
		value, err := strconv.ParseFloat(tab.cell(row, "VALDUMMY"), 64)
		if err != nil {
			report.reject(line, fmt.Sprintf("invalid value %q", tab.cell(row, "VALDUMMY")))
			continue
		}
		rows = append(rows, readings.Reading{
			Category: category,
			DataAt:   dataAt,
			SubmitAt: submitAt,
			Zone:     tab.cell(row, "ZONE"),
			Province: tab.cell(row, "PROVINCE"),
			ValueTag: tab.cell(row, "TYPE"),
			Value:    value,
		})
	}
	return rows, report, nil
}

// PeakCorrection is one manually corrected peak sample. Line is the source
// row, kept so apply-stage failures report the same way parse failures do.
type PeakCorrection struct {
	Line  int
	At    time.Time
	Value float64
}

// DecodePeakCorrections decodes a Time,Value CSV of peak overwrites.
func DecodePeakCorrections(r io.Reader) ([]PeakCorrection, Report, error) {
	tab, err := readTable(r, []string{"Time", "Value"})
	if err != nil {
		return nil, Report{}, err
	}

	report := Report{Total: len(tab.rows)}
	rows := make([]PeakCorrection, 0, len(tab.rows))
	for i, row := range tab.rows {
		line := i + 2
		at, err := parseTimestamp(tab.cell(row, "Time"))
		if err != nil {
			report.reject(line, err.Error())
			continue
		}
		value, err := strconv.ParseFloat(tab.cell(row, "Value"), 64)
		if err != nil {
			report.reject(line, fmt.Sprintf("invalid value %q", tab.cell(row, "Value")))
			continue
		}
		rows = append(rows, PeakCorrection{Line: line, At: at, Value: value})
	}
	return rows, report, nil
}

// DecodeTankTable decodes the terminal strapping table CSV. Volume cells
// that do not parse load as absent, not as row failures: the table
// legitimately has levels rated for only one of the two tanks.
func DecodeTankTable(r io.Reader) ([]gas.Breakpoint, Report, error) {
	tab, err := readTable(r, []string{"level_cm", "lmpt2_tank1_m3", "lmpt2_tank2_m3"})
	if err != nil {
		return nil, Report{}, err
	}

	report := Report{Total: len(tab.rows)}
	rows := make([]gas.Breakpoint, 0, len(tab.rows))
	for i, row := range tab.rows {
		line := i + 2
		level, err := strconv.Atoi(tab.cell(row, "level_cm"))
		if err != nil {
			report.reject(line, fmt.Sprintf("invalid level %q", tab.cell(row, "level_cm")))
			continue
		}
		rows = append(rows, gas.Breakpoint{
			LevelCM: level,
			Tank1M3: optionalFloat(tab.cell(row, "lmpt2_tank1_m3")),
			Tank2M3: optionalFloat(tab.cell(row, "lmpt2_tank2_m3")),
		})
	}
	return rows, report, nil
}

// EODRow is one decoded end-of-day correction with its source row.
type EODRow struct {
	Line  int
	Value gas.EODValue
}

// DecodeEODValues decodes a tag,date,value CSV of end-of-day corrections.
// Dates use the day-first shape the operations team exports.
func DecodeEODValues(r io.Reader, updatedAt time.Time) ([]EODRow, Report, error) {
	tab, err := readTable(r, []string{"tag", "date", "value"})
	if err != nil {
		return nil, Report{}, err
	}

	report := Report{Total: len(tab.rows)}
	rows := make([]EODRow, 0, len(tab.rows))
	for i, row := range tab.rows {
		line := i + 2
		date, err := time.Parse(eodDateLayout, tab.cell(row, "date"))
		if err != nil {
			report.reject(line, fmt.Sprintf("invalid date %q", tab.cell(row, "date")))
			continue
		}
		value, err := strconv.ParseFloat(tab.cell(row, "value"), 64)
		if err != nil {
			report.reject(line, fmt.Sprintf("invalid value %q", tab.cell(row, "value")))
			continue
		}
		record := gas.EODValue{
			Tag:       tab.cell(row, "tag"),
			Date:      date,
			Value:     value,
			UpdatedAt: updatedAt,
		}
		if err := record.Validate(); err != nil {
			report.reject(line, err.Error())
			continue
		}
		rows = append(rows, EODRow{Line: line, Value: record})
	}
	return rows, report, nil
}

func optionalFloat(raw string) *float64 {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &value
}

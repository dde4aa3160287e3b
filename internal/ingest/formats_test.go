package ingest

import (
	"strings"
	"testing"
	"time"
)

var submitAt = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func TestDecodeOverridesSkipsBadRows(t *testing.T) {
	csv := "\ufeffDTM,ZONE,PROVINCE,TYPE,VALDUMMY\n" +
		"2026-02-01T00:00:00,MAC,Bangkok,solar,120.5\n" +
		"2026-02-01T00:30:00,MAC,Bangkok,solar,not-a-number\n" +
		"bad-stamp,NAC,Chiang Mai,wind,40\n" +
		"2026-02-01T01:00:00,NAC,Chiang Mai,wind,40\n"

	rows, report, err := DecodeOverrides(strings.NewReader(csv), "ips", submitAt)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Total != 4 || report.Failed != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Errors[0].Line != 3 || report.Errors[1].Line != 4 {
		t.Fatalf("unexpected error lines %+v", report.Errors)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	first := rows[0]
	if first.Category != "ips" || first.Zone != "MAC" || first.ValueTag != "solar" || first.Value != 120.5 {
		t.Fatalf("unexpected row %+v", first)
	}
	if !first.SubmitAt.Equal(submitAt) {
		t.Fatalf("expected submit stamp %v, got %v", submitAt, first.SubmitAt)
	}
}

func TestDecodeOverridesMissingColumns(t *testing.T) {
	csv := "DTM,ZONE,VALDUMMY\n2026-02-01T00:00:00,MAC,1\n"
	_, _, err := DecodeOverrides(strings.NewReader(csv), "vspp", submitAt)
	if err == nil {
		t.Fatal("expected missing column error")
	}
	if !strings.Contains(err.Error(), "PROVINCE") || !strings.Contains(err.Error(), "TYPE") {
		t.Fatalf("error should itemize missing columns, got %v", err)
	}
}

func TestDecodePeakCorrections(t *testing.T) {
	csv := "Time,Value\n2026-02-01 14:30:00,31250.75\nnope,1\n"
	rows, report, err := DecodePeakCorrections(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Failed != 1 || len(rows) != 1 {
		t.Fatalf("unexpected report %+v rows %d", report, len(rows))
	}
	row := rows[0]
	if row.Line != 2 || row.Value != 31250.75 {
		t.Fatalf("unexpected row %+v", row)
	}
	want := time.Date(2026, 2, 1, 14, 30, 0, 0, time.UTC)
	if !row.At.Equal(want) {
		t.Fatalf("expected %v, got %v", want, row.At)
	}
}

func TestDecodeTankTableUnratedVolumeIsAbsent(t *testing.T) {
	csv := "level_cm,lmpt2_tank1_m3,lmpt2_tank2_m3\n" +
		"120,1000,998.5\n" +
		"121,,1003\n" +
		"abc,1,2\n"
	rows, report, err := DecodeTankTable(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Failed != 1 {
		t.Fatalf("only the bad level should fail, got %+v", report)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[1].Tank1M3 != nil {
		t.Fatalf("blank volume should decode as absent, got %v", *rows[1].Tank1M3)
	}
	if rows[1].Tank2M3 == nil || *rows[1].Tank2M3 != 1003 {
		t.Fatalf("unexpected tank2 volume %+v", rows[1].Tank2M3)
	}
}

func TestDecodeEODValuesDayFirstDates(t *testing.T) {
	csv := "tag,date,value\n" +
		"lmpt1_sendout,15-02-2026,812.4\n" +
		"lmpt1_sendout,2026-02-15,1\n"
	rows, report, err := DecodeEODValues(strings.NewReader(csv), submitAt)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Failed != 1 || len(rows) != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	row := rows[0].Value
	if row.Tag != "lmpt1_sendout" || row.Value != 812.4 {
		t.Fatalf("unexpected row %+v", row)
	}
	if !row.Date.Equal(time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", row.Date)
	}
	if !row.UpdatedAt.Equal(submitAt) {
		t.Fatalf("unexpected update stamp %v", row.UpdatedAt)
	}
}

func TestReportSummary(t *testing.T) {
	report := Report{Total: 3}
	if got := report.Summary(); got != "3 rows inserted without error" {
		t.Fatalf("unexpected summary %q", got)
	}
	report.reject(2, "invalid value")
	if got := report.Summary(); got != "1 of 3 rows failed: line 2: invalid value" {
		t.Fatalf("unexpected summary %q", got)
	}
}

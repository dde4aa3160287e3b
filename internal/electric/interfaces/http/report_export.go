package http

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	peaks "energywatch/internal/peaks/domain"
	"energywatch/internal/timeseries"
)

// BuildDailyReportPDF renders the day's demand profile and peak summary.
func BuildDailyReportPDF(day time.Time, profile timeseries.Series, summary []peaks.WindowPeak) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Daily Demand Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Day: %s", day.Format("2006-01-02")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Samples: %d", len(profile.Points)))
	pdf.Ln(8)

	// Peak summary table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(40, 6, "Window", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Peak (MW)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "At", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, window := range summary {
		pdf.CellFormat(40, 6, window.Window, "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, fmt.Sprintf("%.2f", window.Value), "1", 0, "R", false, 0, "")
		pdf.CellFormat(50, 6, window.At.Format("2006-01-02 15:04"), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(4)

	// Demand profile table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(40, 6, "Time", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Demand (MW)", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, point := range profile.Points {
		pdf.CellFormat(40, 6, point.At.Format("15:04"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, fmt.Sprintf("%.4f", point.Value), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildDailyReportXLSX renders the day's demand profile and peak summary.
func BuildDailyReportXLSX(day time.Time, profile timeseries.Series, summary []peaks.WindowPeak) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	profileSheet := "profile"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(profileSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Daily Demand Report")
	_ = f.SetCellValue(summarySheet, "A3", "Day")
	_ = f.SetCellValue(summarySheet, "B3", day.Format("2006-01-02"))
	_ = f.SetCellValue(summarySheet, "A5", "Window")
	_ = f.SetCellValue(summarySheet, "B5", "Peak (MW)")
	_ = f.SetCellValue(summarySheet, "C5", "At")
	for i, window := range summary {
		row := i + 6
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), window.Window)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), window.Value)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("C%d", row), window.At.Format("2006-01-02 15:04"))
	}

	_ = f.SetCellValue(profileSheet, "A1", "Time")
	_ = f.SetCellValue(profileSheet, "B1", "Demand (MW)")
	for i, point := range profile.Points {
		row := i + 2
		_ = f.SetCellValue(profileSheet, fmt.Sprintf("A%d", row), point.At.Format("15:04"))
		_ = f.SetCellValue(profileSheet, fmt.Sprintf("B%d", row), point.Value)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Package export writes the call table for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"call-dashboard-go/internal/formatting"
	"call-dashboard-go/internal/types"
)

// Header is the first row of every export.
var Header = []string{"Name", "Email", "Goal", "Segment", "Date", "Duration", "Status", "Recording", "Transcript", "Summary"}

// Row renders one record in Header order.
func Row(rec types.CallRecord, loc *time.Location) []string {
	return []string{
		rec.Name,
		rec.Email,
		rec.FitnessGoal,
		rec.Segment,
		formatting.FormatDate(rec.Date, loc),
		formatting.FormatDuration(rec.Duration),
		rec.StatusLabel(),
		rec.Recording,
		rec.Transcript,
		rec.Summary,
	}
}

// WriteCSV writes the records as RFC 4180 CSV. Fields holding commas, quotes
// or newlines are quoted, so transcripts survive the round trip.
func WriteCSV(w io.Writer, records []types.CallRecord, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, rec := range records {
		if err := cw.Write(Row(rec, loc)); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

const sheetName = "Call Logs"

// WriteXLSX writes the same table as a single-sheet workbook.
func WriteXLSX(w io.Writer, records []types.CallRecord, loc *time.Location) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}
	if err := sw.SetRow("A1", toCells(Header)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, rec := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, toCells(Row(rec, loc))); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func toCells(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}

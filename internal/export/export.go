// Package export renders a week of shifts as CSV, JSON, Markdown or XLSX.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Tiliavir/rp-shift-tracker/internal/model"
	"github.com/Tiliavir/rp-shift-tracker/internal/timecalc"
)

// Format is an output format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatXLSX     Format = "xlsx"
)

// ParseFormat validates a format name. "markdown" is accepted for md.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatMarkdown, FormatXLSX:
		return f, nil
	case "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv, json, md or xlsx)", s)
	}
}

// Report is one week of shifts for a set of departments.
type Report struct {
	Window      timecalc.Window
	Departments []string
	Shifts      []model.Shift
}

// TotalSeconds sums the shift durations.
func (r Report) TotalSeconds() int64 {
	var total int64
	for _, s := range r.Shifts {
		total += s.DurationSeconds
	}
	return total
}

var header = []string{"date", "day", "start", "end", "duration_seconds", "duration"}

func row(s model.Shift) []string {
	return []string{
		s.Start.Format("2006-01-02"),
		s.Start.Format("Mon"),
		s.Start.Format("15:04:05"),
		s.End.Format("15:04:05"),
		strconv.FormatInt(s.DurationSeconds, 10),
		timecalc.FormatDurationHHMMSS(s.DurationSeconds),
	}
}

// Write renders r to w in format f.
func Write(w io.Writer, r Report, f Format) error {
	switch f {
	case FormatCSV:
		return writeCSV(w, r)
	case FormatJSON:
		return writeJSON(w, r)
	case FormatMarkdown:
		return writeMarkdown(w, r)
	case FormatXLSX:
		return writeXLSX(w, r)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}

func writeCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range r.Shifts {
		if err := cw.Write(row(s)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonReport struct {
	WeekStart    time.Time     `json:"week_start"`
	WeekEnd      time.Time     `json:"week_end"`
	Label        string        `json:"label"`
	Departments  []string      `json:"departments"`
	Shifts       []model.Shift `json:"shifts"`
	TotalSeconds int64         `json:"total_seconds"`
	Total        string        `json:"total"`
}

func writeJSON(w io.Writer, r Report) error {
	shifts := r.Shifts
	if shifts == nil {
		shifts = []model.Shift{}
	}
	depts := r.Departments
	if depts == nil {
		depts = []string{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		WeekStart:    r.Window.Start,
		WeekEnd:      r.Window.End,
		Label:        r.Window.Label(),
		Departments:  depts,
		Shifts:       shifts,
		TotalSeconds: r.TotalSeconds(),
		Total:        timecalc.FormatDurationHHMMSS(r.TotalSeconds()),
	})
}

func writeMarkdown(w io.Writer, r Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "## Week %s\n\n", r.Window.Label())
	if len(r.Departments) > 0 {
		fmt.Fprintf(&b, "Departments: %s\n\n", strings.Join(r.Departments, ", "))
	}
	b.WriteString("| Day | Start | End | Duration |\n")
	b.WriteString("|-----|-------|-----|----------|\n")
	for i, s := range r.Shifts {
		day := ""
		// Only the first shift of a day carries the day label.
		if i == 0 || !timecalc.SameDay(r.Shifts[i-1].Start, s.Start) {
			day = s.Start.Format("Mon 2006-01-02")
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			day, s.Start.Format("15:04:05"), s.End.Format("15:04:05"),
			timecalc.FormatDurationHHMMSS(s.DurationSeconds))
	}
	fmt.Fprintf(&b, "| **Total** | | | **%s** |\n", timecalc.FormatDurationHHMMSS(r.TotalSeconds()))
	_, err := io.WriteString(w, b.String())
	return err
}

// SheetName is the worksheet written by the XLSX export.
const SheetName = "Shifts"

func writeXLSX(w io.Writer, r Report) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return fmt.Errorf("failed to set cell value: %w", err)
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, s := range r.Shifts {
		values := row(s)
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			var val any = v
			if j == 4 {
				val = s.DurationSeconds
			}
			if err := f.SetCellValue(SheetName, cell, val); err != nil {
				return fmt.Errorf("failed to set cell value: %w", err)
			}
		}
	}

	totalRow := len(r.Shifts) + 2
	totals := map[int]any{
		1: "total",
		5: r.TotalSeconds(),
		6: timecalc.FormatDurationHHMMSS(r.TotalSeconds()),
	}
	for col, val := range totals {
		cell, _ := excelize.CoordinatesToCellName(col, totalRow)
		if err := f.SetCellValue(SheetName, cell, val); err != nil {
			return fmt.Errorf("failed to set cell value: %w", err)
		}
	}
	first, _ := excelize.CoordinatesToCellName(1, totalRow)
	end, _ := excelize.CoordinatesToCellName(len(header), totalRow)
	if err := f.SetCellStyle(SheetName, first, end, bold); err != nil {
		return fmt.Errorf("style totals: %w", err)
	}
	if err := f.SetColWidth(SheetName, "A", "F", 14); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

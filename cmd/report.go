package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/rp-shift-tracker/internal/errclass"
	"github.com/Tiliavir/rp-shift-tracker/internal/model"
	"github.com/Tiliavir/rp-shift-tracker/internal/shift"
	"github.com/Tiliavir/rp-shift-tracker/internal/timecalc"
)

var (
	reportDate   string
	reportOffset int
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show weekly hours per department",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportDate, "date", "", "Report the week containing this date (YYYY-MM-DD)")
	reportCmd.Flags().IntVar(&reportOffset, "offset", 0, "Move by N weeks (-1 = previous week)")
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json")
}

type departmentTotal struct {
	Department   string `json:"department"`
	TotalSeconds int64  `json:"total_seconds"`
	Total        string `json:"total"`
}

func runReport(cmd *cobra.Command, args []string) error {
	win, err := state.window(reportDate, reportOffset)
	if err != nil {
		return err
	}
	events, err := state.ledger.LoadAll()
	state.degraded("event log partially read", err)

	totals := weeklyTotals(events, win, now())
	out := cmd.OutOrStdout()
	switch reportFormat {
	case "csv":
		return writeTotalsCSV(out, totals)
	case "json":
		return writeTotalsJSON(out, win, totals)
	case "md":
		printTotals(out, win, totals)
		return nil
	default:
		return errclass.ErrValidation.WithMessagef("unknown report format %q (want md, csv or json)", reportFormat)
	}
}

// weeklyTotals aggregates each department of events on its own, soft-deleted
// ones included, and drops departments without time in win.
func weeklyTotals(events []model.ShiftEvent, win timecalc.Window, t time.Time) []departmentTotal {
	byDept := map[string][]model.ShiftEvent{}
	for _, ev := range events {
		byDept[ev.Department] = append(byDept[ev.Department], ev)
	}
	var totals []departmentTotal
	for dept, evs := range byDept {
		sec := shift.TotalSeconds(evs, win.Start, win.End, t)
		if sec == 0 {
			continue
		}
		totals = append(totals, departmentTotal{
			Department:   dept,
			TotalSeconds: sec,
			Total:        timecalc.FormatDurationHHMMSS(sec),
		})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Department < totals[j].Department })
	return totals
}

func grandTotal(totals []departmentTotal) int64 {
	var sum int64
	for _, t := range totals {
		sum += t.TotalSeconds
	}
	return sum
}

func printTotals(w io.Writer, win timecalc.Window, totals []departmentTotal) {
	fmt.Fprintf(w, "Week %s\n", win.Label())
	fmt.Fprintln(w, "--------------------------------")
	for _, t := range totals {
		fmt.Fprintf(w, "%-22s%s\n", t.Department, t.Total)
	}
	fmt.Fprintln(w, "--------------------------------")
	fmt.Fprintf(w, "%-22s%s\n", "Total", timecalc.FormatDurationHHMMSS(grandTotal(totals)))
}

func writeTotalsCSV(w io.Writer, totals []departmentTotal) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"department", "total_seconds", "total"})
	for _, t := range totals {
		_ = cw.Write([]string{t.Department, strconv.FormatInt(t.TotalSeconds, 10), t.Total})
	}
	cw.Flush()
	return cw.Error()
}

func writeTotalsJSON(w io.Writer, win timecalc.Window, totals []departmentTotal) error {
	if totals == nil {
		totals = []departmentTotal{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Week         string            `json:"week"`
		Departments  []departmentTotal `json:"departments"`
		TotalSeconds int64             `json:"total_seconds"`
	}{
		Week:         win.Label(),
		Departments:  totals,
		TotalSeconds: grandTotal(totals),
	})
}

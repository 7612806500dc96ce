package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/rp-shift-tracker/internal/model"
	"github.com/Tiliavir/rp-shift-tracker/internal/shift"
	"github.com/Tiliavir/rp-shift-tracker/internal/timecalc"
)

var (
	shiftsDate   string
	shiftsOffset int
	shiftsDepts  []string
	shiftsAll    bool
)

var shiftsCmd = &cobra.Command{
	Use:   "shifts",
	Short: "List the shifts of a week",
	Long: `List the shifts of a week. Without flags the current week of the current
department is shown. --offset moves by whole weeks (-1 = previous week),
--date picks the week containing that day. Several --dept flags, or --all,
merge the departments into one timeline.`,
	Args: cobra.NoArgs,
	RunE: runShifts,
}

func init() {
	addWeekFlags(shiftsCmd, &shiftsDate, &shiftsOffset, &shiftsDepts, &shiftsAll)
}

// addWeekFlags registers the week and department selection flags shared by
// shifts and export.
func addWeekFlags(c *cobra.Command, date *string, offset *int, depts *[]string, all *bool) {
	c.Flags().StringVar(date, "date", "", "Show the week containing this date (YYYY-MM-DD)")
	c.Flags().IntVar(offset, "offset", 0, "Move by N weeks (-1 = previous week)")
	c.Flags().StringSliceVar(depts, "dept", nil, "Department; repeat to merge several")
	c.Flags().BoolVar(all, "all", false, "Merge all departments")
}

func runShifts(cmd *cobra.Command, args []string) error {
	win, err := state.window(shiftsDate, shiftsOffset)
	if err != nil {
		return err
	}
	depts, err := state.selectedDepartments(shiftsDepts, shiftsAll)
	if err != nil {
		return err
	}
	printShifts(cmd.OutOrStdout(), win, depts, state.weekShifts(depts, win))
	return nil
}

// printShifts groups shifts by start day and prints them with the week total.
func printShifts(w io.Writer, win timecalc.Window, depts []string, shifts []model.Shift) {
	fmt.Fprintf(w, "Week %s\n", win.Label())
	fmt.Fprintf(w, "Departments: %s\n", strings.Join(depts, ", "))

	if len(shifts) == 0 {
		fmt.Fprintln(w, "No shifts found.")
		return
	}

	var currentDay string
	for _, s := range shifts {
		day := s.Start.Format("2006-01-02 Mon")
		if day != currentDay {
			fmt.Fprintln(w, day)
			currentDay = day
		}
		fmt.Fprintf(w, "  %s–%s  %s\n",
			s.Start.Format("15:04:05"), s.End.Format("15:04:05"),
			timecalc.FormatDurationHHMMSS(s.DurationSeconds))
	}
	fmt.Fprintf(w, "Total: %s\n", timecalc.FormatDurationHHMMSS(shift.Sum(shifts)))
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/rp-shift-tracker/internal/errclass"
	"github.com/Tiliavir/rp-shift-tracker/internal/model"
)

var (
	inDept     string
	outDept    string
	toggleDept string
)

var inCmd = &cobra.Command{
	Use:   "in",
	Short: "Clock in to a department",
	Args:  cobra.NoArgs,
	RunE:  runIn,
}

var outCmd = &cobra.Command{
	Use:   "out",
	Short: "Clock out of the running shift",
	Args:  cobra.NoArgs,
	RunE:  runOut,
}

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Clock in, or out when a shift is running",
	Args:  cobra.NoArgs,
	RunE:  runToggle,
}

func init() {
	inCmd.Flags().StringVar(&inDept, "dept", "", "Department (default: the current department)")
	outCmd.Flags().StringVar(&outDept, "dept", "", "Department (default: the clocked-in department)")
	toggleCmd.Flags().StringVar(&toggleDept, "dept", "", "Department (default: the clocked-in or current department)")
}

func runIn(cmd *cobra.Command, args []string) error {
	dept, err := state.resolveDepartment(inDept, false)
	if err != nil {
		return err
	}
	return clockIn(cmd, dept)
}

func runOut(cmd *cobra.Command, args []string) error {
	dept, err := state.resolveDepartment(outDept, true)
	if err != nil {
		return err
	}
	return clockOut(cmd, dept)
}

func runToggle(cmd *cobra.Command, args []string) error {
	dept, err := state.resolveDepartment(toggleDept, true)
	if err != nil {
		return err
	}
	if in, _ := state.ledger.IsClockedIn(dept); in {
		return clockOut(cmd, dept)
	}
	return clockIn(cmd, dept)
}

// clockIn records an IN for dept. Only one shift may run at a time.
func clockIn(cmd *cobra.Command, dept string) error {
	if running, ok := state.clockedIn(); ok {
		if running == dept {
			return errclass.ErrValidation.WithMessagef("Already clocked in to %q.", dept)
		}
		return errclass.ErrValidation.WithMessagef("Still clocked in to %q; clock out first (rpst out).", running)
	}
	if err := state.ledger.Append(model.ActionIn, dept); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Clocked in to %q at %s\n", dept, now().Format("15:04:05"))
	return nil
}

// clockOut records an OUT for dept and prints the length of the shift.
func clockOut(cmd *cobra.Command, dept string) error {
	events := state.events(dept)
	if len(events) == 0 || events[len(events)-1].Action != model.ActionIn {
		return errclass.ErrValidation.WithMessagef("Not clocked in to %q.", dept)
	}
	start := events[len(events)-1].Timestamp

	if err := state.ledger.Append(model.ActionOut, dept); err != nil {
		return err
	}
	t := now()
	elapsed := int64(t.Sub(start).Seconds())
	fmt.Fprintf(cmd.OutOrStdout(), "Clocked out of %q at %s. Shift: %s\n",
		dept, t.Format("15:04:05"), formatElapsed(elapsed))
	return nil
}

func formatElapsed(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

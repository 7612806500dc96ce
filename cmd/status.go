package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/rp-shift-tracker/internal/model"
	"github.com/Tiliavir/rp-shift-tracker/internal/shift"
	"github.com/Tiliavir/rp-shift-tracker/internal/timecalc"
)

var (
	statusDept    string
	statusWatch   bool
	statusOverlay bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show clock status and this week's hours",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusDept, "dept", "", "Department (default: the clocked-in or current department)")
	statusCmd.Flags().BoolVar(&statusWatch, "watch", false, "Refresh until interrupted (interval: refresh_interval)")
	statusCmd.Flags().BoolVar(&statusOverlay, "overlay", false, "Print the one-line overlay view configured with 'rpst overlay set'")
}

type statusView struct {
	Department  string
	ClockedIn   bool
	Since       time.Time
	Now         time.Time
	Window      timecalc.Window
	WeekSeconds int64
}

func runStatus(cmd *cobra.Command, args []string) error {
	dept, err := state.resolveDepartment(statusDept, true)
	if err != nil {
		return err
	}

	var opts model.DisplayOptions
	if statusOverlay {
		settings, err := state.overlay.Load()
		state.degraded("overlay settings unreadable, using defaults", err)
		opts = settings.DisplayOptions
	}

	out := cmd.OutOrStdout()
	render := func() {
		v := buildStatus(dept, state.events(dept), now(), state.cfg.WeekStartDay)
		switch {
		case statusOverlay && statusWatch:
			fmt.Fprintf(out, "\r\033[K%s", overlayLine(v, opts))
		case statusOverlay:
			fmt.Fprintln(out, overlayLine(v, opts))
		case statusWatch:
			fmt.Fprint(out, "\033[H\033[2J")
			printStatus(out, v)
		default:
			printStatus(out, v)
		}
	}

	if !statusWatch {
		render()
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ticker := time.NewTicker(state.cfg.RefreshInterval)
	defer ticker.Stop()
	for {
		render()
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case <-ticker.C:
		}
	}
}

func buildStatus(dept string, events []model.ShiftEvent, t time.Time, weekStart time.Weekday) statusView {
	win := timecalc.WeekOf(t, weekStart)
	v := statusView{
		Department:  dept,
		Now:         t,
		Window:      win,
		WeekSeconds: shift.TotalSeconds(events, win.Start, win.End, t),
	}
	if n := len(events); n > 0 && events[n-1].Action == model.ActionIn {
		v.ClockedIn = true
		v.Since = events[n-1].Timestamp
	}
	return v
}

func printStatus(w io.Writer, v statusView) {
	fmt.Fprintf(w, "Department: %s\n", v.Department)
	if v.ClockedIn {
		elapsed := int64(v.Now.Sub(v.Since).Seconds())
		fmt.Fprintf(w, "Status:     Clocked in since %s (%s)\n",
			v.Since.Format("15:04:05"), timecalc.FormatDurationHHMMSS(elapsed))
	} else {
		fmt.Fprintln(w, "Status:     Clocked out")
	}
	fmt.Fprintf(w, "Week:       %s\n", v.Window.Label())
	fmt.Fprintf(w, "This week:  %s\n", timecalc.FormatDurationHHMMSS(v.WeekSeconds))
}

// overlayLine renders the parts selected in opts on one line.
func overlayLine(v statusView, opts model.DisplayOptions) string {
	var parts []string
	if opts.ShowStatus {
		if v.ClockedIn {
			parts = append(parts, "IN "+timecalc.FormatDurationHHMMSS(int64(v.Now.Sub(v.Since).Seconds())))
		} else {
			parts = append(parts, "OUT")
		}
	}
	if opts.ShowHours {
		parts = append(parts, "Week "+timecalc.FormatDurationHHMMSS(v.WeekSeconds))
	}
	if opts.ShowWeek {
		parts = append(parts, timecalc.ISOWeekLabel(v.Window.Start.AddDate(0, 0, 3)))
	}
	if opts.ShowDepartment {
		parts = append(parts, v.Department)
	}
	return strings.Join(parts, " | ")
}

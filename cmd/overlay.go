package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/rp-shift-tracker/internal/errclass"
	"github.com/Tiliavir/rp-shift-tracker/internal/model"
)

var (
	overlayEnabled        bool
	overlayPosition       string
	overlayX              int
	overlayY              int
	overlayCustom         bool
	overlayTransparency   float64
	overlayTransparentBG  bool
	overlayShowStatus     bool
	overlayShowHours      bool
	overlayShowWeek       bool
	overlayShowDepartment bool
)

var overlayCmd = &cobra.Command{
	Use:   "overlay",
	Short: "Show or change the overlay settings",
}

var overlayShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the overlay settings document",
	Args:  cobra.NoArgs,
	RunE:  runOverlayShow,
}

var overlaySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change overlay settings; only the given flags are applied",
	Args:  cobra.NoArgs,
	RunE:  runOverlaySet,
}

func init() {
	f := overlaySetCmd.Flags()
	f.BoolVar(&overlayEnabled, "enabled", false, "Show the overlay")
	f.StringVar(&overlayPosition, "position", "", "Anchor: top-left, top-center, top-right, middle-left, middle-right, bottom-left, bottom-center, bottom-right")
	f.IntVar(&overlayX, "x", 0, "Custom position x")
	f.IntVar(&overlayY, "y", 0, "Custom position y")
	f.BoolVar(&overlayCustom, "custom", false, "Use the custom x/y position instead of the anchor")
	f.Float64Var(&overlayTransparency, "transparency", 0, "Opacity between 0.0 and 1.0")
	f.BoolVar(&overlayTransparentBG, "transparent-background", false, "Draw without a background")
	f.BoolVar(&overlayShowStatus, "show-status", false, "Show the clock status")
	f.BoolVar(&overlayShowHours, "show-hours", false, "Show this week's hours")
	f.BoolVar(&overlayShowWeek, "show-week", false, "Show the week")
	f.BoolVar(&overlayShowDepartment, "show-department", false, "Show the department")

	overlayCmd.AddCommand(overlayShowCmd)
	overlayCmd.AddCommand(overlaySetCmd)
}

func runOverlayShow(cmd *cobra.Command, args []string) error {
	settings, err := state.overlay.Load()
	state.degraded("overlay settings unreadable, using defaults", err)
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func runOverlaySet(cmd *cobra.Command, args []string) error {
	settings, err := state.overlay.Load()
	state.degraded("overlay settings unreadable, using defaults", err)
	if err := applyOverlayFlags(cmd, &settings); err != nil {
		return err
	}
	if err := state.overlay.Save(settings); err != nil {
		return err
	}
	return runOverlayShow(cmd, args)
}

// applyOverlayFlags copies the flags given on the command line into s.
func applyOverlayFlags(cmd *cobra.Command, s *model.OverlaySettings) error {
	changed := cmd.Flags().Changed
	if changed("position") {
		p, err := model.ParsePosition(overlayPosition)
		if err != nil {
			return errclass.ErrValidation.WithMessage(err.Error())
		}
		s.Position = p
	}
	if changed("transparency") {
		if overlayTransparency < 0 || overlayTransparency > 1 {
			return errclass.ErrValidation.WithMessagef("transparency must be between 0.0 and 1.0, got %g", overlayTransparency)
		}
		s.Transparency = model.Transparency(overlayTransparency)
	}

	bools := []struct {
		flag  string
		value bool
		dst   *bool
	}{
		{"enabled", overlayEnabled, &s.Enabled},
		{"custom", overlayCustom, &s.CustomPosition.Enabled},
		{"transparent-background", overlayTransparentBG, &s.TransparentBackground},
		{"show-status", overlayShowStatus, &s.DisplayOptions.ShowStatus},
		{"show-hours", overlayShowHours, &s.DisplayOptions.ShowHours},
		{"show-week", overlayShowWeek, &s.DisplayOptions.ShowWeek},
		{"show-department", overlayShowDepartment, &s.DisplayOptions.ShowDepartment},
	}
	for _, b := range bools {
		if changed(b.flag) {
			*b.dst = b.value
		}
	}
	if changed("x") {
		s.CustomPosition.X = overlayX
	}
	if changed("y") {
		s.CustomPosition.Y = overlayY
	}
	return nil
}

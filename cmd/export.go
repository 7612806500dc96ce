package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/rp-shift-tracker/internal/errclass"
	"github.com/Tiliavir/rp-shift-tracker/internal/export"
	"github.com/Tiliavir/rp-shift-tracker/internal/fsutil"
)

var (
	exportFormat string
	exportOutput string
	exportDate   string
	exportOffset int
	exportDepts  []string
	exportAll    bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the shifts of a week",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, md, xlsx")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to FILE instead of stdout (required for xlsx)")
	addWeekFlags(exportCmd, &exportDate, &exportOffset, &exportDepts, &exportAll)
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return errclass.ErrValidation.WithMessage(err.Error())
	}
	if format == export.FormatXLSX && exportOutput == "" {
		return errclass.ErrValidation.WithMessage("xlsx export needs --output FILE")
	}

	win, err := state.window(exportDate, exportOffset)
	if err != nil {
		return err
	}
	depts, err := state.selectedDepartments(exportDepts, exportAll)
	if err != nil {
		return err
	}
	report := export.Report{Window: win, Departments: depts, Shifts: state.weekShifts(depts, win)}

	if exportOutput == "" {
		return export.Write(cmd.OutOrStdout(), report, format)
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, report, format); err != nil {
		return err
	}
	if err := fsutil.AtomicWrite(exportOutput, buf.Bytes(), 0o644); err != nil {
		return errclass.ErrIO.WithMessage("write export").Wrap(err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d shifts to %s\n", len(report.Shifts), exportOutput)
	return nil
}

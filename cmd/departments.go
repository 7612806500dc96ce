package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/rp-shift-tracker/internal/departments"
	"github.com/Tiliavir/rp-shift-tracker/internal/model"
)

var departmentsCmd = &cobra.Command{
	Use:     "departments",
	Aliases: []string{"dept"},
	Short:   "Manage departments",
}

var departmentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List departments (* marks the current one)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := state.depts.List()
		state.degraded("department document unreadable, using defaults", err)
		for _, d := range set.Departments {
			marker := " "
			if d == set.CurrentDepartment {
				marker = "*"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, d)
		}
		return nil
	},
}

var departmentsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a department",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := state.depts.Add(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added department %q.\n", name)
		return nil
	},
}

var departmentsRenameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename a department and its recorded shifts",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := state.depts.Rename(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Renamed department %q to %q.\n", departments.NormalizeName(args[0]), name)
		return nil
	},
}

var departmentsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a department; its shifts are kept under a [DELETED]: name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := state.depts.Delete(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted department %q. Its history is kept as %q.\n",
			name, model.DeletedName(name))
		return nil
	},
}

var departmentsSelectCmd = &cobra.Command{
	Use:   "select <name>",
	Short: "Make a department the current one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := state.depts.Select(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Current department: %s\n", name)
		return nil
	},
}

func init() {
	departmentsCmd.AddCommand(departmentsListCmd)
	departmentsCmd.AddCommand(departmentsAddCmd)
	departmentsCmd.AddCommand(departmentsRenameCmd)
	departmentsCmd.AddCommand(departmentsDeleteCmd)
	departmentsCmd.AddCommand(departmentsSelectCmd)
}

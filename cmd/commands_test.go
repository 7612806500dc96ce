package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/rp-shift-tracker/internal/errclass"
	"github.com/Tiliavir/rp-shift-tracker/internal/storage"
)

// resetFlags restores every flag of c and its subcommands to its default so
// consecutive executions in one test binary do not leak values.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

type harness struct {
	t    *testing.T
	home string
	at   time.Time
}

func newHarness(t *testing.T) *harness {
	h := &harness{t: t, home: t.TempDir(), at: time.Date(2024, 1, 3, 9, 0, 0, 0, time.Local)}
	t.Setenv("HOME", h.home)
	old := now
	now = func() time.Time { return h.at }
	t.Cleanup(func() { now = old })
	return h
}

func (h *harness) advance(d time.Duration) {
	h.at = h.at.Add(d)
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "rpst %s", strings.Join(args, " "))
	return out
}

func isValidation(err error) bool {
	return errors.Is(err, errclass.ErrValidation)
}

func TestClockWorkflow(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("departments", "add", "Sales")
	assert.Equal(t, "Added department \"Sales\".\n", out)

	out = h.mustRun("in")
	assert.Equal(t, "Clocked in to \"Default\" at 09:00:00\n", out)

	_, err := h.run("in")
	assert.True(t, isValidation(err))
	_, err = h.run("in", "--dept", "Sales")
	assert.True(t, isValidation(err), "only one shift may run at a time")

	h.advance(2 * time.Hour)
	out = h.mustRun("status")
	assert.Contains(t, out, "Department: Default")
	assert.Contains(t, out, "Clocked in since 09:00:00 (02:00:00)")
	assert.Contains(t, out, "This week:  02:00:00")

	out = h.mustRun("out")
	assert.Equal(t, "Clocked out of \"Default\" at 11:00:00. Shift: 2h 0m 0s\n", out)
	_, err = h.run("out")
	assert.True(t, isValidation(err))

	out = h.mustRun("toggle", "--dept", "Sales")
	assert.Contains(t, out, "Clocked in to \"Sales\"")
	h.advance(30 * time.Minute)
	out = h.mustRun("toggle")
	assert.Contains(t, out, "Clocked out of \"Sales\"")
	assert.Contains(t, out, "Shift: 30m 0s")

	log, err := os.ReadFile(filepath.Join(h.home, "RpShiftTracker", storage.LogFile))
	require.NoError(t, err)
	assert.Equal(t, storage.Header+"\n"+
		"2024-01-03T09:00:00,IN,Default\n"+
		"2024-01-03T11:00:00,OUT,Default\n"+
		"2024-01-03T11:00:00,IN,Sales\n"+
		"2024-01-03T11:30:00,OUT,Sales\n", string(log))

	out = h.mustRun("shifts", "--all")
	assert.Contains(t, out, "Departments: Default, Sales")
	assert.Contains(t, out, "  09:00:00–11:00:00  02:00:00")
	assert.Contains(t, out, "  11:00:00–11:30:00  00:30:00")
	assert.Contains(t, out, "Total: 02:30:00")

	out = h.mustRun("shifts", "--dept", "Sales")
	assert.Contains(t, out, "Total: 00:30:00")

	out = h.mustRun("shifts", "--offset=-1")
	assert.Contains(t, out, "Week 2023-12-25 (Mon) - 2023-12-31 (Sun)")
	assert.Contains(t, out, "No shifts found.")

	out = h.mustRun("shifts", "--date", "2024-01-07", "--all")
	assert.Contains(t, out, "Total: 02:30:00")

	_, err = h.run("shifts", "--date", "07.01.2024")
	assert.True(t, isValidation(err))

	out = h.mustRun("report", "--format", "csv")
	assert.Equal(t, "department,total_seconds,total\n"+
		"Default,7200,02:00:00\n"+
		"Sales,1800,00:30:00\n", out)

	out = h.mustRun("export", "--format", "json", "--all")
	var exported struct {
		TotalSeconds int64 `json:"total_seconds"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &exported))
	assert.Equal(t, int64(9000), exported.TotalSeconds)

	xlsx := filepath.Join(t.TempDir(), "week.xlsx")
	h.mustRun("export", "--format", "xlsx", "--all", "--output", xlsx)
	info, err := os.Stat(xlsx)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())

	_, err = h.run("export", "--format", "xlsx")
	assert.True(t, isValidation(err))
}

func TestDepartmentCommands(t *testing.T) {
	h := newHarness(t)

	h.mustRun("departments", "add", "Sales")
	h.mustRun("departments", "add", "Ops")
	_, err := h.run("departments", "add", "Sales")
	assert.True(t, isValidation(err))

	h.mustRun("in", "--dept", "Sales")
	h.advance(time.Hour)
	h.mustRun("out")

	out := h.mustRun("departments", "select", "  Ops ")
	assert.Equal(t, "Current department: Ops\n", out)
	out = h.mustRun("departments", "list")
	assert.Equal(t, "  Default\n  Sales\n* Ops\n", out)

	_, err = h.run("departments", "delete", "Ops")
	assert.True(t, isValidation(err), "current department cannot be deleted")

	out = h.mustRun("departments", "rename", "Sales", " Field Sales ")
	assert.Equal(t, "Renamed department \"Sales\" to \"Field Sales\".\n", out)
	out = h.mustRun("shifts", "--dept", "Field Sales")
	assert.Contains(t, out, "Total: 01:00:00")

	out = h.mustRun("departments", "delete", " Field Sales")
	assert.Equal(t, "Deleted department \"Field Sales\". Its history is kept as \"[DELETED]:Field Sales\".\n", out)
	_, err = h.run("shifts", "--dept", "Field Sales")
	assert.True(t, isValidation(err))

	out = h.mustRun("report")
	assert.Contains(t, out, "[DELETED]:Field Sales")
	assert.Contains(t, out, "01:00:00")
}

func TestDeleteRefusedWhileClockedIn(t *testing.T) {
	h := newHarness(t)

	h.mustRun("departments", "add", "Sales")
	h.mustRun("departments", "select", "Sales")
	h.mustRun("in")
	h.mustRun("departments", "select", "Default")

	_, err := h.run("departments", "delete", "Sales")
	assert.True(t, isValidation(err))

	h.advance(time.Hour)
	out := h.mustRun("out")
	assert.Contains(t, out, "Clocked out of \"Sales\"")

	h.mustRun("departments", "delete", "Sales")
	h.advance(24 * time.Hour)
	out = h.mustRun("report", "--format", "csv")
	assert.Equal(t, "department,total_seconds,total\n[DELETED]:Sales,3600,01:00:00\n", out)

	h.mustRun("in")
	_, err = h.run("in")
	assert.True(t, isValidation(err))
}

func TestOverlayCommands(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("overlay", "show")
	assert.Contains(t, out, `"position": "top-right"`)
	assert.Contains(t, out, `"transparency": 0.8`)

	out = h.mustRun("overlay", "set", "--position", "bottom-left", "--transparency", "0.4", "--show-week", "--custom", "--x", "20")
	assert.Contains(t, out, `"position": "bottom-left"`)
	assert.Contains(t, out, `"transparency": 0.4`)
	assert.Contains(t, out, `"show_week": true`)
	assert.Contains(t, out, `"x": 20`)
	assert.Contains(t, out, `"y": 100`)

	_, err := h.run("overlay", "set", "--position", "center")
	assert.True(t, isValidation(err))
	_, err = h.run("overlay", "set", "--transparency", "1.5")
	assert.True(t, isValidation(err))

	h.mustRun("in")
	h.advance(90 * time.Second)
	out = h.mustRun("status", "--overlay")
	assert.Equal(t, "IN 00:01:30 | Week 00:01:30 | 2024-W01\n", out)
}

func TestDataDirFlag(t *testing.T) {
	h := newHarness(t)
	dir := filepath.Join(t.TempDir(), "elsewhere")

	h.mustRun("--data-dir", dir, "in")
	_, err := os.Stat(filepath.Join(dir, storage.LogFile))
	assert.NoError(t, err)

	_, err = h.run("--log-level", "loud", "status")
	assert.True(t, isValidation(err))
}

func TestConfigErrors(t *testing.T) {
	h := newHarness(t)
	cfgPath := filepath.Join(h.home, "RpShiftTracker", storage.ConfigFile)
	require.NoError(t, os.MkdirAll(filepath.Dir(cfgPath), 0o700))
	dir := filepath.Join(t.TempDir(), "ledger")

	cfg := "data_dir: " + dir + "\nrefresh_interval: 10ms\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))
	h.mustRun("in")
	_, err := os.Stat(filepath.Join(dir, storage.LogFile))
	assert.NoError(t, err, "events go to the configured data_dir")
	_, err = os.Stat(filepath.Join(h.home, "RpShiftTracker", storage.LogFile))
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, os.WriteFile(cfgPath, []byte("data_dir: [oops\n"), 0o600))
	_, err = h.run("out")
	assert.True(t, errors.Is(err, errclass.ErrParse))

	h.mustRun("--data-dir", dir, "out")
}

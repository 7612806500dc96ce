package cmd

import (
	"time"

	"github.com/Tiliavir/rp-shift-tracker/internal/config"
	"github.com/Tiliavir/rp-shift-tracker/internal/departments"
	"github.com/Tiliavir/rp-shift-tracker/internal/errclass"
	"github.com/Tiliavir/rp-shift-tracker/internal/logging"
	"github.com/Tiliavir/rp-shift-tracker/internal/model"
	"github.com/Tiliavir/rp-shift-tracker/internal/overlay"
	"github.com/Tiliavir/rp-shift-tracker/internal/shift"
	"github.com/Tiliavir/rp-shift-tracker/internal/storage"
	"github.com/Tiliavir/rp-shift-tracker/internal/timecalc"
)

// now is the time source for every command.
var now = time.Now

type clockFunc func() time.Time

func (f clockFunc) Now() time.Time { return f() }

// state is built by setup before any subcommand runs.
var state *app

// app bundles the stores of one data directory.
type app struct {
	cfg      config.Config
	log      *logging.Logger
	ledger   *storage.Ledger
	registry *departments.Registry
	depts    *departments.Manager
	overlay  *overlay.Store
}

func newApp(cfg config.Config, log *logging.Logger) *app {
	paths := storage.Paths{Dir: cfg.DataDir}
	component := func(name string) *logging.Logger {
		return log.WithFields(map[string]any{"component": name})
	}
	ledger := storage.NewLedger(paths.Log(),
		storage.WithClock(clockFunc(func() time.Time { return now() })),
		storage.WithLogger(component("ledger")))
	registry := departments.NewRegistry(paths.Departments(), component("departments"))
	return &app{
		cfg:      cfg,
		log:      log,
		ledger:   ledger,
		registry: registry,
		depts:    departments.NewManager(registry, ledger, component("departments")),
		overlay:  overlay.NewStore(paths.Overlay(), component("overlay")),
	}
}

// degraded logs a read that returned usable but incomplete data.
func (a *app) degraded(msg string, err error) {
	if err != nil {
		a.log.WarnErr(msg, err)
	}
}

func (a *app) departmentSet() model.DepartmentSet {
	set, err := a.registry.Load()
	a.degraded("department document unreadable, using defaults", err)
	return set
}

func (a *app) events(department string) []model.ShiftEvent {
	events, err := a.ledger.Load(department)
	a.degraded("event log partially read", err)
	return events
}

func (a *app) clockedIn() (string, bool) {
	dept, ok, err := a.ledger.ClockedInDepartment()
	a.degraded("event log partially read", err)
	return dept, ok
}

// resolveDepartment picks the department a command acts on: the --dept flag
// if given, else the clocked-in department when preferClockedIn, else the
// current department of the registry.
func (a *app) resolveDepartment(flag string, preferClockedIn bool) (string, error) {
	set := a.departmentSet()
	if flag != "" {
		name := departments.NormalizeName(flag)
		if !set.Contains(name) {
			return "", errclass.ErrValidation.WithMessagef("unknown department %q (add it with: rpst departments add %q)", name, name)
		}
		return name, nil
	}
	if preferClockedIn {
		if dept, ok := a.clockedIn(); ok {
			return dept, nil
		}
	}
	return set.CurrentDepartment, nil
}

// selectedDepartments resolves the --dept/--all flags of the week views.
func (a *app) selectedDepartments(flags []string, all bool) ([]string, error) {
	if all {
		return a.departmentSet().Departments, nil
	}
	if len(flags) == 0 {
		dept, err := a.resolveDepartment("", false)
		return []string{dept}, err
	}
	var out []string
	seen := map[string]bool{}
	for _, f := range flags {
		dept, err := a.resolveDepartment(f, false)
		if err != nil {
			return nil, err
		}
		if !seen[dept] {
			seen[dept] = true
			out = append(out, dept)
		}
	}
	return out, nil
}

// window returns the week containing date (today when empty) moved by
// offset weeks.
func (a *app) window(date string, offset int) (timecalc.Window, error) {
	base := now()
	if date != "" {
		d, err := timecalc.ParseDate(date)
		if err != nil {
			return timecalc.Window{}, errclass.ErrValidation.WithMessage(err.Error())
		}
		base = d
	}
	return timecalc.WeekOf(base, a.cfg.WeekStartDay).Shift(offset), nil
}

// weekShifts merges the events of depts and computes their shifts in win.
func (a *app) weekShifts(depts []string, win timecalc.Window) []model.Shift {
	lists := make([][]model.ShiftEvent, 0, len(depts))
	for _, d := range depts {
		lists = append(lists, a.events(d))
	}
	return shift.Compute(shift.Merge(lists...), win.Start, win.End, now())
}

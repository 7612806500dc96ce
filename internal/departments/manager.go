package departments

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/Tiliavir/rp-shift-tracker/internal/errclass"
	"github.com/Tiliavir/rp-shift-tracker/internal/logging"
	"github.com/Tiliavir/rp-shift-tracker/internal/model"
)

// EventLog is the part of the event ledger the manager changes along with
// the department set.
type EventLog interface {
	RenameDepartment(oldName, newName string) (int, error)
	IsClockedIn(department string) (bool, error)
}

// Manager applies validated mutations to the department set. Each mutation
// loads the document, changes it and saves it again.
type Manager struct {
	registry *Registry
	ledger   EventLog
	log      *logging.Logger
}

// NewManager returns a Manager. A nil logger discards output.
func NewManager(registry *Registry, ledger EventLog, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.Nop()
	}
	return &Manager{registry: registry, ledger: ledger, log: log}
}

// NormalizeName trims name and converts it to Unicode NFC so visually equal
// names compare equal.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// ValidateName checks a normalized department name.
func ValidateName(name string) error {
	if name == "" {
		return errclass.ErrValidation.WithMessage("department name must not be empty")
	}
	if model.IsDeleted(name) {
		return errclass.ErrValidation.WithMessagef("department name must not start with %q", model.DeletedPrefix)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return errclass.ErrValidation.WithMessagef("department name must not contain control characters: %q", name)
		}
	}
	return nil
}

// List returns the current department set. The error reports a degraded read;
// the set is always usable.
func (m *Manager) List() (model.DepartmentSet, error) {
	return m.registry.Load()
}

// Add registers a new department and returns its normalized name.
func (m *Manager) Add(name string) (string, error) {
	name = NormalizeName(name)
	if err := ValidateName(name); err != nil {
		return "", err
	}
	set, err := m.load()
	if err != nil {
		return "", err
	}
	if set.Contains(name) {
		return "", errclass.ErrValidation.WithMessagef("department %q already exists", name)
	}
	set.Departments = append(set.Departments, name)
	if err := m.registry.Save(set); err != nil {
		return "", err
	}
	m.log.Info("department added", map[string]any{"department": name})
	return name, nil
}

// Rename renames a department in the event log and in the registry and
// returns the normalized new name. The current department follows the rename.
func (m *Manager) Rename(oldName, newName string) (string, error) {
	oldName = NormalizeName(oldName)
	newName = NormalizeName(newName)
	if err := ValidateName(newName); err != nil {
		return "", err
	}
	set, err := m.load()
	if err != nil {
		return "", err
	}
	if !set.Contains(oldName) {
		return "", errclass.ErrValidation.WithMessagef("department %q does not exist", oldName)
	}
	if oldName == newName {
		return newName, nil
	}
	if set.Contains(newName) {
		return "", errclass.ErrValidation.WithMessagef("department %q already exists", newName)
	}

	n, err := m.ledger.RenameDepartment(oldName, newName)
	if err != nil {
		return "", err
	}
	for i, d := range set.Departments {
		if d == oldName {
			set.Departments[i] = newName
		}
	}
	if set.CurrentDepartment == oldName {
		set.CurrentDepartment = newName
	}
	if err := m.registry.Save(set); err != nil {
		return "", err
	}
	m.log.Info("department renamed", map[string]any{"from": oldName, "to": newName, "records": n})
	return newName, nil
}

// Delete soft-deletes a department and returns its normalized name: its
// events are retagged with the deleted prefix and the name is removed from
// the list. The last remaining department, the current department and a
// department with a running shift cannot be deleted.
func (m *Manager) Delete(name string) (string, error) {
	name = NormalizeName(name)
	set, err := m.load()
	if err != nil {
		return "", err
	}
	switch {
	case !set.Contains(name):
		return "", errclass.ErrValidation.WithMessagef("department %q does not exist", name)
	case len(set.Departments) == 1:
		return "", errclass.ErrValidation.WithMessage("cannot delete the last department")
	case set.CurrentDepartment == name:
		return "", errclass.ErrValidation.WithMessagef("cannot delete the current department %q; select another one first", name)
	}

	running, err := m.ledger.IsClockedIn(name)
	if err != nil && !errors.Is(err, errclass.ErrParse) {
		return "", err
	}
	if running {
		return "", errclass.ErrValidation.WithMessagef("cannot delete %q while clocked in to it; clock out first (rpst out --dept %q)", name, name)
	}

	n, err := m.ledger.RenameDepartment(name, model.DeletedName(name))
	if err != nil {
		return "", err
	}
	kept := set.Departments[:0]
	for _, d := range set.Departments {
		if d != name {
			kept = append(kept, d)
		}
	}
	set.Departments = kept
	if err := m.registry.Save(set); err != nil {
		return "", err
	}
	m.log.Info("department deleted", map[string]any{"department": name, "records": n})
	return name, nil
}

// Select makes name the current department and returns its normalized name.
func (m *Manager) Select(name string) (string, error) {
	name = NormalizeName(name)
	set, err := m.load()
	if err != nil {
		return "", err
	}
	if !set.Contains(name) {
		return "", errclass.ErrValidation.WithMessagef("department %q does not exist", name)
	}
	if set.CurrentDepartment == name {
		return name, nil
	}
	set.CurrentDepartment = name
	if err := m.registry.Save(set); err != nil {
		return "", err
	}
	return name, nil
}

// load reads the set for a mutation. A document that failed to parse is
// replaced by the defaults on the next save; an unreadable one aborts.
func (m *Manager) load() (model.DepartmentSet, error) {
	set, err := m.registry.Load()
	if err == nil {
		return set, nil
	}
	if errors.Is(err, errclass.ErrParse) {
		m.log.WarnErr("department document unreadable, starting from defaults", err, map[string]any{
			"path": m.registry.Path(),
		})
		return set, nil
	}
	return set, err
}

// Package departments persists the department list and applies the
// add, rename, delete and select operations to it.
package departments

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"github.com/Tiliavir/rp-shift-tracker/internal/errclass"
	"github.com/Tiliavir/rp-shift-tracker/internal/fsutil"
	"github.com/Tiliavir/rp-shift-tracker/internal/logging"
	"github.com/Tiliavir/rp-shift-tracker/internal/model"
)

// Registry reads and writes the department document. It is not safe for
// concurrent use.
type Registry struct {
	path string
	log  *logging.Logger
}

// NewRegistry returns a Registry backed by the JSON document at path. A nil
// logger discards output.
func NewRegistry(path string, log *logging.Logger) *Registry {
	if log == nil {
		log = logging.Nop()
	}
	return &Registry{path: path, log: log}
}

// Path returns the backing file path.
func (r *Registry) Path() string {
	return r.path
}

// Load returns the persisted department set. A missing document yields the
// defaults without error. An unreadable or unparsable document also yields
// the defaults, together with an errclass.ErrIO or errclass.ErrParse error.
// A parsed document is repaired so it always has at least one department
// and a current department that is a member.
func (r *Registry) Load() (model.DepartmentSet, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.DefaultDepartmentSet(), nil
	}
	if err != nil {
		return model.DefaultDepartmentSet(), errclass.ErrIO.WithMessage("read department document").Wrap(err)
	}

	var set model.DepartmentSet
	if err := json.Unmarshal(bytes.TrimPrefix(data, []byte("\ufeff")), &set); err != nil {
		return model.DefaultDepartmentSet(), errclass.ErrParse.WithMessage(r.path).Wrap(err)
	}
	if len(set.Departments) == 0 {
		return model.DefaultDepartmentSet(), nil
	}

	before := set.Clone()
	set.Repair()
	if !equal(before, set) {
		r.log.Debug("repaired department document", map[string]any{
			"path":    r.path,
			"current": set.CurrentDepartment,
		})
	}
	return set, nil
}

// Save replaces the document with set. The set is repaired first so a saved
// document always loads back unchanged.
func (r *Registry) Save(set model.DepartmentSet) error {
	set = set.Clone()
	set.Repair()

	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return errclass.ErrIO.WithMessage("encode department document").Wrap(err)
	}
	if err := fsutil.AtomicWrite(r.path, append(data, '\n'), 0o600); err != nil {
		return errclass.ErrIO.WithMessage("write department document").Wrap(err)
	}
	return nil
}

func equal(a, b model.DepartmentSet) bool {
	if a.CurrentDepartment != b.CurrentDepartment || len(a.Departments) != len(b.Departments) {
		return false
	}
	for i := range a.Departments {
		if a.Departments[i] != b.Departments[i] {
			return false
		}
	}
	return true
}

package model

import "strings"

// DepartmentSet is the persisted department document.
type DepartmentSet struct {
	Departments       []string `json:"departments"`
	CurrentDepartment string   `json:"current_department"`
}

// DefaultDepartmentSet returns the fallback document.
func DefaultDepartmentSet() DepartmentSet {
	return DepartmentSet{
		Departments:       []string{DefaultDepartment},
		CurrentDepartment: DefaultDepartment,
	}
}

// Contains reports whether name is a registered department.
func (s DepartmentSet) Contains(name string) bool {
	for _, d := range s.Departments {
		if d == name {
			return true
		}
	}
	return false
}

// Repair drops blank and duplicate names, restores the Default entry when the
// list ends up empty and selects the first department when the current one
// is not a member.
func (s *DepartmentSet) Repair() {
	seen := make(map[string]bool, len(s.Departments))
	kept := make([]string, 0, len(s.Departments))
	for _, d := range s.Departments {
		if strings.TrimSpace(d) == "" || seen[d] {
			continue
		}
		seen[d] = true
		kept = append(kept, d)
	}
	if len(kept) == 0 {
		kept = []string{DefaultDepartment}
	}
	s.Departments = kept
	if !s.Contains(s.CurrentDepartment) {
		s.CurrentDepartment = s.Departments[0]
	}
}

// Clone returns a deep copy of s.
func (s DepartmentSet) Clone() DepartmentSet {
	out := DepartmentSet{CurrentDepartment: s.CurrentDepartment}
	out.Departments = append([]string(nil), s.Departments...)
	return out
}

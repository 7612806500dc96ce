package model

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the on-disk timestamp format of the event log. Times are
// naive local times with second precision.
const TimestampLayout = "2006-01-02T15:04:05"

const (
	// DefaultDepartment is used whenever a department is absent or blank.
	DefaultDepartment = "Default"
	// DeletedPrefix marks the records of a soft-deleted department.
	DeletedPrefix = "[DELETED]:"
)

// Action is a clock action.
type Action string

const (
	ActionIn  Action = "IN"
	ActionOut Action = "OUT"
)

// ParseAction parses a trimmed, case-sensitive action token.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.TrimSpace(s)); a {
	case ActionIn, ActionOut:
		return a, nil
	default:
		return "", fmt.Errorf("unknown action %q", s)
	}
}

// ShiftEvent is one clock-in or clock-out record.
type ShiftEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	Action     Action    `json:"action"`
	Department string    `json:"department"`
}

// Shift is a derived interval between a clock-in and its clock-out (or the
// evaluation time for an open shift), clipped to a window.
type Shift struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationSeconds int64     `json:"duration_seconds"`
}

// NormalizeDepartment trims name and falls back to DefaultDepartment when blank.
func NormalizeDepartment(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultDepartment
	}
	return name
}

// IsDeleted reports whether name carries the soft-delete prefix.
func IsDeleted(name string) bool {
	return strings.HasPrefix(name, DeletedPrefix)
}

// DeletedName returns the soft-deleted form of name.
func DeletedName(name string) string {
	return DeletedPrefix + name
}

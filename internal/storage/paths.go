package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// File names inside the data directory. They match the layout of earlier
// releases so existing data is picked up unchanged.
const (
	LogFile         = "time_log.csv"
	DepartmentsFile = "departments_settings.json"
	OverlayFile     = "overlay_settings.json"
	ConfigFile      = "config.yaml"
)

// BaseDir returns the default data directory (~/RpShiftTracker).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, "RpShiftTracker"), nil
}

// Paths resolves the documents of one data directory.
type Paths struct {
	Dir string
}

// Log returns the event log path.
func (p Paths) Log() string { return filepath.Join(p.Dir, LogFile) }

// Departments returns the department document path.
func (p Paths) Departments() string { return filepath.Join(p.Dir, DepartmentsFile) }

// Overlay returns the overlay settings document path.
func (p Paths) Overlay() string { return filepath.Join(p.Dir, OverlayFile) }

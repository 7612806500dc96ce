// Package overlay persists the presentation settings of the status overlay.
package overlay

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

// Store reads and writes the overlay settings document.
type Store struct {
	path string
	log  *logging.Logger
}

// NewStore returns a Store for the document at path. A nil logger discards
// output.
func NewStore(path string, log *logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	return &Store{path: path, log: log}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted settings. Keys absent from the document keep
// their defaults. A missing document yields the defaults without error; an
// unreadable or unparsable one yields the defaults with an errclass error.
func (s *Store) Load() (model.OverlaySettings, error) {
	settings := model.DefaultOverlaySettings()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return settings, errclass.ErrIO.WithMessage("read overlay settings").Wrap(err)
	}
	if err := json.Unmarshal(bytes.TrimPrefix(data, []byte("\ufeff")), &settings); err != nil {
		return model.DefaultOverlaySettings(), errclass.ErrParse.WithMessage(s.path).Wrap(err)
	}

	if _, perr := model.ParsePosition(string(settings.Position)); perr != nil {
		s.log.Warn("unknown overlay position, using default", map[string]any{
			"path":     s.path,
			"position": string(settings.Position),
		})
	}
	normalize(&settings)
	return settings, nil
}

// Save replaces the document with settings after clamping the transparency
// and repairing an unknown position.
func (s *Store) Save(settings model.OverlaySettings) error {
	normalize(&settings)
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return errclass.ErrIO.WithMessage("encode overlay settings").Wrap(err)
	}
	if err := fsutil.AtomicWrite(s.path, append(data, '\n'), 0o600); err != nil {
		return errclass.ErrIO.WithMessage("write overlay settings").Wrap(err)
	}
	return nil
}

func normalize(settings *model.OverlaySettings) {
	if _, err := model.ParsePosition(string(settings.Position)); err != nil {
		settings.Position = model.PositionTopRight
	}
	settings.Transparency = settings.Transparency.Clamp()
}

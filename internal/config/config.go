package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/rp-shift-tracker/internal/errclass"
	"github.com/Tiliavir/rp-shift-tracker/internal/logging"
	"github.com/Tiliavir/rp-shift-tracker/internal/storage"
	"github.com/Tiliavir/rp-shift-tracker/internal/timecalc"
)

// Config is the root configuration for rpst, stored in
// ~/RpShiftTracker/config.yaml.
type Config struct {
	// DataDir holds the event log and the settings documents.
	DataDir string `yaml:"data_dir"`
	// WeekStart is the first day of a week window: monday or sunday.
	WeekStart string `yaml:"week_start"`
	// RefreshInterval is the polling period of `status --watch`.
	RefreshIntervalRaw string        `yaml:"refresh_interval"`
	RefreshInterval    time.Duration `yaml:"-"`

	Logging LoggingConfig `yaml:"logging"`

	// WeekStartDay is WeekStart parsed.
	WeekStartDay time.Weekday `yaml:"-"`
}

// LoggingConfig configures the stderr logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, text
}

const (
	DefaultWeekStart       = "monday"
	DefaultRefreshInterval = time.Second
	DefaultLogLevel        = "warn"
	DefaultLogFormat       = "text"

	minRefreshInterval = 100 * time.Millisecond
)

// Default returns the built-in configuration. DataDir is left empty and
// resolved to storage.BaseDir during validation.
func Default() Config {
	return Config{
		WeekStart:          DefaultWeekStart,
		RefreshIntervalRaw: DefaultRefreshInterval.String(),
		RefreshInterval:    DefaultRefreshInterval,
		WeekStartDay:       time.Monday,
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// configTemplate is the annotated config written on first run.
const configTemplate = `# rpst configuration
#
# All settings are optional; the values below are the built-in defaults.

# Directory holding time_log.csv, departments_settings.json and
# overlay_settings.json. Defaults to ~/RpShiftTracker.
# Can be overridden per command with: rpst --data-dir <dir>
# data_dir: ~/RpShiftTracker

# First day of a week for status, shifts and export: monday or sunday.
week_start: monday

# How often "rpst status --watch" recomputes the running shift.
refresh_interval: 1s

logging:
  # debug, info, warn or error. Can be overridden with: rpst --log-level <level>
  level: warn
  # text or json
  format: text
`

// DefaultPath returns ~/RpShiftTracker/config.yaml.
func DefaultPath() (string, error) {
	base, err := storage.BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, storage.ConfigFile), nil
}

// Load reads the config at path, or at DefaultPath when path is empty. On
// first run the annotated template is written so users can discover the
// options. Fields missing from the file keep their defaults.
//
// An invalid value is replaced by its default and reported in the returned
// error while the other fields are kept. A file that cannot be read or parsed
// yields the defaults with an ErrIO or ErrParse error; data_dir is unknown in
// that case.
func Load(path string) (Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return fallback(), errclass.ErrIO.WithMessage("locate config file").Wrap(err)
		}
		path = p
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if writeErr := writeDefault(path); writeErr != nil {
			logging.WarnErr("could not create config file", writeErr, map[string]any{"path": path})
		}
		return cfg, cfg.validateAndNormalize()
	}
	if err != nil {
		return fallback(), errclass.ErrIO.WithMessagef("read config file %s", path).Wrap(err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fallback(), errclass.ErrParse.WithMessagef("config file %s (delete it to regenerate the defaults)", path).Wrap(err)
	}
	if err := cfg.validateAndNormalize(); err != nil {
		return cfg, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// fallback returns the normalized defaults for callers that continue after
// a config error.
func fallback() Config {
	cfg := Default()
	_ = cfg.validateAndNormalize()
	return cfg
}

// validateAndNormalize fills empty fields and resets invalid ones to their
// defaults. The error lists every reset field. A data_dir that cannot be
// resolved is returned as ErrIO.
func (c *Config) validateAndNormalize() error {
	var errs []error

	day, err := timecalc.ParseWeekday(c.WeekStart)
	if err != nil {
		errs = append(errs, fmt.Errorf("week_start: %w (using %s)", err, DefaultWeekStart))
		day = time.Monday
	}
	c.WeekStartDay = day
	c.WeekStart = strings.ToLower(day.String())

	if c.RefreshIntervalRaw == "" {
		c.RefreshIntervalRaw = DefaultRefreshInterval.String()
	}
	interval, err := time.ParseDuration(c.RefreshIntervalRaw)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("refresh_interval: %w (using %s)", err, DefaultRefreshInterval))
		interval = DefaultRefreshInterval
	case interval < minRefreshInterval:
		errs = append(errs, fmt.Errorf("refresh_interval must be at least %s, got %s (using %s)",
			minRefreshInterval, interval, DefaultRefreshInterval))
		interval = DefaultRefreshInterval
	}
	c.RefreshInterval = interval
	c.RefreshIntervalRaw = interval.String()

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w (using %s)", err, DefaultLogLevel))
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if _, err := logging.ParseFormat(c.Logging.Format); err != nil {
		errs = append(errs, fmt.Errorf("logging.format: %w (using %s)", err, DefaultLogFormat))
		c.Logging.Format = DefaultLogFormat
	}

	dir, err := ExpandHome(c.DataDir)
	if err == nil && dir == "" {
		dir, err = storage.BaseDir()
	}
	if err != nil {
		return errclass.ErrIO.WithMessage("config: data_dir").Wrap(err)
	}
	c.DataDir = dir

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

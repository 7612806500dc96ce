package storage

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/Tiliavir/rp-shift-tracker/internal/errclass"
	"github.com/Tiliavir/rp-shift-tracker/internal/fsutil"
	"github.com/Tiliavir/rp-shift-tracker/internal/logging"
	"github.com/Tiliavir/rp-shift-tracker/internal/model"
)

// Header is the first line of the event log.
const Header = "timestamp,action,department"

const utf8BOM = "\ufeff"

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

type localClock struct{}

func (localClock) Now() time.Time {
	return time.Now()
}

// Ledger is the append-only CSV event log.
//
// Read operations always return usable results: records that cannot be parsed
// are skipped and a missing or unreadable file yields no events. The returned
// error describes what was skipped (errclass.ErrParse) or could not be
// accessed (errclass.ErrIO); callers may log it and carry on.
//
// A Ledger is not safe for concurrent use and assumes a single writer process.
type Ledger struct {
	path  string
	clock Clock
	log   *logging.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the clock used to timestamp appended events.
func WithClock(c Clock) Option {
	return func(l *Ledger) { l.clock = c }
}

// WithLogger sets the logger for degraded operations.
func WithLogger(log *logging.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// NewLedger returns a Ledger backed by the CSV file at path.
func NewLedger(path string, opts ...Option) *Ledger {
	l := &Ledger{path: path, clock: localClock{}, log: logging.Nop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the backing file path.
func (l *Ledger) Path() string {
	return l.path
}

// Ensure creates a header-only log when the file is missing or empty and
// upgrades a legacy two-column log in place. A failed upgrade leaves the file
// untouched.
func (l *Ledger) Ensure() error {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && len(bytes.TrimSpace(data)) == 0) {
		if werr := fsutil.AtomicWrite(l.path, []byte(Header+"\n"), 0o600); werr != nil {
			return errclass.ErrIO.WithMessage("create event log").Wrap(werr)
		}
		return nil
	}
	if err != nil {
		return errclass.ErrIO.WithMessage("read event log").Wrap(err)
	}
	if !isLegacy(data) {
		return nil
	}
	return l.migrate(data)
}

// isLegacy reports whether the first line is not a three-column header.
func isLegacy(data []byte) bool {
	first, _, _ := strings.Cut(string(data), "\n")
	fields, err := splitRecord(strings.TrimPrefix(strings.TrimRight(first, "\r"), utf8BOM))
	if err != nil || len(fields) < 3 {
		return true
	}
	for _, f := range fields {
		if strings.TrimSpace(f) == "department" {
			return false
		}
	}
	return true
}

// migrate rewrites a legacy log with the three-column header, tagging
// department-less records with the Default department.
func (l *Ledger) migrate(data []byte) error {
	lines := splitLines(data)
	out := []string{Header}
	dropped := 0
	for i, line := range lines {
		line = strings.TrimRight(strings.TrimPrefix(line, utf8BOM), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields, err := splitRecord(line)
		if i == 0 && (err != nil || !looksLikeRecord(fields)) {
			// old header
			continue
		}
		if err != nil || len(fields) < 2 {
			dropped++
			continue
		}
		dept := model.DefaultDepartment
		if len(fields) >= 3 {
			dept = model.NormalizeDepartment(fields[2])
		}
		out = append(out, encodeRecord([]string{fields[0], fields[1], dept}))
	}

	if err := fsutil.AtomicWrite(l.path, []byte(strings.Join(out, "\n")+"\n"), 0o600); err != nil {
		return errclass.ErrIO.WithMessage("migrate legacy event log").Wrap(err)
	}
	l.log.Info("migrated legacy event log", map[string]any{
		"path":    l.path,
		"records": len(out) - 1,
		"dropped": dropped,
	})
	return nil
}

// looksLikeRecord reports whether fields start with a valid timestamp.
func looksLikeRecord(fields []string) bool {
	if len(fields) < 2 {
		return false
	}
	_, err := parseTimestamp(fields[0])
	return err == nil
}

// Load returns the events of department sorted by timestamp. A blank
// department means the Default department, not "all departments"; use
// LoadAll for an unfiltered read.
func (l *Ledger) Load(department string) ([]model.ShiftEvent, error) {
	target := model.NormalizeDepartment(department)
	events, err := l.read()
	filtered := events[:0]
	for _, ev := range events {
		if ev.Department == target {
			filtered = append(filtered, ev)
		}
	}
	sortEvents(filtered)
	return filtered, err
}

// LoadAll returns every event, soft-deleted departments included, sorted by
// timestamp.
func (l *Ledger) LoadAll() ([]model.ShiftEvent, error) {
	events, err := l.read()
	sortEvents(events)
	return events, err
}

func sortEvents(events []model.ShiftEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
}

// read parses the log in file order. The result is never nil.
func (l *Ledger) read() ([]model.ShiftEvent, error) {
	var errs []error
	if err := l.Ensure(); err != nil {
		l.log.WarnErr("event log not prepared", err, map[string]any{"path": l.path})
		errs = append(errs, err)
	}

	events := []model.ShiftEvent{}
	f, err := os.Open(l.path)
	if err != nil {
		errs = append(errs, errclass.ErrIO.WithMessage("open event log").Wrap(err))
		return events, errors.Join(errs...)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo == 1 {
			continue
		}
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		ev, perr := parseRecord(line)
		if perr != nil {
			errs = append(errs, errclass.ErrParse.WithMessagef("%s line %d: %v", l.path, lineNo, perr))
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, errclass.ErrIO.WithMessage("scan event log").Wrap(err))
	}
	return events, errors.Join(errs...)
}

// Append writes one event stamped with the current time. department is
// normalized; the write is flushed before returning.
func (l *Ledger) Append(action model.Action, department string) error {
	if _, err := model.ParseAction(string(action)); err != nil {
		return errclass.ErrValidation.WithMessage(err.Error())
	}
	if err := l.Ensure(); err != nil {
		l.log.WarnErr("event log not prepared", err, map[string]any{"path": l.path})
	}

	rec := encodeRecord([]string{
		l.clock.Now().Format(model.TimestampLayout),
		string(action),
		model.NormalizeDepartment(department),
	})

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o600)
	if err != nil {
		return errclass.ErrIO.WithMessage("open event log").Wrap(err)
	}
	defer f.Close()

	if needsNewline(f) {
		rec = "\n" + rec
	}
	if _, err := f.WriteString(rec + "\n"); err != nil {
		return errclass.ErrIO.WithMessage("append event").Wrap(err)
	}
	if err := f.Sync(); err != nil {
		return errclass.ErrIO.WithMessage("sync event log").Wrap(err)
	}
	return nil
}

// needsNewline reports whether a hand-edited file lacks its final newline.
func needsNewline(f *os.File) bool {
	info, err := f.Stat()
	if err != nil || info.Size() == 0 {
		return false
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return false
	}
	return last[0] != '\n'
}

// RenameDepartment retags every record of oldName with newName and returns the
// number of records changed. Renaming the default department also retags
// records without a department. The header and every other line are kept as
// they are. The file is replaced atomically.
func (l *Ledger) RenameDepartment(oldName, newName string) (int, error) {
	if strings.TrimSpace(newName) == "" {
		return 0, errclass.ErrValidation.WithMessage("new department name must not be empty")
	}
	if oldName == newName {
		return 0, nil
	}
	if err := l.Ensure(); err != nil {
		return 0, err
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		return 0, errclass.ErrIO.WithMessage("read event log").Wrap(err)
	}

	lines := splitLines(data)
	changed := 0
	for i := 1; i < len(lines); i++ {
		raw := lines[i]
		cr := strings.HasSuffix(raw, "\r")
		line := strings.TrimSuffix(raw, "\r")
		fields, err := splitRecord(line)
		if err != nil || !recordBelongsTo(line, fields, oldName) {
			continue
		}
		if len(fields) < 3 {
			fields = append(fields, newName)
		}
		fields[2] = newName
		lines[i] = encodeRecord(fields)
		if cr {
			lines[i] += "\r"
		}
		changed++
	}
	if changed == 0 {
		return 0, nil
	}

	if err := fsutil.AtomicWrite(l.path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		return 0, errclass.ErrIO.WithMessage("rewrite event log").Wrap(err)
	}
	l.log.Info("renamed department in event log", map[string]any{
		"from":    oldName,
		"to":      newName,
		"records": changed,
	})
	return changed, nil
}

// recordBelongsTo reports whether a record line is tagged with department.
// Rows with a blank or missing department load as the default department,
// so they belong to it as long as they parse.
func recordBelongsTo(line string, fields []string, department string) bool {
	if len(fields) >= 3 && strings.TrimSpace(fields[2]) == department {
		return true
	}
	if department != model.DefaultDepartment || len(fields) < 2 {
		return false
	}
	ev, err := parseRecord(line)
	return err == nil && ev.Department == model.DefaultDepartment
}

// IsClockedIn reports whether the latest event of department is a clock-in.
func (l *Ledger) IsClockedIn(department string) (bool, error) {
	events, err := l.Load(department)
	if len(events) == 0 {
		return false, err
	}
	return events[len(events)-1].Action == model.ActionIn, err
}

// ClockedInDepartment returns the first department, in order of first
// appearance in the log, whose latest event is a clock-in. Soft-deleted
// departments are not considered.
func (l *Ledger) ClockedInDepartment() (string, bool, error) {
	events, err := l.read()

	var order []string
	groups := make(map[string][]model.ShiftEvent)
	for _, ev := range events {
		if _, seen := groups[ev.Department]; !seen {
			order = append(order, ev.Department)
		}
		groups[ev.Department] = append(groups[ev.Department], ev)
	}

	for _, dept := range order {
		if model.IsDeleted(dept) {
			continue
		}
		group := groups[dept]
		sortEvents(group)
		if group[len(group)-1].Action == model.ActionIn {
			return dept, true, err
		}
	}
	return "", false, err
}

func parseRecord(line string) (model.ShiftEvent, error) {
	fields, err := splitRecord(line)
	if err != nil {
		return model.ShiftEvent{}, err
	}
	if len(fields) < 2 {
		return model.ShiftEvent{}, fmt.Errorf("expected at least 2 fields, got %d", len(fields))
	}
	ts, err := parseTimestamp(fields[0])
	if err != nil {
		return model.ShiftEvent{}, err
	}
	action, err := model.ParseAction(fields[1])
	if err != nil {
		return model.ShiftEvent{}, err
	}
	dept := model.DefaultDepartment
	if len(fields) >= 3 {
		dept = model.NormalizeDepartment(fields[2])
	}
	return model.ShiftEvent{Timestamp: ts, Action: action, Department: dept}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	ts, err := time.ParseInLocation(model.TimestampLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}
	return ts, nil
}

// splitRecord parses a single CSV line. Quoted fields are honoured so a
// department containing a comma survives a round trip.
func splitRecord(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	fields, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	return fields, err
}

func encodeRecord(fields []string) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(fields)
	w.Flush()
	return strings.TrimSuffix(buf.String(), "\n")
}

// splitLines splits data on newlines, dropping the empty tail after a final
// newline.
func splitLines(data []byte) []string {
	s := string(data)
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// Package notify delivers status, progress and warning messages from the
// action layer to whatever presents them.
package notify

import (
	"log/slog"
	"sync"
)

// Progress is a structured progress event of a long running import.
type Progress struct {
	RowsImported   int  `json:"rows_imported"`
	AbortAvailable bool `json:"abort_available"`
}

// Notifier receives fire-and-forget notifications.
type Notifier interface {
	// Status shows a one line status text.
	Status(text string)
	// Progress reports import progress.
	Progress(p Progress)
	// Warning shows a warning with a long and a short form.
	Warning(msg, short string)
	// SafeMode reports entering (true) or leaving (false) safe mode.
	SafeMode(enabled bool)
}

// Discard is a Notifier that drops everything.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Status(string)          {}
func (discard) Progress(Progress)      {}
func (discard) Warning(string, string) {}
func (discard) SafeMode(bool)          {}

// Logger is a Notifier writing every message to a structured logger.
type Logger struct {
	log *slog.Logger
}

// NewLogger creates a Notifier backed by l. A nil l discards output.
func NewLogger(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	return &Logger{log: l}
}

func (n *Logger) Status(text string) {
	n.log.Info(text)
}

func (n *Logger) Progress(p Progress) {
	n.log.Info("import progress", "rows_imported", p.RowsImported, "abort_available", p.AbortAvailable)
}

func (n *Logger) Warning(msg, short string) {
	n.log.Warn(short, "detail", msg)
}

func (n *Logger) SafeMode(enabled bool) {
	n.log.Info("safe mode changed", "enabled", enabled)
}

// Recorder keeps every notification in memory. It is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	statuses []string
	progress []Progress
	warnings []string
	safeMode []bool
}

func (r *Recorder) Status(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, text)
}

func (r *Recorder) Progress(p Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, p)
}

func (r *Recorder) Warning(msg, short string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, msg)
}

func (r *Recorder) SafeMode(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.safeMode = append(r.safeMode, enabled)
}

// Statuses returns the recorded status texts in order.
func (r *Recorder) Statuses() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.statuses...)
}

// LastStatus returns the most recent status text.
func (r *Recorder) LastStatus() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.statuses) == 0 {
		return ""
	}
	return r.statuses[len(r.statuses)-1]
}

// ProgressEvents returns the recorded progress events in order.
func (r *Recorder) ProgressEvents() []Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Progress(nil), r.progress...)
}

// Warnings returns the long form of every recorded warning.
func (r *Recorder) Warnings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.warnings...)
}

// SafeModeChanges returns the recorded safe mode transitions.
func (r *Recorder) SafeModeChanges() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.safeMode...)
}

// Multi fans every notification out to all ns.
func Multi(ns ...Notifier) Notifier {
	return multi(ns)
}

type multi []Notifier

func (m multi) Status(text string) {
	for _, n := range m {
		n.Status(text)
	}
}

func (m multi) Progress(p Progress) {
	for _, n := range m {
		n.Progress(p)
	}
}

func (m multi) Warning(msg, short string) {
	for _, n := range m {
		n.Warning(msg, short)
	}
}

func (m multi) SafeMode(enabled bool) {
	for _, n := range m {
		n.SafeMode(enabled)
	}
}

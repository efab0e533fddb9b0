// Package trust gates loaded files behind a detached signature and keeps
// the per-document safe mode flag.
package trust

import (
	"log/slog"
	"os"
	"sync"

	"github.com/ukaji3/sheetact-go/pkg/sheetact/notify"
)

// DefaultSuffix is appended to a data file path to locate its signature.
const DefaultSuffix = ".sig"

const (
	trustedText  = "Valid signature found. File is trusted."
	untrustText  = "File is not properly signed. Safe mode activated. Approve the file to leave safe mode."
	overrideText = "File approved. Safe mode deactivated."
	noSignMsg    = "Cannot sign the file. Maybe no signing key is configured or the file is in safe mode."
	noSignShort  = "Cannot sign file!"
)

// Backend verifies and produces detached signatures.
type Backend interface {
	// Verify reports whether the signature stored at signaturePath is valid
	// for the content of dataPath.
	Verify(signaturePath, dataPath string) (bool, error)
	// Sign returns a signature over the content of dataPath.
	Sign(dataPath string) ([]byte, error)
	// Present reports whether the backend is able to sign.
	Present() bool
}

// State is the trust state of one open document. A new State starts in
// safe mode.
type State struct {
	mu       sync.RWMutex
	path     string
	safeMode bool
}

// NewState creates the trust state of the document at path.
func NewState(path string) *State {
	return &State{path: path, safeMode: true}
}

// SafeMode reports whether trust dependent behaviour is restricted.
func (s *State) SafeMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.safeMode
}

// Path returns the document path the signature sidecar is derived from.
func (s *State) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

func (s *State) set(path string, safeMode bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.path = path
	s.safeMode = safeMode
}

// Options configures a Workflow.
type Options struct {
	// Suffix locates the signature sidecar. Empty uses DefaultSuffix.
	Suffix   string
	Notifier notify.Notifier
	Logger   *slog.Logger
}

// Workflow validates, approves and signs document files.
type Workflow struct {
	backend  Backend
	state    *State
	suffix   string
	notifier notify.Notifier
	log      *slog.Logger
}

// New creates a Workflow mutating state. backend may be nil, in which case
// every signature is invalid and signing is unavailable.
func New(backend Backend, state *State, opts Options) *Workflow {
	w := &Workflow{
		backend:  backend,
		state:    state,
		suffix:   opts.Suffix,
		notifier: opts.Notifier,
		log:      opts.Logger,
	}
	if w.suffix == "" {
		w.suffix = DefaultSuffix
	}
	if w.notifier == nil {
		w.notifier = notify.Discard
	}
	if w.log == nil {
		w.log = slog.New(slog.DiscardHandler)
	}
	return w
}

// State returns the trust state the workflow mutates.
func (w *Workflow) State() *State {
	return w.state
}

// SignaturePath returns the sidecar path for path.
func (w *Workflow) SignaturePath(path string) string {
	return path + w.suffix
}

// ValidateSignature reports whether a valid signature exists for path.
// A missing or unreadable sidecar is invalid.
func (w *Workflow) ValidateSignature(path string) bool {
	sigPath := w.SignaturePath(path)

	f, err := os.Open(sigPath)
	if err != nil {
		w.log.Debug("signature file unavailable", "path", sigPath, "error", err)
		return false
	}
	f.Close()

	if w.backend == nil {
		return false
	}
	ok, err := w.backend.Verify(sigPath, path)
	if err != nil {
		w.log.Warn("signature verification failed", "path", path, "error", err)
		return false
	}
	return ok
}

// Approve leaves safe mode if path carries a valid signature and enters it
// otherwise. It reports whether the file is trusted.
func (w *Workflow) Approve(path string) bool {
	if w.ValidateSignature(path) {
		w.state.set(path, false)
		w.notifier.SafeMode(false)
		w.notifier.Status(trustedText)
		return true
	}

	w.state.set(path, true)
	w.notifier.SafeMode(true)
	w.notifier.Status(untrustText)
	return false
}

// Override leaves safe mode for path without a signature, on explicit
// request of the user.
func (w *Workflow) Override(path string) {
	w.state.set(path, false)
	w.notifier.SafeMode(false)
	w.notifier.Status(overrideText)
	w.log.Info("safe mode overridden", "path", path)
}

// SignFile writes a signature for path to its sidecar. It only signs when
// a backend is present and safe mode is off; otherwise, and on any
// failure, it emits a warning and reports false.
func (w *Workflow) SignFile(path string) bool {
	if w.backend == nil || !w.backend.Present() || w.state.SafeMode() {
		w.notifier.Warning(noSignMsg, noSignShort)
		return false
	}

	signature, err := w.backend.Sign(path)
	if err != nil {
		w.log.Warn("signing failed", "path", path, "error", err)
		w.notifier.Warning("Cannot sign the file: "+err.Error(), noSignShort)
		return false
	}

	sigPath := w.SignaturePath(path)
	if err := os.WriteFile(sigPath, signature, 0644); err != nil {
		w.log.Warn("writing signature failed", "path", sigPath, "error", err)
		w.notifier.Warning("Cannot write signature file "+sigPath+".", noSignShort)
		return false
	}
	w.log.Debug("file signed", "path", path, "signature", sigPath)
	return true
}

// Package history provides a bounded undo/redo manager for grid mutations.
package history

import (
	"errors"
	"sync"
)

// ErrNothingToUndo indicates the undo stack is empty.
var ErrNothingToUndo = errors.New("nothing to undo")

// ErrNothingToRedo indicates the redo stack is empty.
var ErrNothingToRedo = errors.New("nothing to redo")

// DefaultLimit is the default number of undo steps retained.
const DefaultLimit = 100

// change is one reversible mutation.
type change struct {
	undo func()
	redo func()
}

// step is a group of changes that are undone and redone together.
type step struct {
	label   string
	changes []change
}

// Manager records reversible changes and replays them on Undo and Redo.
//
// Changes recorded outside a Begin/End pair form a step of their own.
// Changes recorded while a step is being replayed are ignored, so the
// mutation functions that record changes can be reused for replay.
type Manager struct {
	mu        sync.Mutex
	limit     int
	undo      []step
	redo      []step
	open      *step
	depth     int
	replaying bool
}

// New creates a Manager retaining at most limit steps.
// A limit <= 0 uses DefaultLimit.
func New(limit int) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Manager{limit: limit}
}

// Begin opens a group. Nested groups merge into the outermost one.
func (m *Manager) Begin(label string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.depth++
	if m.open == nil {
		m.open = &step{label: label}
	}
}

// End closes the group opened by the matching Begin.
// Empty groups are discarded.
func (m *Manager) End() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.depth == 0 {
		return
	}
	m.depth--
	if m.depth > 0 {
		return
	}
	s := m.open
	m.open = nil
	if s != nil && len(s.changes) > 0 {
		m.push(*s)
	}
}

// Record registers a change. undo must revert what redo re-applies.
func (m *Manager) Record(label string, undo, redo func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.replaying {
		return
	}
	c := change{undo: undo, redo: redo}
	if m.open != nil {
		m.open.changes = append(m.open.changes, c)
		return
	}
	m.push(step{label: label, changes: []change{c}})
}

// push appends a completed step and invalidates the redo stack.
// Callers must hold m.mu.
func (m *Manager) push(s step) {
	m.undo = append(m.undo, s)
	if len(m.undo) > m.limit {
		m.undo = m.undo[len(m.undo)-m.limit:]
	}
	m.redo = nil
}

// Undo reverts the most recent step.
func (m *Manager) Undo() error {
	m.mu.Lock()
	if len(m.undo) == 0 {
		m.mu.Unlock()
		return ErrNothingToUndo
	}
	s := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.replaying = true
	m.mu.Unlock()

	for i := len(s.changes) - 1; i >= 0; i-- {
		s.changes[i].undo()
	}

	m.mu.Lock()
	m.replaying = false
	m.redo = append(m.redo, s)
	m.mu.Unlock()
	return nil
}

// Redo re-applies the most recently undone step.
func (m *Manager) Redo() error {
	m.mu.Lock()
	if len(m.redo) == 0 {
		m.mu.Unlock()
		return ErrNothingToRedo
	}
	s := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	m.replaying = true
	m.mu.Unlock()

	for _, c := range s.changes {
		c.redo()
	}

	m.mu.Lock()
	m.replaying = false
	m.undo = append(m.undo, s)
	m.mu.Unlock()
	return nil
}

// CanUndo reports whether Undo would succeed.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo) > 0
}

// CanRedo reports whether Redo would succeed.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo) > 0
}

// UndoLabel returns the label of the step Undo would revert.
func (m *Manager) UndoLabel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.undo) == 0 {
		return ""
	}
	return m.undo[len(m.undo)-1].label
}

// Clear drops all recorded steps.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo = nil
	m.redo = nil
	m.open = nil
	m.depth = 0
}

package sheetact

// History is the undo manager the action layer delegates to.
type History interface {
	Undo() error
	Redo() error
}

// UnRedo forwards undo and redo requests to a History. Each call maps to
// exactly one History call.
type UnRedo struct {
	history History
}

// NewUnRedo creates an UnRedo delegating to h.
func NewUnRedo(h History) *UnRedo {
	return &UnRedo{history: h}
}

// Undo reverts the last recorded step.
func (u *UnRedo) Undo() error {
	return u.history.Undo()
}

// Redo re-applies the last undone step.
func (u *UnRedo) Redo() error {
	return u.history.Redo()
}

package sheetact

import (
	"fmt"

	"github.com/ukaji3/sheetact-go/pkg/sheetact/codec"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/grid"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/history"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/paste"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/selection"
)

var (
	// ErrNotSupported indicates an action that is declared but not implemented.
	ErrNotSupported = grid.ErrNotSupported
	// ErrInvalidArgument indicates a malformed shape, count or index.
	ErrInvalidArgument = grid.ErrInvalidArgument
	// ErrOutOfBounds indicates a key outside the grid.
	ErrOutOfBounds = grid.ErrOutOfBounds
	// ErrInvalidRange indicates a range that cannot be expanded.
	ErrInvalidRange = selection.ErrInvalidRange
	// ErrBusy indicates a paste job is already running.
	ErrBusy = paste.ErrBusy
	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = history.ErrNothingToUndo
	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = history.ErrNothingToRedo
	// ErrFileNotFound indicates the input file does not exist.
	ErrFileNotFound = codec.ErrFileNotFound
	// ErrInvalidFormat indicates the input file is not a valid xlsx format.
	ErrInvalidFormat = codec.ErrInvalidFormat
	// ErrCellTooLong indicates a cell that cannot be saved without truncation.
	ErrCellTooLong = codec.ErrCellTooLong
)

// ActionError represents a failed action.
type ActionError struct {
	Action string // "open", "save", "paste", "insert_rows", ...
	Target string // file path or coordinate, may be empty
	Err    error
}

func (e *ActionError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("action %s: %v", e.Action, e.Err)
	}
	return fmt.Sprintf("action %s %q: %v", e.Action, e.Target, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// NewActionError creates a new ActionError.
func NewActionError(action, target string, err error) *ActionError {
	return &ActionError{
		Action: action,
		Target: target,
		Err:    err,
	}
}

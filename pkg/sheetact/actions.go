package sheetact

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/ukaji3/sheetact-go/pkg/sheetact/codec"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/grid"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/history"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/models"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/notify"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/paste"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/selection"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/trust"
)

// Actions executes user commands against one document: its grid, its
// undo history, its selection and its trust state.
//
// Actions is meant for a single caller. The only exception is CancelPaste,
// which may be called from any goroutine while Paste runs.
type Actions struct {
	path    string
	shape   models.Shape
	grid    *grid.Grid
	history *history.Manager

	selector *selection.Selector
	pipeline *paste.Pipeline
	trust    *trust.Workflow
	unredo   *UnRedo

	notifier notify.Notifier
	log      *slog.Logger
}

// New creates the action layer for an empty, untitled document.
func New(opts Options) (*Actions, error) {
	shape := opts.shape()
	g, err := grid.New(shape)
	if err != nil {
		return nil, NewActionError("new", "", err)
	}
	h := history.New(opts.HistoryLimit)
	g.SetHistory(h)

	a := &Actions{
		shape:    shape,
		grid:     g,
		history:  h,
		selector: selection.NewSelector(g),
		unredo:   NewUnRedo(h),
		notifier: opts.notifier(),
		log:      opts.logger(),
	}
	a.pipeline = paste.New(g, paste.Options{
		Checkpoint: opts.Checkpoint,
		Notifier:   a.notifier,
		History:    h,
		Logger:     a.log,
	})
	a.trust = trust.New(opts.Backend, trust.NewState(""), trust.Options{
		Suffix:   opts.SignatureSuffix,
		Notifier: a.notifier,
		Logger:   a.log,
	})
	return a, nil
}

// Path returns the file the document was last opened from or saved to.
func (a *Actions) Path() string {
	return a.path
}

// Grid returns the document grid.
func (a *Actions) Grid() *grid.Grid {
	return a.grid
}

// History returns the undo manager of the document.
func (a *Actions) History() *history.Manager {
	return a.history
}

// SafeMode reports whether the document is restricted for lack of a
// valid signature.
func (a *Actions) SafeMode() bool {
	return a.trust.State().SafeMode()
}

func (a *Actions) busy() bool {
	return a.pipeline.State() == paste.StateRunning
}

// Open loads the workbook at path, decides its trust state and installs
// its content as the document grid. On failure the current grid is kept.
func (a *Actions) Open(path string) error {
	if a.busy() {
		return NewActionError("open", path, ErrBusy)
	}

	book, err := codec.Load(path, a.shape)
	if err != nil {
		a.notifier.Status("Error opening file " + path + ".")
		a.log.Error("open failed", "path", path, "error", err)
		return NewActionError("open", path, err)
	}
	return a.install(path, book)
}

// install approves path and makes book the document content. The book is
// checked first so that a rejected book leaves grid and trust state as
// they were.
func (a *Actions) install(path string, book *codec.Book) error {
	if err := grid.Validate(book.Shape, book.Cells); err != nil {
		a.notifier.Status("Error opening file " + path + ".")
		a.log.Error("open failed", "path", path, "error", err)
		return NewActionError("open", path, err)
	}

	a.trust.Approve(path)

	if err := a.grid.Reset(book.Shape, book.Cells); err != nil {
		a.notifier.Status("Error opening file " + path + ".")
		return NewActionError("open", path, err)
	}
	a.history.Clear()
	a.selector.Clear()
	a.path = path
	a.log.Info("file opened", "path", path, "shape", book.Shape, "cells", len(book.Cells), "safe_mode", a.SafeMode())
	return nil
}

// Save writes the document to path, or to the current path when path is
// empty, and signs the written file. Signing failures are reported as
// warnings and do not fail the save.
func (a *Actions) Save(path string) error {
	if path == "" {
		path = a.path
	}
	if path == "" {
		return NewActionError("save", "", fmt.Errorf("%w: no file name", ErrInvalidArgument))
	}

	if err := codec.Save(path, a.grid.Shape(), a.grid.Cells()); err != nil {
		a.notifier.Status("Error saving file " + path + ".")
		a.log.Error("save failed", "path", path, "error", err)
		return NewActionError("save", path, err)
	}
	signed := a.trust.SignFile(path)
	a.path = path
	a.log.Info("file saved", "path", path, "signed", signed)
	return nil
}

// NewGrid replaces the document with an empty grid of the given shape.
// The trust state is left unchanged.
func (a *Actions) NewGrid(shape models.Shape) error {
	if a.busy() {
		return NewActionError("new", "", ErrBusy)
	}
	if err := a.grid.Reset(shape, nil); err != nil {
		return NewActionError("new", "", err)
	}
	a.history.Clear()
	a.selector.Clear()
	a.path = ""
	return nil
}

// SwitchTable makes table the current table.
func (a *Actions) SwitchTable(table int) error {
	if err := a.grid.SetCurrentTable(table); err != nil {
		return NewActionError("switch_table", strconv.Itoa(table), err)
	}
	return nil
}

// Paste imports rows at anchor. The whole import is one undo step.
func (a *Actions) Paste(ctx context.Context, anchor paste.Anchor, rows iter.Seq[[]string]) (paste.Result, error) {
	res, err := a.pipeline.Paste(ctx, anchor, rows)
	if err != nil {
		return res, NewActionError("paste", res.Anchor.String(), err)
	}
	return res, nil
}

// CancelPaste asks a running paste to abort at its next checkpoint.
func (a *Actions) CancelPaste() bool {
	return a.pipeline.Cancel()
}

// PasteState returns the state of the paste pipeline.
func (a *Actions) PasteState() paste.State {
	return a.pipeline.State()
}

// InsertRows inserts count empty rows before row, appending when row is
// past the last row.
func (a *Actions) InsertRows(row, count int) error {
	return a.insert("insert_rows", row, count, models.AxisRow)
}

// InsertCols inserts count empty columns before col.
func (a *Actions) InsertCols(col, count int) error {
	return a.insert("insert_cols", col, count, models.AxisCol)
}

// InsertTables inserts count empty tables before table.
func (a *Actions) InsertTables(table, count int) error {
	return a.insert("insert_tables", table, count, models.AxisTable)
}

func (a *Actions) insert(action string, index, count int, axis models.Axis) error {
	if a.busy() {
		return NewActionError(action, strconv.Itoa(index), ErrBusy)
	}
	if err := a.grid.Insert(index, count, axis); err != nil {
		return NewActionError(action, strconv.Itoa(index), err)
	}
	return nil
}

// DeleteRows is not supported.
func (a *Actions) DeleteRows(row, count int) error {
	return NewActionError("delete_rows", strconv.Itoa(row), a.grid.Delete(row, count, models.AxisRow))
}

// DeleteCols is not supported.
func (a *Actions) DeleteCols(col, count int) error {
	return NewActionError("delete_cols", strconv.Itoa(col), a.grid.Delete(col, count, models.AxisCol))
}

// DeleteTables is not supported.
func (a *Actions) DeleteTables(table, count int) error {
	return NewActionError("delete_tables", strconv.Itoa(table), a.grid.Delete(table, count, models.AxisTable))
}

// SetRowHeight is not supported.
func (a *Actions) SetRowHeight(row int, height float64) error {
	return NewActionError("set_row_height", strconv.Itoa(row), ErrNotSupported)
}

// SetColWidth is not supported.
func (a *Actions) SetColWidth(col int, width float64) error {
	return NewActionError("set_col_width", strconv.Itoa(col), ErrNotSupported)
}

// SetMacros is not supported.
func (a *Actions) SetMacros(macros string) error {
	return NewActionError("set_macros", "", ErrNotSupported)
}

// ChangeShape is not supported. Use NewGrid for a grid of another shape.
func (a *Actions) ChangeShape(shape models.Shape) error {
	return NewActionError("change_shape", "", ErrNotSupported)
}

// Undo reverts the last change.
func (a *Actions) Undo() error {
	if a.busy() {
		return NewActionError("undo", "", ErrBusy)
	}
	return a.unredo.Undo()
}

// Redo re-applies the last undone change.
func (a *Actions) Redo() error {
	if a.busy() {
		return NewActionError("redo", "", ErrBusy)
	}
	return a.unredo.Redo()
}

// Selection returns the current selection.
func (a *Actions) Selection() selection.Selection {
	return a.selector.Selection()
}

// SelectCell selects one cell of the current table.
func (a *Actions) SelectCell(row, col int, add bool) {
	a.selector.SelectCell(row, col, add)
}

// SelectRange selects rows x cols of the current table.
func (a *Actions) SelectRange(rows, cols selection.Range, add bool) error {
	if err := a.selector.SelectRange(rows, cols, add); err != nil {
		return NewActionError("select", rows.String()+","+cols.String(), err)
	}
	return nil
}

// SelectA1 selects an A1 style reference such as "A1:C5,E7".
func (a *Actions) SelectA1(ref string, add bool) error {
	sel, err := selection.ParseA1(ref)
	if err != nil {
		return NewActionError("select", ref, err)
	}
	a.selector.Set(sel, add)
	return nil
}

// SelectAll selects the whole current table.
func (a *Actions) SelectAll() {
	a.selector.SelectAll()
}

// ClearSelection drops the current selection.
func (a *Actions) ClearSelection() {
	a.selector.Clear()
}

// Copy returns the cell sources of sel in the current table as rows of
// its bounding box. Unselected cells inside the box are empty.
func (a *Actions) Copy(sel selection.Selection) [][]string {
	shape := a.grid.Shape()
	b, ok := sel.Bounds(shape.Rows, shape.Cols)
	if !ok {
		return nil
	}

	out := make([][]string, b.Bottom-b.Top+1)
	for i := range out {
		out[i] = make([]string, b.Right-b.Left+1)
	}
	table := a.grid.CurrentTable()
	for c := range sel.All(shape.Rows, shape.Cols) {
		out[c.Row-b.Top][c.Col-b.Left] = a.grid.Read(models.Key{Row: c.Row, Col: c.Col, Table: table})
	}
	return out
}

// Approve re-evaluates the signature of path, or of the document path
// when path is empty, and sets safe mode accordingly.
func (a *Actions) Approve(path string) bool {
	if path == "" {
		path = a.path
	}
	return a.trust.Approve(path)
}

// Override leaves safe mode without a signature.
func (a *Actions) Override() {
	a.trust.Override(a.path)
}

// Sign writes a signature for path, or for the document path when path
// is empty.
func (a *Actions) Sign(path string) bool {
	if path == "" {
		path = a.path
	}
	return a.trust.SignFile(path)
}

// Snapshot returns a serialisable view of the document.
func (a *Actions) Snapshot() models.GridData {
	name := ""
	if a.path != "" {
		name = filepath.Base(a.path)
	}
	return codec.Snapshot(name, a.grid.Shape(), a.SafeMode(), a.grid.Cells())
}

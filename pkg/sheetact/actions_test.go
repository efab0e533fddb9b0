package sheetact

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/sheetact-go/internal/testutil"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/codec"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/grid"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/models"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/notify"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/paste"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/selection"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/trust"
)

var testShape = models.Shape{Rows: 10, Cols: 5, Tables: 2}

func newActions(t *testing.T, backend trust.Backend) (*Actions, *notify.Recorder) {
	t.Helper()
	rec := &notify.Recorder{}
	a, err := New(Options{
		Shape:    testShape,
		Backend:  backend,
		Notifier: rec,
		Logger:   testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	return a, rec
}

func write(t *testing.T, a *Actions, row, col, table int, value string) {
	t.Helper()
	require.NoError(t, a.Grid().Write(models.Key{Row: row, Col: col, Table: table}, value))
}

func read(a *Actions, row, col, table int) string {
	return a.Grid().Read(models.Key{Row: row, Col: col, Table: table})
}

func TestNew(t *testing.T) {
	a, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, grid.DefaultShape, a.Grid().Shape())
	assert.True(t, a.SafeMode())
	assert.Empty(t, a.Path())

	_, err = New(Options{Shape: models.Shape{Rows: -1, Cols: 1, Tables: 1}})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPaste_UndoRedo(t *testing.T) {
	a, rec := newActions(t, nil)

	rows := paste.FromRows([][]string{{"1", "2"}, {"3", "4"}, {"5", "=A1+B1"}})
	res, err := a.Paste(context.Background(), paste.At(0, 0), rows.Rows())
	require.NoError(t, err)

	assert.Equal(t, paste.StateCompleted, res.State)
	assert.Equal(t, 6, res.CellsWritten)
	assert.Equal(t, "3 rows imported.", rec.LastStatus())
	assert.Equal(t, 6, a.Grid().Len())

	require.NoError(t, a.Undo())
	assert.Equal(t, 0, a.Grid().Len(), "one undo reverts the whole paste")

	require.NoError(t, a.Redo())
	assert.Equal(t, 6, a.Grid().Len())
	assert.Equal(t, "=A1+B1", read(a, 2, 1, 0))
}

func TestPaste_Errors(t *testing.T) {
	a, _ := newActions(t, nil)

	_, err := a.Paste(context.Background(), paste.AtTable(0, 0, 7), paste.FromRows(nil).Rows())
	var actionErr *ActionError
	require.ErrorAs(t, err, &actionErr)
	assert.Equal(t, "paste", actionErr.Action)
	assert.ErrorIs(t, err, paste.ErrInvalidAnchor)
}

func TestCancelPaste_Idle(t *testing.T) {
	a, _ := newActions(t, nil)
	assert.False(t, a.CancelPaste())
	assert.Equal(t, paste.StateIdle, a.PasteState())
}

func TestInsertRows_UndoRedo(t *testing.T) {
	a, _ := newActions(t, nil)
	write(t, a, 0, 0, 0, "a")
	write(t, a, 4, 0, 0, "b")

	require.NoError(t, a.InsertRows(3, 2))
	assert.Equal(t, 12, a.Grid().Shape().Rows)
	assert.Equal(t, "a", read(a, 0, 0, 0))
	assert.Equal(t, "", read(a, 4, 0, 0))
	assert.Equal(t, "b", read(a, 6, 0, 0))

	require.NoError(t, a.Undo())
	assert.Equal(t, testShape, a.Grid().Shape())
	assert.Equal(t, "b", read(a, 4, 0, 0))

	require.NoError(t, a.Redo())
	assert.Equal(t, 12, a.Grid().Shape().Rows)
	assert.Equal(t, "b", read(a, 6, 0, 0))
}

func TestInsertColsAndTables(t *testing.T) {
	a, _ := newActions(t, nil)
	write(t, a, 0, 1, 1, "x")

	require.NoError(t, a.InsertCols(0, 1))
	assert.Equal(t, "x", read(a, 0, 2, 1))

	require.NoError(t, a.InsertTables(100, 1))
	assert.Equal(t, 3, a.Grid().Shape().Tables)
	assert.Equal(t, "x", read(a, 0, 2, 1))

	err := a.InsertRows(0, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNotSupported(t *testing.T) {
	a, _ := newActions(t, nil)

	tests := []struct {
		name   string
		action string
		call   func() error
	}{
		{"delete rows", "delete_rows", func() error { return a.DeleteRows(0, 1) }},
		{"delete cols", "delete_cols", func() error { return a.DeleteCols(0, 1) }},
		{"delete tables", "delete_tables", func() error { return a.DeleteTables(0, 1) }},
		{"row height", "set_row_height", func() error { return a.SetRowHeight(0, 20) }},
		{"col width", "set_col_width", func() error { return a.SetColWidth(0, 80) }},
		{"macros", "set_macros", func() error { return a.SetMacros("x = 1") }},
		{"shape", "change_shape", func() error { return a.ChangeShape(models.Shape{Rows: 1, Cols: 1, Tables: 1}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			assert.ErrorIs(t, err, ErrNotSupported)

			var actionErr *ActionError
			require.ErrorAs(t, err, &actionErr)
			assert.Equal(t, tt.action, actionErr.Action)
		})
	}
	assert.Equal(t, testShape, a.Grid().Shape())
}

func TestUndo_Empty(t *testing.T) {
	a, _ := newActions(t, nil)
	assert.ErrorIs(t, a.Undo(), ErrNothingToUndo)
	assert.ErrorIs(t, a.Redo(), ErrNothingToRedo)
}

func TestSwitchTable(t *testing.T) {
	a, _ := newActions(t, nil)

	require.NoError(t, a.SwitchTable(1))
	_, err := a.Paste(context.Background(), paste.At(0, 0), paste.FromRows([][]string{{"t1"}}).Rows())
	require.NoError(t, err)
	assert.Equal(t, "t1", read(a, 0, 0, 1))
	assert.Equal(t, "", read(a, 0, 0, 0))

	assert.ErrorIs(t, a.SwitchTable(2), ErrInvalidArgument)
	assert.Equal(t, 1, a.Grid().CurrentTable())
}

func TestSaveOpen_Signed(t *testing.T) {
	backend := trust.NewHMACBackend([]byte("test-signing-key"))
	path := filepath.Join(t.TempDir(), "book.xlsx")

	a, _ := newActions(t, backend)
	a.Override()
	write(t, a, 0, 0, 0, "hello")
	write(t, a, 9, 4, 1, "=1+1")
	require.NoError(t, a.Save(path))
	assert.FileExists(t, path+trust.DefaultSuffix)
	assert.Equal(t, path, a.Path())

	b, rec := newActions(t, backend)
	require.NoError(t, b.Open(path))
	assert.False(t, b.SafeMode())
	assert.Equal(t, "Valid signature found. File is trusted.", rec.LastStatus())
	assert.Equal(t, testShape, b.Grid().Shape())
	assert.Equal(t, "hello", read(b, 0, 0, 0))
	assert.Equal(t, "=1+1", read(b, 9, 4, 1))
	assert.False(t, b.History().CanUndo())
}

func TestOpen_Tampered(t *testing.T) {
	backend := trust.NewHMACBackend([]byte("test-signing-key"))
	path := filepath.Join(t.TempDir(), "book.xlsx")

	a, _ := newActions(t, backend)
	a.Override()
	write(t, a, 0, 0, 0, "hello")
	require.NoError(t, a.Save(path))

	cells := map[models.Key]string{{Row: 0, Col: 0, Table: 0}: "=evil()"}
	require.NoError(t, codec.Save(path, testShape, func(yield func(models.Key, string) bool) {
		for k, v := range cells {
			if !yield(k, v) {
				return
			}
		}
	}))

	b, rec := newActions(t, backend)
	require.NoError(t, b.Open(path))
	assert.True(t, b.SafeMode())
	assert.Equal(t, []bool{true}, rec.SafeModeChanges())
	assert.Equal(t, "=evil()", read(b, 0, 0, 0), "untrusted files still open")
}

func TestOpen_Missing(t *testing.T) {
	a, rec := newActions(t, nil)
	write(t, a, 1, 1, 0, "keep")
	path := filepath.Join(t.TempDir(), "missing.xlsx")

	err := a.Open(path)
	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.Equal(t, "Error opening file "+path+".", rec.LastStatus())
	assert.Equal(t, "keep", read(a, 1, 1, 0), "grid is untouched")
	assert.Empty(t, rec.SafeModeChanges(), "trust is not evaluated")
	assert.Empty(t, a.Path())
}

func TestOpen_RejectedBookKeepsTrust(t *testing.T) {
	backend := trust.NewHMACBackend([]byte("test-signing-key"))
	dir := t.TempDir()

	a, rec := newActions(t, backend)
	a.Override()
	write(t, a, 1, 1, 0, "keep")
	changes := len(rec.SafeModeChanges())

	unsigned := filepath.Join(dir, "unsigned.xlsx")
	book := &codec.Book{
		Shape: models.Shape{Rows: 2, Cols: 2, Tables: 1},
		Cells: map[models.Key]string{{Row: 5, Col: 0, Table: 0}: "x"},
	}
	err := a.install(unsigned, book)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.Equal(t, "Error opening file "+unsigned+".", rec.LastStatus())
	assert.False(t, a.SafeMode(), "trust state is not re-evaluated")
	assert.Len(t, rec.SafeModeChanges(), changes)
	assert.Equal(t, "keep", read(a, 1, 1, 0))
	assert.Empty(t, a.Path())

	book.Shape = models.Shape{}
	assert.ErrorIs(t, a.install(unsigned, book), ErrInvalidArgument)
	assert.False(t, a.SafeMode())
	assert.Equal(t, testShape, a.Grid().Shape())
}

func TestSave_CellTooLong(t *testing.T) {
	a, rec := newActions(t, trust.NewHMACBackend([]byte("test-signing-key")))
	a.Override()
	write(t, a, 0, 0, 0, strings.Repeat("x", excelize.TotalCellChars+1))
	path := filepath.Join(t.TempDir(), "book.xlsx")

	err := a.Save(path)
	assert.ErrorIs(t, err, ErrCellTooLong)
	assert.Equal(t, "Error saving file "+path+".", rec.LastStatus())
	assert.NoFileExists(t, path)
	assert.NoFileExists(t, path+trust.DefaultSuffix)
	assert.Empty(t, a.Path())
}

func TestSave_Errors(t *testing.T) {
	a, rec := newActions(t, nil)

	err := a.Save("")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	path := filepath.Join(t.TempDir(), "no", "such", "dir", "book.xlsx")
	err = a.Save(path)
	var actionErr *ActionError
	require.ErrorAs(t, err, &actionErr)
	assert.Equal(t, "save", actionErr.Action)
	assert.Equal(t, "Error saving file "+path+".", rec.LastStatus())
}

func TestSave_SafeModeWarns(t *testing.T) {
	a, rec := newActions(t, trust.NewHMACBackend([]byte("k")))
	path := filepath.Join(t.TempDir(), "book.xlsx")

	require.NoError(t, a.Save(path))
	assert.FileExists(t, path)
	assert.NoFileExists(t, path+trust.DefaultSuffix)
	assert.Len(t, rec.Warnings(), 1)
}

func TestSign(t *testing.T) {
	a, _ := newActions(t, trust.NewHMACBackend([]byte("k")))
	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))

	assert.False(t, a.Sign(path), "safe mode refuses to sign")
	a.Override()
	assert.True(t, a.Sign(path))
	assert.True(t, a.Approve(path))
}

func TestNewGrid(t *testing.T) {
	a, _ := newActions(t, nil)
	write(t, a, 0, 0, 0, "x")
	a.SelectAll()

	shape := models.Shape{Rows: 3, Cols: 3, Tables: 1}
	require.NoError(t, a.NewGrid(shape))
	assert.Equal(t, shape, a.Grid().Shape())
	assert.Equal(t, 0, a.Grid().Len())
	assert.False(t, a.History().CanUndo())
	assert.True(t, a.Selection().IsEmpty())

	assert.ErrorIs(t, a.NewGrid(models.Shape{}), ErrInvalidArgument)
}

func TestSelectionAndCopy(t *testing.T) {
	a, _ := newActions(t, nil)
	write(t, a, 0, 0, 0, "a")
	write(t, a, 1, 1, 0, "b")
	write(t, a, 3, 3, 0, "d")
	write(t, a, 2, 2, 0, "hidden")

	require.NoError(t, a.SelectA1("A1:B2,D4", false))
	assert.True(t, a.Selection().Contains(3, 3))
	assert.False(t, a.Selection().Contains(2, 2))

	got := a.Copy(a.Selection())
	want := [][]string{
		{"a", "", "", ""},
		{"", "b", "", ""},
		{"", "", "", ""},
		{"", "", "", "d"},
	}
	assert.Equal(t, want, got)

	assert.Nil(t, a.Copy(selection.Selection{}))
}

func TestSelectRange(t *testing.T) {
	a, _ := newActions(t, nil)

	require.NoError(t, a.SelectRange(selection.Span(0, 5), selection.Span(0, 3), false))
	b, ok := a.Selection().Bounds(testShape.Rows, testShape.Cols)
	require.True(t, ok)
	assert.Equal(t, selection.Block{Top: 0, Left: 0, Bottom: 4, Right: 2}, b)

	a.SelectCell(9, 4, true)
	assert.True(t, a.Selection().Contains(9, 4))
	assert.True(t, a.Selection().Contains(0, 0))

	err := a.SelectRange(selection.FromStep(0, 2), selection.All(), false)
	assert.ErrorIs(t, err, ErrInvalidRange)

	a.ClearSelection()
	assert.True(t, a.Selection().IsEmpty())

	assert.Error(t, a.SelectA1("not a ref", false))
}

func TestSnapshot(t *testing.T) {
	a, _ := newActions(t, nil)
	write(t, a, 1, 2, 0, "v")

	data := a.Snapshot()
	assert.Empty(t, data.Name)
	assert.True(t, data.SafeMode)
	assert.Equal(t, "C2:C2", data.Tables["0"].UsedRange)
}

func TestActionError(t *testing.T) {
	err := NewActionError("open", "a.xlsx", ErrFileNotFound)
	assert.Equal(t, `action open "a.xlsx": file not found`, err.Error())
	assert.True(t, errors.Is(err, ErrFileNotFound))

	err = NewActionError("undo", "", ErrNothingToUndo)
	assert.Equal(t, "action undo: nothing to undo", err.Error())
}

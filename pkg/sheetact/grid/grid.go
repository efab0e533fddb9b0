// Package grid implements the sparse three-dimensional cell store and its
// axis mutations.
package grid

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/ukaji3/sheetact-go/pkg/sheetact/models"
)

// ErrNotSupported indicates an operation that is declared but not implemented.
var ErrNotSupported = errors.New("operation not supported")

// ErrInvalidArgument indicates a malformed index, count, axis or shape.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrOutOfBounds indicates a key outside the grid shape.
var ErrOutOfBounds = errors.New("key out of bounds")

// DefaultShape is the shape of a new grid when none is configured.
var DefaultShape = models.Shape{Rows: 1000, Cols: 100, Tables: 3}

// Recorder receives reversible changes for undo and redo.
type Recorder interface {
	Record(label string, undo, redo func())
}

// Grid is a sparse store of cell sources bounded by a shape.
// Absent keys read as the empty string.
type Grid struct {
	shape   models.Shape
	cells   map[models.Key]string
	current int
	history Recorder
}

// New creates an empty grid of the given shape.
func New(shape models.Shape) (*Grid, error) {
	if !shape.Valid() {
		return nil, fmt.Errorf("%w: shape %+v", ErrInvalidArgument, shape)
	}
	return &Grid{
		shape: shape,
		cells: make(map[models.Key]string),
	}, nil
}

// SetHistory attaches a recorder. A nil recorder disables recording.
func (g *Grid) SetHistory(r Recorder) {
	g.history = r
}

// Shape returns the current extent of the grid.
func (g *Grid) Shape() models.Shape {
	return g.shape
}

// Len returns the number of populated cells.
func (g *Grid) Len() int {
	return len(g.cells)
}

// Read returns the source stored at key.
func (g *Grid) Read(key models.Key) string {
	return g.cells[key]
}

// Write stores value at key. Writing the empty string clears the cell.
func (g *Grid) Write(key models.Key, value string) error {
	if !g.shape.Contains(key) {
		return fmt.Errorf("%w: %s not in %+v", ErrOutOfBounds, key, g.shape)
	}
	old, had := g.cells[key]
	if old == value {
		return nil
	}
	g.set(key, value)
	g.record("write", func() {
		if had {
			g.set(key, old)
		} else {
			delete(g.cells, key)
		}
	}, func() {
		g.set(key, value)
	})
	return nil
}

func (g *Grid) set(key models.Key, value string) {
	if value == "" {
		delete(g.cells, key)
		return
	}
	g.cells[key] = value
}

// Cells yields populated cells ordered by table, row and column.
func (g *Grid) Cells() iter.Seq2[models.Key, string] {
	keys := slices.SortedFunc(maps.Keys(g.cells), compareKeys)
	return func(yield func(models.Key, string) bool) {
		for _, k := range keys {
			v, ok := g.cells[k]
			if !ok {
				continue
			}
			if !yield(k, v) {
				return
			}
		}
	}
}

func compareKeys(a, b models.Key) int {
	if c := cmp.Compare(a.Table, b.Table); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Row, b.Row); c != 0 {
		return c
	}
	return cmp.Compare(a.Col, b.Col)
}

// CurrentTable returns the active table index.
func (g *Grid) CurrentTable() int {
	return g.current
}

// SetCurrentTable switches the active table.
func (g *Grid) SetCurrentTable(table int) error {
	if table < 0 || table >= g.shape.Tables {
		return fmt.Errorf("%w: table %d not in [0, %d)", ErrInvalidArgument, table, g.shape.Tables)
	}
	g.current = table
	return nil
}

// Validate reports whether shape and cells could be installed by Reset.
func Validate(shape models.Shape, cells map[models.Key]string) error {
	if !shape.Valid() {
		return fmt.Errorf("%w: shape %+v", ErrInvalidArgument, shape)
	}
	for k, v := range cells {
		if v != "" && !shape.Contains(k) {
			return fmt.Errorf("%w: %s not in %+v", ErrOutOfBounds, k, shape)
		}
	}
	return nil
}

// Reset replaces the whole content of the grid. It is not recorded.
func (g *Grid) Reset(shape models.Shape, cells map[models.Key]string) error {
	if err := Validate(shape, cells); err != nil {
		return err
	}
	next := make(map[models.Key]string, len(cells))
	for k, v := range cells {
		if v != "" {
			next[k] = v
		}
	}
	g.shape = shape
	g.cells = next
	if g.current >= shape.Tables {
		g.current = 0
	}
	return nil
}

func (g *Grid) record(label string, undo, redo func()) {
	if g.history != nil {
		g.history.Record(label, undo, redo)
	}
}

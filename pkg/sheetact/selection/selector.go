package selection

import (
	"errors"
	"fmt"

	"github.com/ukaji3/sheetact-go/pkg/sheetact/models"
)

// ErrInvalidRange indicates a range that cannot be expanded to indices.
var ErrInvalidRange = errors.New("invalid range")

// Range is a single index or a half-open start:stop:step slice along one
// axis. Without a stop it runs to the grid boundary. A zero Step means 1,
// so the zero Range is the unbounded "everything" form.
type Range struct {
	Start   int
	Stop    int
	Step    int
	Bounded bool
}

// All returns the unbounded range covering a whole axis.
func All() Range { return Range{} }

// Index returns the range holding only i.
func Index(i int) Range { return Range{Start: i, Stop: i + 1, Bounded: true} }

// Span returns the half-open range [start, stop).
func Span(start, stop int) Range { return Range{Start: start, Stop: stop, Bounded: true} }

// Slice returns the half-open range [start, stop) taking every step-th index.
func Slice(start, stop, step int) Range {
	return Range{Start: start, Stop: stop, Step: step, Bounded: true}
}

// From returns the range from start to the grid boundary.
func From(start int) Range { return Range{Start: start} }

// FromStep returns an unbounded stepped range. Only a unit step can be
// expanded; other steps are rejected by Selector.SelectRange.
func FromStep(start, step int) Range { return Range{Start: start, Step: step} }

func (r Range) step() int {
	if r.Step == 0 {
		return 1
	}
	return r.Step
}

func (r Range) everything() bool {
	return !r.Bounded && r.Start == 0 && r.step() == 1
}

func (r Range) closed() bool {
	return r.Bounded && r.step() == 1
}

func (r Range) String() string {
	if !r.Bounded {
		return fmt.Sprintf("%d::%d", r.Start, r.step())
	}
	return fmt.Sprintf("%d:%d:%d", r.Start, r.Stop, r.step())
}

// indices expands the range along an axis of the given extent.
func (r Range) indices(extent int) ([]int, error) {
	step := r.step()
	if r.Start < 0 {
		return nil, fmt.Errorf("%w: negative start in %s", ErrInvalidRange, r)
	}
	if !r.Bounded && step != 1 {
		return nil, fmt.Errorf("%w: open stop with step %d", ErrInvalidRange, step)
	}
	stop := extent
	if r.Bounded {
		stop = r.Stop
	}

	var out []int
	if step > 0 {
		for i := r.Start; i < min(stop, extent); i += step {
			out = append(out, i)
		}
		return out, nil
	}
	for i := min(r.Start, extent-1); i > stop && i >= 0; i += step {
		out = append(out, i)
	}
	return out, nil
}

// Bounds provides the grid extent a selector expands open ranges against.
type Bounds interface {
	Shape() models.Shape
}

// Selector holds the current selection of a grid and builds new ones from
// user gestures. Each gesture produces a fresh immutable Selection.
type Selector struct {
	bounds  Bounds
	current Selection
}

// NewSelector creates a selector with an empty selection.
func NewSelector(bounds Bounds) *Selector {
	return &Selector{bounds: bounds}
}

// Selection returns the current selection.
func (s *Selector) Selection() Selection {
	return s.current
}

// Clear drops the current selection.
func (s *Selector) Clear() {
	s.current = Selection{}
}

// SelectAll selects the whole table.
func (s *Selector) SelectAll() {
	shape := s.bounds.Shape()
	s.current = Everything(shape.Rows, shape.Cols)
}

// SelectCell selects the single cell (row, col), replacing the current
// selection unless add is set.
func (s *Selector) SelectCell(row, col int, add bool) {
	s.apply(New([]Block{{Top: row, Left: col, Bottom: row, Right: col}}, nil, nil, nil), add)
}

// SelectRange selects rowRange x colRange, replacing the current selection
// unless add is set.
//
// Two unbounded whole-axis ranges select the whole table. Two closed
// unit-step ranges select one block. Anything else selects the individual
// cells of the Cartesian product of both index sequences.
func (s *Selector) SelectRange(rowRange, colRange Range, add bool) error {
	shape := s.bounds.Shape()

	if rowRange.everything() && colRange.everything() {
		s.apply(Everything(shape.Rows, shape.Cols), add)
		return nil
	}

	if rowRange.closed() && colRange.closed() {
		var blocks []Block
		if rowRange.Stop > rowRange.Start && colRange.Stop > colRange.Start {
			blocks = []Block{{
				Top:    rowRange.Start,
				Left:   colRange.Start,
				Bottom: rowRange.Stop - 1,
				Right:  colRange.Stop - 1,
			}}
		}
		s.apply(New(blocks, nil, nil, nil), add)
		return nil
	}

	rows, err := rowRange.indices(shape.Rows)
	if err != nil {
		return fmt.Errorf("rows: %w", err)
	}
	cols, err := colRange.indices(shape.Cols)
	if err != nil {
		return fmt.Errorf("cols: %w", err)
	}
	cells := make([]Cell, 0, len(rows)*len(cols))
	for _, r := range rows {
		for _, c := range cols {
			cells = append(cells, Cell{Row: r, Col: c})
		}
	}
	s.apply(New(nil, nil, nil, cells), add)
	return nil
}

// SelectRows selects whole rows.
func (s *Selector) SelectRows(rows []int, add bool) {
	s.apply(New(nil, rows, nil, nil), add)
}

// SelectCols selects whole columns.
func (s *Selector) SelectCols(cols []int, add bool) {
	s.apply(New(nil, nil, cols, nil), add)
}

// Set replaces or extends the current selection with sel.
func (s *Selector) Set(sel Selection, add bool) {
	s.apply(sel, add)
}

func (s *Selector) apply(sel Selection, add bool) {
	if add {
		s.current = s.current.Union(sel)
		return
	}
	s.current = sel
}

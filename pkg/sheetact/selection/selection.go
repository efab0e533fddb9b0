// Package selection models composite grid selections built from blocks,
// full rows, full columns and individual cells.
package selection

import (
	"cmp"
	"iter"
	"maps"
	"slices"
)

// Cell is a single (row, col) coordinate of the current table.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Block is a rectangle given by inclusive top-left and bottom-right corners.
type Block struct {
	Top    int `json:"top"`
	Left   int `json:"left"`
	Bottom int `json:"bottom"`
	Right  int `json:"right"`
}

// Contains reports whether (row, col) lies inside the block.
func (b Block) Contains(row, col int) bool {
	return row >= b.Top && row <= b.Bottom && col >= b.Left && col <= b.Right
}

// Selection is an immutable union of blocks, full rows, full columns and
// individual cells. The zero value selects nothing.
type Selection struct {
	blocks []Block
	rows   map[int]struct{}
	cols   map[int]struct{}
	cells  map[Cell]struct{}
}

// New builds a selection from its parts. The arguments are copied.
func New(blocks []Block, rows, cols []int, cells []Cell) Selection {
	s := Selection{
		blocks: slices.Clone(blocks),
		rows:   make(map[int]struct{}, len(rows)),
		cols:   make(map[int]struct{}, len(cols)),
		cells:  make(map[Cell]struct{}, len(cells)),
	}
	for _, r := range rows {
		s.rows[r] = struct{}{}
	}
	for _, c := range cols {
		s.cols[c] = struct{}{}
	}
	for _, c := range cells {
		s.cells[c] = struct{}{}
	}
	return s
}

// Everything returns the selection of a whole rows x cols table.
func Everything(rows, cols int) Selection {
	return New([]Block{{Top: 0, Left: 0, Bottom: rows - 1, Right: cols - 1}}, nil, nil, nil)
}

// Contains reports whether (row, col) is selected: it falls inside any
// block, its row or column is fully selected, or it is listed as a cell.
func (s Selection) Contains(row, col int) bool {
	for _, b := range s.blocks {
		if b.Contains(row, col) {
			return true
		}
	}
	if _, ok := s.rows[row]; ok {
		return true
	}
	if _, ok := s.cols[col]; ok {
		return true
	}
	_, ok := s.cells[Cell{Row: row, Col: col}]
	return ok
}

// IsEmpty reports whether nothing is selected.
func (s Selection) IsEmpty() bool {
	return len(s.blocks) == 0 && len(s.rows) == 0 && len(s.cols) == 0 && len(s.cells) == 0
}

// Blocks returns a copy of the selected blocks.
func (s Selection) Blocks() []Block {
	return slices.Clone(s.blocks)
}

// Rows returns the fully selected rows in ascending order.
func (s Selection) Rows() []int {
	return slices.Sorted(maps.Keys(s.rows))
}

// Cols returns the fully selected columns in ascending order.
func (s Selection) Cols() []int {
	return slices.Sorted(maps.Keys(s.cols))
}

// Cells returns the individually selected cells in row-major order.
func (s Selection) Cells() []Cell {
	return slices.SortedFunc(maps.Keys(s.cells), func(a, b Cell) int {
		if c := cmp.Compare(a.Row, b.Row); c != 0 {
			return c
		}
		return cmp.Compare(a.Col, b.Col)
	})
}

// Union returns a selection containing everything in s and o.
func (s Selection) Union(o Selection) Selection {
	u := New(append(s.Blocks(), o.blocks...), s.Rows(), s.Cols(), s.Cells())
	for r := range o.rows {
		u.rows[r] = struct{}{}
	}
	for c := range o.cols {
		u.cols[c] = struct{}{}
	}
	for c := range o.cells {
		u.cells[c] = struct{}{}
	}
	return u
}

// Bounds returns the smallest block enclosing every selected coordinate
// inside a rows x cols table. ok is false when that region is empty.
func (s Selection) Bounds(rows, cols int) (b Block, ok bool) {
	b = Block{Top: rows, Left: cols, Bottom: -1, Right: -1}
	grow := func(top, left, bottom, right int) {
		top, left = max(top, 0), max(left, 0)
		bottom, right = min(bottom, rows-1), min(right, cols-1)
		if top > bottom || left > right {
			return
		}
		b.Top, b.Left = min(b.Top, top), min(b.Left, left)
		b.Bottom, b.Right = max(b.Bottom, bottom), max(b.Right, right)
	}
	for _, blk := range s.blocks {
		grow(blk.Top, blk.Left, blk.Bottom, blk.Right)
	}
	for r := range s.rows {
		grow(r, 0, r, cols-1)
	}
	for c := range s.cols {
		grow(0, c, rows-1, c)
	}
	for c := range s.cells {
		grow(c.Row, c.Col, c.Row, c.Col)
	}
	return b, b.Bottom >= 0
}

// All yields every selected coordinate inside a rows x cols table in
// row-major order. Only the bounding box is scanned.
func (s Selection) All(rows, cols int) iter.Seq[Cell] {
	return func(yield func(Cell) bool) {
		b, ok := s.Bounds(rows, cols)
		if !ok {
			return
		}
		for r := b.Top; r <= b.Bottom; r++ {
			for c := b.Left; c <= b.Right; c++ {
				if s.Contains(r, c) && !yield(Cell{Row: r, Col: c}) {
					return
				}
			}
		}
	}
}

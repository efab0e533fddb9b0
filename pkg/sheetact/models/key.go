// Package models defines the data structures shared by the action layer.
package models

import "fmt"

// Key addresses a single cell of the grid. All indices are 0-based.
type Key struct {
	Row   int `json:"row"`
	Col   int `json:"col"`
	Table int `json:"table"`
}

func (k Key) String() string {
	return fmt.Sprintf("(%d, %d, %d)", k.Row, k.Col, k.Table)
}

// Axis selects one of the three dimensions of the grid.
type Axis int

const (
	// AxisRow is the row dimension.
	AxisRow Axis = iota
	// AxisCol is the column dimension.
	AxisCol
	// AxisTable is the table (sheet plane) dimension.
	AxisTable
)

func (a Axis) String() string {
	switch a {
	case AxisRow:
		return "row"
	case AxisCol:
		return "column"
	case AxisTable:
		return "table"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// ParseAxis converts a user supplied axis name to an Axis.
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "row", "rows":
		return AxisRow, nil
	case "col", "cols", "column", "columns":
		return AxisCol, nil
	case "table", "tables", "tab", "tabs":
		return AxisTable, nil
	default:
		return 0, fmt.Errorf("invalid axis: %s (must be row, col, or table)", s)
	}
}

// Shape is the extent of the grid along each axis.
type Shape struct {
	Rows   int `json:"rows"`
	Cols   int `json:"cols"`
	Tables int `json:"tables"`
}

// Extent returns the size of the shape along axis.
func (s Shape) Extent(axis Axis) int {
	switch axis {
	case AxisRow:
		return s.Rows
	case AxisCol:
		return s.Cols
	default:
		return s.Tables
	}
}

// Grow returns a copy of the shape extended by count along axis.
func (s Shape) Grow(axis Axis, count int) Shape {
	switch axis {
	case AxisRow:
		s.Rows += count
	case AxisCol:
		s.Cols += count
	default:
		s.Tables += count
	}
	return s
}

// Contains reports whether key lies inside the shape.
func (s Shape) Contains(k Key) bool {
	return k.Row >= 0 && k.Row < s.Rows &&
		k.Col >= 0 && k.Col < s.Cols &&
		k.Table >= 0 && k.Table < s.Tables
}

// Valid reports whether every extent is positive.
func (s Shape) Valid() bool {
	return s.Rows > 0 && s.Cols > 0 && s.Tables > 0
}

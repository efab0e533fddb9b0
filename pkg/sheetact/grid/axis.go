package grid

import (
	"fmt"
	"math"

	"github.com/ukaji3/sheetact-go/pkg/sheetact/models"
)

// Insert adds count empty cross-sections before index along axis.
// Cells at or after index move by count. An index beyond the current
// extent appends at the end of the axis instead of leaving a gap.
func (g *Grid) Insert(index, count int, axis models.Axis) error {
	if err := checkAxis(axis); err != nil {
		return err
	}
	if index < 0 || count <= 0 {
		return fmt.Errorf("%w: insert index %d count %d", ErrInvalidArgument, index, count)
	}
	extent := g.shape.Extent(axis)
	if count > math.MaxInt-extent {
		return fmt.Errorf("%w: insert count %d overflows extent %d", ErrInvalidArgument, count, extent)
	}
	if index > extent {
		index = extent
	}

	g.insert(index, count, axis)
	g.record("insert "+axis.String(), func() {
		g.remove(index, count, axis)
	}, func() {
		g.insert(index, count, axis)
	})
	return nil
}

// Delete would remove count cross-sections starting at index along axis.
// It is not implemented and always fails with ErrNotSupported.
func (g *Grid) Delete(index, count int, axis models.Axis) error {
	return fmt.Errorf("delete %d %s(s) at %d: %w", count, axis, index, ErrNotSupported)
}

func (g *Grid) insert(index, count int, axis models.Axis) {
	next := make(map[models.Key]string, len(g.cells))
	for k, v := range g.cells {
		if coord(k, axis) >= index {
			k = moved(k, axis, count)
		}
		next[k] = v
	}
	g.cells = next
	g.shape = g.shape.Grow(axis, count)
}

// remove reverts insert. The removed cross-sections are expected to be
// empty again because later writes into them are undone first.
func (g *Grid) remove(index, count int, axis models.Axis) {
	next := make(map[models.Key]string, len(g.cells))
	for k, v := range g.cells {
		c := coord(k, axis)
		switch {
		case c >= index+count:
			k = moved(k, axis, -count)
		case c >= index:
			continue
		}
		next[k] = v
	}
	g.cells = next
	g.shape = g.shape.Grow(axis, -count)
	if g.current >= g.shape.Tables {
		g.current = g.shape.Tables - 1
	}
}

func checkAxis(axis models.Axis) error {
	switch axis {
	case models.AxisRow, models.AxisCol, models.AxisTable:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidArgument, axis)
	}
}

func coord(k models.Key, axis models.Axis) int {
	switch axis {
	case models.AxisRow:
		return k.Row
	case models.AxisCol:
		return k.Col
	default:
		return k.Table
	}
}

func moved(k models.Key, axis models.Axis, delta int) models.Key {
	switch axis {
	case models.AxisRow:
		k.Row += delta
	case models.AxisCol:
		k.Col += delta
	default:
		k.Table += delta
	}
	return k
}

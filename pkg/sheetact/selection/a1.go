package selection

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseA1 parses a comma separated list of A1 references into a selection.
// Supported parts are cell ranges (A1:C5), single cells (B7), whole rows
// (3:5) and whole columns (B:D). Dollar signs and a leading sheet name
// ('Sheet 1'!A1:B2) are ignored.
func ParseA1(ref string) (Selection, error) {
	var (
		blocks     []Block
		rows, cols []int
		cells      []Cell
	)

	for _, part := range strings.Split(ref, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if idx := strings.LastIndex(part, "!"); idx >= 0 {
			part = part[idx+1:]
		}
		part = strings.ReplaceAll(part, "$", "")

		from, to, isRange := strings.Cut(part, ":")
		if !isRange {
			c, err := parseCell(from)
			if err != nil {
				return Selection{}, err
			}
			cells = append(cells, c)
			continue
		}

		if r1, err1 := strconv.Atoi(from); err1 == nil {
			r2, err := strconv.Atoi(to)
			if err != nil || r1 < 1 || r2 < r1 {
				return Selection{}, fmt.Errorf("%w: row reference %q", ErrInvalidRange, part)
			}
			for r := r1; r <= r2; r++ {
				rows = append(rows, r-1)
			}
			continue
		}

		if isColumnName(from) && isColumnName(to) {
			c1, err := excelize.ColumnNameToNumber(from)
			if err != nil {
				return Selection{}, fmt.Errorf("%w: %v", ErrInvalidRange, err)
			}
			c2, err := excelize.ColumnNameToNumber(to)
			if err != nil || c2 < c1 {
				return Selection{}, fmt.Errorf("%w: column reference %q", ErrInvalidRange, part)
			}
			for c := c1; c <= c2; c++ {
				cols = append(cols, c-1)
			}
			continue
		}

		b, err := parseBlock(from, to)
		if err != nil {
			return Selection{}, err
		}
		blocks = append(blocks, b)
	}

	return New(blocks, rows, cols, cells), nil
}

// ParseCell converts a single A1 cell name to a 0-based coordinate.
func ParseCell(name string) (Cell, error) {
	return parseCell(strings.ReplaceAll(strings.TrimSpace(name), "$", ""))
}

// CellName converts a 0-based coordinate to its A1 name.
func CellName(row, col int) (string, error) {
	return excelize.CoordinatesToCellName(col+1, row+1)
}

func parseCell(name string) (Cell, error) {
	col, row, err := excelize.CellNameToCoordinates(name)
	if err != nil {
		return Cell{}, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	return Cell{Row: row - 1, Col: col - 1}, nil
}

func parseBlock(from, to string) (Block, error) {
	start, err := parseCell(from)
	if err != nil {
		return Block{}, err
	}
	end, err := parseCell(to)
	if err != nil {
		return Block{}, err
	}
	return Block{
		Top:    min(start.Row, end.Row),
		Left:   min(start.Col, end.Col),
		Bottom: max(start.Row, end.Row),
		Right:  max(start.Col, end.Col),
	}, nil
}

func isColumnName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}

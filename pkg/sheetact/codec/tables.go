package codec

import (
	"fmt"
	"iter"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/sheetact-go/pkg/sheetact/models"
)

// Bounds is the inclusive bounding box of populated cells in one table.
type Bounds struct {
	MinRow, MaxRow int
	MinCol, MaxCol int
}

// Range returns the bounds in A1 notation (e.g. "A1:D10").
func (b Bounds) Range() string {
	startCell, _ := excelize.CoordinatesToCellName(b.MinCol+1, b.MinRow+1)
	endCell, _ := excelize.CoordinatesToCellName(b.MaxCol+1, b.MaxRow+1)
	return fmt.Sprintf("%s:%s", startCell, endCell)
}

// DataBounds finds the bounding box of populated cells per table.
func DataBounds(cells iter.Seq2[models.Key, string]) map[int]Bounds {
	result := make(map[int]Bounds)
	for k, v := range cells {
		if v == "" {
			continue
		}
		b, ok := result[k.Table]
		if !ok {
			result[k.Table] = Bounds{MinRow: k.Row, MaxRow: k.Row, MinCol: k.Col, MaxCol: k.Col}
			continue
		}
		b.MinRow, b.MaxRow = min(b.MinRow, k.Row), max(b.MaxRow, k.Row)
		b.MinCol, b.MaxCol = min(b.MinCol, k.Col), max(b.MaxCol, k.Col)
		result[k.Table] = b
	}
	return result
}

// Snapshot converts ordered cells into a serialisable GridData. cells must
// be ordered by table, then row.
func Snapshot(name string, shape models.Shape, safeMode bool, cells iter.Seq2[models.Key, string]) models.GridData {
	data := models.GridData{
		Name:     name,
		Shape:    shape,
		SafeMode: safeMode,
		Tables:   make(map[string]models.TableData),
	}

	for k, v := range cells {
		tableKey := strconv.Itoa(k.Table)
		table := data.Tables[tableKey]
		n := len(table.Rows)
		if n == 0 || table.Rows[n-1].R != k.Row {
			table.Rows = append(table.Rows, models.CellRow{R: k.Row, C: make(map[string]string)})
			n++
		}
		table.Rows[n-1].C[strconv.Itoa(k.Col)] = v
		data.Tables[tableKey] = table
	}

	for t, b := range DataBounds(cells) {
		tableKey := strconv.Itoa(t)
		table := data.Tables[tableKey]
		table.UsedRange = b.Range()
		data.Tables[tableKey] = table
	}
	return data
}

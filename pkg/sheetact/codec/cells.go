// Package codec reads and writes grids as xlsx workbooks.
//
// Each table is stored as one worksheet named Table<N>. The grid shape is
// kept on a hidden worksheet so that empty trailing rows, columns and
// tables survive a round trip.
package codec

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/sheetact-go/pkg/sheetact/models"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidFormat indicates the input file is not a valid xlsx workbook.
var ErrInvalidFormat = errors.New("invalid xlsx format")

// ErrCellTooLong indicates a cell source longer than an xlsx cell can hold.
var ErrCellTooLong = errors.New("cell text too long")

const (
	tablePrefix = "Table"
	metaSheet   = "_grid"
)

// Book is the content of a loaded workbook.
type Book struct {
	Shape models.Shape
	Cells map[models.Key]string
}

// TableSheet returns the worksheet name of table t.
func TableSheet(t int) string {
	return tablePrefix + strconv.Itoa(t)
}

// Load reads the workbook at path. Workbooks written by other programs
// have no stored shape; their shape is the larger of fallback and the
// extent of the data, with one table per worksheet.
func Load(path string, fallback models.Shape) (*Book, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	defer f.Close()

	var sheets []string
	for _, name := range f.GetSheetList() {
		if name != metaSheet {
			sheets = append(sheets, name)
		}
	}

	book := &Book{Cells: make(map[models.Key]string)}
	used := models.Shape{Tables: len(sheets)}
	for table, sheetName := range sheets {
		rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheetName, err)
		}
		for rowIdx, row := range rows {
			for colIdx, value := range row {
				value, err := CellSource(f, sheetName, rowIdx, colIdx, value)
				if err != nil {
					return nil, fmt.Errorf("read sheet %q: %w", sheetName, err)
				}
				if value == "" {
					continue
				}
				book.Cells[models.Key{Row: rowIdx, Col: colIdx, Table: table}] = value
				used.Rows = max(used.Rows, rowIdx+1)
				used.Cols = max(used.Cols, colIdx+1)
			}
		}
	}

	shape, ok, err := readShape(f)
	if err != nil {
		return nil, err
	}
	if !ok {
		shape = models.Shape{
			Rows:   max(fallback.Rows, used.Rows),
			Cols:   max(fallback.Cols, used.Cols),
			Tables: max(used.Tables, 1),
		}
	}
	if shape.Rows < used.Rows || shape.Cols < used.Cols || shape.Tables < used.Tables {
		return nil, fmt.Errorf("%w: stored shape %+v smaller than data %+v", ErrInvalidFormat, shape, used)
	}
	book.Shape = shape
	return book, nil
}

// CellSource returns the source of the cell at the 0-based (row, col) of
// sheet: "=" followed by its formula when it has one, otherwise value.
func CellSource(f *excelize.File, sheet string, row, col int, value string) (string, error) {
	name, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return "", err
	}
	formula, err := f.GetCellFormula(sheet, name)
	if err != nil {
		return "", fmt.Errorf("formula %s: %w", name, err)
	}
	if formula != "" {
		return "=" + strings.TrimPrefix(formula, "="), nil
	}
	return value, nil
}

func readShape(f *excelize.File) (models.Shape, bool, error) {
	if idx, err := f.GetSheetIndex(metaSheet); err != nil || idx < 0 {
		return models.Shape{}, false, nil
	}
	var dims [3]int
	for i, cell := range []string{"A1", "B1", "C1"} {
		v, err := f.GetCellValue(metaSheet, cell)
		if err != nil {
			return models.Shape{}, false, fmt.Errorf("%w: shape: %v", ErrInvalidFormat, err)
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n <= 0 {
			return models.Shape{}, false, fmt.Errorf("%w: shape cell %s = %q", ErrInvalidFormat, cell, v)
		}
		dims[i] = n
	}
	return models.Shape{Rows: dims[0], Cols: dims[1], Tables: dims[2]}, true, nil
}

// cellChars counts value the way xlsx limits cell text, in UTF-16 units.
func cellChars(value string) int {
	n := 0
	for _, r := range value {
		n += utf16.RuneLen(r)
	}
	return n
}

// Save writes shape and cells to a new workbook at path. Nothing is written
// if a cell exceeds the xlsx text limit.
func Save(path string, shape models.Shape, cells iter.Seq2[models.Key, string]) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), TableSheet(0)); err != nil {
		return err
	}
	for t := 1; t < shape.Tables; t++ {
		if _, err := f.NewSheet(TableSheet(t)); err != nil {
			return err
		}
	}

	for key, value := range cells {
		if n := cellChars(value); n > excelize.TotalCellChars {
			return fmt.Errorf("%w: cell %s has %d characters, limit is %d", ErrCellTooLong, key, n, excelize.TotalCellChars)
		}
		name, err := excelize.CoordinatesToCellName(key.Col+1, key.Row+1)
		if err != nil {
			return fmt.Errorf("cell %s: %w", key, err)
		}
		if err := f.SetCellStr(TableSheet(key.Table), name, value); err != nil {
			return fmt.Errorf("cell %s: %w", key, err)
		}
	}

	if _, err := f.NewSheet(metaSheet); err != nil {
		return err
	}
	for cell, n := range map[string]int{"A1": shape.Rows, "B1": shape.Cols, "C1": shape.Tables} {
		if err := f.SetCellValue(metaSheet, cell, n); err != nil {
			return err
		}
	}
	if err := f.SetSheetVisible(metaSheet, false); err != nil {
		return err
	}
	f.SetActiveSheet(0)

	return f.SaveAs(path)
}

package paste

import (
	"encoding/csv"
	"errors"
	"io"
	"iter"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/sheetact-go/pkg/sheetact/codec"
)

// Source is a single-pass stream of rows whose read error is reported
// after the stream has been consumed.
type Source struct {
	read func(yield func([]string) bool) error
	err  error
}

// Rows returns the stream. Read errors stop the stream and are kept for Err.
func (s *Source) Rows() iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		if err := s.read(yield); err != nil && s.err == nil {
			s.err = err
		}
	}
}

// Err returns the first error hit while reading.
func (s *Source) Err() error {
	return s.err
}

// FromRows wraps rows already in memory.
func FromRows(rows [][]string) *Source {
	return &Source{read: func(yield func([]string) bool) error {
		for _, r := range rows {
			if !yield(r) {
				return nil
			}
		}
		return nil
	}}
}

// FromCSV reads delimiter separated records from r. Records may have a
// varying number of fields.
func FromCSV(r io.Reader, comma rune) *Source {
	cr := csv.NewReader(r)
	if comma != 0 {
		cr.Comma = comma
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	return &Source{read: func(yield func([]string) bool) error {
		for {
			record, err := cr.Read()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			if !yield(record) {
				return nil
			}
		}
	}}
}

// FromSheet streams the rows of one worksheet of an open workbook as cell
// sources: formulas as "=" followed by the formula, other cells by their
// raw value. An empty sheet name selects the first sheet.
func FromSheet(f *excelize.File, sheet string) *Source {
	return &Source{read: func(yield func([]string) bool) error {
		name := sheet
		if name == "" {
			name = f.GetSheetName(0)
		}
		rows, err := f.Rows(name)
		if err != nil {
			return err
		}
		defer rows.Close()

		for row := 0; rows.Next(); row++ {
			cols, err := rows.Columns(excelize.Options{RawCellValue: true})
			if err != nil {
				return err
			}
			for col, value := range cols {
				if cols[col], err = codec.CellSource(f, name, row, col, value); err != nil {
					return err
				}
			}
			if !yield(cols) {
				return nil
			}
		}
		return rows.Error()
	}}
}

// FromXLSX streams a worksheet of the workbook at path. The file is closed
// once the stream ends.
func FromXLSX(path, sheet string) *Source {
	return &Source{read: func(yield func([]string) bool) error {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return FromSheet(f, sheet).read(yield)
	}}
}

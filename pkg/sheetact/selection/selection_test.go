package selection

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/sheetact-go/pkg/sheetact/models"
)

type fixedBounds models.Shape

func (b fixedBounds) Shape() models.Shape { return models.Shape(b) }

func newSelector(rows, cols int) *Selector {
	return NewSelector(fixedBounds{Rows: rows, Cols: cols, Tables: 1})
}

func TestSelection_RowsAndColsOnly(t *testing.T) {
	sel := New(nil, []int{1, 4}, []int{2}, nil)

	for r := 0; r < 6; r++ {
		for c := 0; c < 6; c++ {
			want := r == 1 || r == 4 || c == 2
			assert.Equal(t, want, sel.Contains(r, c), "(%d, %d)", r, c)
		}
	}
}

func TestSelection_ContainsComposite(t *testing.T) {
	sel := New(
		[]Block{{Top: 0, Left: 0, Bottom: 1, Right: 1}},
		[]int{5},
		[]int{7},
		[]Cell{{Row: 3, Col: 3}},
	)

	tests := []struct {
		row, col int
		want     bool
	}{
		{0, 0, true},
		{1, 1, true},
		{2, 2, false},
		{5, 100, true},
		{100, 7, true},
		{3, 3, true},
		{3, 4, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sel.Contains(tt.row, tt.col), "(%d, %d)", tt.row, tt.col)
	}
}

func TestSelection_Empty(t *testing.T) {
	var sel Selection
	assert.True(t, sel.IsEmpty())
	assert.False(t, sel.Contains(0, 0))
	_, ok := sel.Bounds(10, 10)
	assert.False(t, ok)
}

func TestSelector_ClosedBlock(t *testing.T) {
	s := newSelector(10, 10)
	require.NoError(t, s.SelectRange(Span(0, 5), Span(0, 3), false))

	sel := s.Selection()
	assert.Equal(t, []Block{{Top: 0, Left: 0, Bottom: 4, Right: 2}}, sel.Blocks())

	count := 0
	for r := 0; r < 10; r++ {
		for c := 0; c < 10; c++ {
			in := sel.Contains(r, c)
			assert.Equal(t, r <= 4 && c <= 2, in, "(%d, %d)", r, c)
			if in {
				count++
			}
		}
	}
	assert.Equal(t, 15, count)
}

func TestSelector_Everything(t *testing.T) {
	s := newSelector(4, 3)
	require.NoError(t, s.SelectRange(All(), All(), false))

	sel := s.Selection()
	assert.Equal(t, 12, len(slices.Collect(sel.All(4, 3))))
	assert.Equal(t, []Block{{Top: 0, Left: 0, Bottom: 3, Right: 2}}, sel.Blocks())
}

func TestSelector_OnlyRowsUnboundedIsNotEverything(t *testing.T) {
	s := newSelector(4, 4)
	require.NoError(t, s.SelectRange(All(), Index(1), false))

	sel := s.Selection()
	assert.Empty(t, sel.Blocks())
	for r := 0; r < 4; r++ {
		assert.True(t, sel.Contains(r, 1))
		assert.False(t, sel.Contains(r, 2))
	}
}

func TestSelector_SteppedRange(t *testing.T) {
	s := newSelector(10, 10)
	require.NoError(t, s.SelectRange(Slice(0, 6, 2), Index(3), false))

	assert.Equal(t, []Cell{{0, 3}, {2, 3}, {4, 3}}, s.Selection().Cells())
}

func TestSelector_SteppedDefaults(t *testing.T) {
	s := newSelector(3, 3)
	require.NoError(t, s.SelectRange(Range{Stop: 3, Step: 2, Bounded: true}, From(2), false))

	assert.Equal(t, []Cell{{0, 2}, {2, 2}}, s.Selection().Cells())
}

func TestSelector_NegativeStep(t *testing.T) {
	s := newSelector(10, 10)
	require.NoError(t, s.SelectRange(Slice(4, 0, -2), Index(0), false))

	assert.Equal(t, []Cell{{2, 0}, {4, 0}}, s.Selection().Cells())
}

func TestSelector_OpenStopWithStepRejected(t *testing.T) {
	s := newSelector(10, 10)
	s.SelectCell(1, 1, false)

	err := s.SelectRange(FromStep(0, 2), Index(0), false)
	assert.ErrorIs(t, err, ErrInvalidRange)
	assert.True(t, s.Selection().Contains(1, 1), "rejected request leaves selection untouched")
}

func TestSelector_AddToExisting(t *testing.T) {
	s := newSelector(10, 10)
	s.SelectCell(0, 0, false)
	s.SelectCell(5, 5, true)

	sel := s.Selection()
	assert.True(t, sel.Contains(0, 0))
	assert.True(t, sel.Contains(5, 5))

	s.SelectCell(9, 9, false)
	assert.False(t, s.Selection().Contains(0, 0))
	assert.True(t, sel.Contains(0, 0), "previous snapshot is immutable")
}

func TestSelection_AllRowMajor(t *testing.T) {
	sel := New(nil, []int{1}, nil, []Cell{{Row: 0, Col: 2}})

	got := slices.Collect(sel.All(3, 3))
	assert.Equal(t, []Cell{{0, 2}, {1, 0}, {1, 1}, {1, 2}}, got)
}

func TestSelection_Bounds(t *testing.T) {
	sel := New([]Block{{Top: 2, Left: 1, Bottom: 20, Right: 2}}, nil, nil, []Cell{{Row: 0, Col: 4}})

	b, ok := sel.Bounds(10, 10)
	require.True(t, ok)
	assert.Equal(t, Block{Top: 0, Left: 1, Bottom: 9, Right: 4}, b)
}

func TestParseA1(t *testing.T) {
	sel, err := ParseA1("A1:B2, $D$4, 'My Sheet'!3:3, F:G")
	require.NoError(t, err)

	assert.Equal(t, []Block{{Top: 0, Left: 0, Bottom: 1, Right: 1}}, sel.Blocks())
	assert.Equal(t, []Cell{{Row: 3, Col: 3}}, sel.Cells())
	assert.Equal(t, []int{2}, sel.Rows())
	assert.Equal(t, []int{5, 6}, sel.Cols())
}

func TestParseA1_Invalid(t *testing.T) {
	for _, ref := range []string{"A0", "3:1", "C:A", "!!"} {
		_, err := ParseA1(ref)
		assert.ErrorIs(t, err, ErrInvalidRange, ref)
	}
}

func TestCellName(t *testing.T) {
	name, err := CellName(0, 27)
	require.NoError(t, err)
	assert.Equal(t, "AB1", name)

	c, err := ParseCell("$AB$1")
	require.NoError(t, err)
	assert.Equal(t, Cell{Row: 0, Col: 27}, c)
}

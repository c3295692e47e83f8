package dataset

import (
	"fmt"
	"math"

	"apareport/domain/core"
)

// Frame is a read-only table of numeric columns. Frames are shared between
// bootstrap workers and never mutated; Subset always returns a new Frame.
type Frame struct {
	names   []string
	columns map[string][]float64
	nrows   int
}

// NewFrame builds a frame from named columns in the given order.
// All columns must have the same length.
func NewFrame(names []string, columns [][]float64) (*Frame, error) {
	if len(names) != len(columns) {
		return nil, core.NewInputShapeError("frame", fmt.Sprintf("%d names for %d columns", len(names), len(columns)))
	}
	f := &Frame{
		names:   make([]string, len(names)),
		columns: make(map[string][]float64, len(names)),
	}
	copy(f.names, names)
	for i, name := range names {
		if _, dup := f.columns[name]; dup {
			return nil, core.NewInputShapeError("frame", fmt.Sprintf("duplicate column %q", name))
		}
		if i == 0 {
			f.nrows = len(columns[i])
		} else if len(columns[i]) != f.nrows {
			return nil, core.NewInputShapeError("frame", fmt.Sprintf("column %q has %d rows, want %d", name, len(columns[i]), f.nrows))
		}
		col := make([]float64, len(columns[i]))
		copy(col, columns[i])
		f.columns[name] = col
	}
	return f, nil
}

// Names returns the column names in order
func (f *Frame) Names() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// NumRows returns the number of observations
func (f *Frame) NumRows() int { return f.nrows }

// Has reports whether a column exists
func (f *Frame) Has(name string) bool {
	_, ok := f.columns[name]
	return ok
}

// Column returns a copy of the named column
func (f *Frame) Column(name string) ([]float64, error) {
	col, ok := f.columns[name]
	if !ok {
		return nil, core.NewMissingReferenceError("column", name)
	}
	out := make([]float64, len(col))
	copy(out, col)
	return out, nil
}

// Value returns one cell without copying the column
func (f *Frame) Value(name string, row int) float64 {
	return f.columns[name][row]
}

// Subset returns a new frame holding the rows at indices, in order.
// Indices may repeat (resampling with replacement).
func (f *Frame) Subset(indices []int) (*Frame, error) {
	out := &Frame{
		names:   f.names,
		columns: make(map[string][]float64, len(f.names)),
		nrows:   len(indices),
	}
	for _, name := range f.names {
		src := f.columns[name]
		col := make([]float64, len(indices))
		for i, idx := range indices {
			if idx < 0 || idx >= f.nrows {
				return nil, core.NewInputShapeError("subset", fmt.Sprintf("row index %d out of range [0,%d)", idx, f.nrows))
			}
			col[i] = src[idx]
		}
		out.columns[name] = col
	}
	return out, nil
}

// CompleteCases returns the row indices where every listed column is finite
func (f *Frame) CompleteCases(names ...string) ([]int, error) {
	for _, name := range names {
		if !f.Has(name) {
			return nil, core.NewMissingReferenceError("column", name)
		}
	}
	rows := make([]int, 0, f.nrows)
	for i := 0; i < f.nrows; i++ {
		ok := true
		for _, name := range names {
			v := f.columns[name][i]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				ok = false
				break
			}
		}
		if ok {
			rows = append(rows, i)
		}
	}
	return rows, nil
}

package dataset

import (
	"math"
	"sort"
)

// Kind is the inferred type of a column, named like a dataframe dtype.
type Kind string

const (
	KindInt      Kind = "int64"
	KindFloat    Kind = "float64"
	KindBool     Kind = "bool"
	KindDatetime Kind = "datetime"
	KindObject   Kind = "object"
)

// Numeric reports whether values of this kind can be compared against a threshold.
func (k Kind) Numeric() bool { return k == KindInt || k == KindFloat }

// Column is a named, typed, read-only vector of cells.
type Column struct {
	Name string
	Kind Kind

	raw []string
	num []float64 // NaN where missing or not numeric
}

// Len returns the number of cells.
func (c *Column) Len() int { return len(c.raw) }

// String returns the cell as read from the source (trimmed); missing cells are "".
func (c *Column) String(row int) string { return c.raw[row] }

// Missing reports whether the cell is empty or holds a missing-value token.
func (c *Column) Missing(row int) bool { return isMissing(c.raw[row]) }

// Float returns the numeric value at row. ok is false for missing cells,
// non-finite values and non-numeric columns.
func (c *Column) Float(row int) (v float64, ok bool) {
	if !c.Kind.Numeric() {
		return 0, false
	}
	v = c.num[row]
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Stats summarizes the non-missing numeric values of a column.
type Stats struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	Median float64
}

// Stats computes summary statistics. Non-numeric or empty columns yield a zero
// Count and NaN statistics.
func (c *Column) Stats() Stats {
	nan := math.NaN()
	st := Stats{Min: nan, Max: nan, Mean: nan, Median: nan}
	if !c.Kind.Numeric() {
		return st
	}
	vals := make([]float64, 0, len(c.num))
	for _, v := range c.num {
		if !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return st
	}
	sort.Float64s(vals)
	var sum float64
	for _, v := range vals {
		sum += v
	}
	st.Count = len(vals)
	st.Min = vals[0]
	st.Max = vals[len(vals)-1]
	st.Mean = sum / float64(len(vals))
	st.Median = quantile(vals, 0.5)
	return st
}

// Table is an in-memory dataset: ordered rows of named, typed columns.
type Table struct {
	Name  string
	Notes []string

	cols  []*Column
	index map[string]int
	rows  int
}

func newTable(name string, cols []*Column, rows int) *Table {
	t := &Table{Name: name, cols: cols, rows: rows, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		t.index[c.Name] = i
	}
	return t
}

// Rows returns the number of rows.
func (t *Table) Rows() int { return t.rows }

// Columns returns the columns in source order.
func (t *Table) Columns() []*Column { return t.cols }

// Column looks up a column by exact name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// ColumnNames returns column names in source order.
func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name
	}
	return out
}

// Cell returns the source text at (row, col).
func (t *Table) Cell(row, col int) string { return t.cols[col].raw[row] }

// Head returns a table with at most the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > t.rows {
		n = t.rows
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return t.Select(idx)
}

// Select returns a table holding the given rows, in the given order. Column
// kinds are carried over unchanged.
func (t *Table) Select(rows []int) *Table {
	cols := make([]*Column, len(t.cols))
	for j, c := range t.cols {
		nc := &Column{Name: c.Name, Kind: c.Kind, raw: make([]string, len(rows)), num: make([]float64, len(rows))}
		for i, r := range rows {
			nc.raw[i] = c.raw[r]
			nc.num[i] = c.num[r]
		}
		cols[j] = nc
	}
	return newTable(t.Name, cols, len(rows))
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

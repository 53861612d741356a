// Package display is the boundary between the explorer pipeline and whatever
// presents its output: a terminal, a file, or the HTTP dashboard.
package display

import (
	"math"
	"strconv"

	"github.com/KaramelBytes/healthscope/internal/dataset"
	"github.com/KaramelBytes/healthscope/internal/plot"
)

// Sink receives display artifacts in page order. Emission calls have no
// return value; a sink that can fail reports it through its own accessor.
type Sink interface {
	Text(markdown string)
	Table(g Grid)
	Slider(s Slider)
	Plot(f *plot.Figure)
}

// Grid is a rendered table: header plus string cells.
type Grid struct {
	Columns []string   `json:"columns" msgpack:"columns"`
	Rows    [][]string `json:"rows" msgpack:"rows"`
}

// GridFromTable copies a dataset table into a Grid.
func GridFromTable(t *dataset.Table) Grid {
	g := Grid{Columns: t.ColumnNames(), Rows: make([][]string, t.Rows())}
	for i := range g.Rows {
		row := make([]string, len(g.Columns))
		for j := range row {
			row[j] = t.Cell(i, j)
		}
		g.Rows[i] = row
	}
	return g
}

// Slider describes a numeric range control.
type Slider struct {
	Label   string  `json:"label" msgpack:"label"`
	Min     float64 `json:"min" msgpack:"min"`
	Max     float64 `json:"max" msgpack:"max"`
	Default float64 `json:"default" msgpack:"default"`
	Value   float64 `json:"value" msgpack:"value"`
}

// FormatFloat renders v the way Python's str(float) does: integral values keep
// a trailing ".0" and very large or small magnitudes switch to exponent form.
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v == math.Trunc(v) {
		s += ".0"
	}
	return s
}

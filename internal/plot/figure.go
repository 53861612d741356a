// Package plot builds plotly.js-compatible figure descriptions.
package plot

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/healthscope/internal/dataset"
)

// Figure is a plotly.js figure: traces plus layout. It marshals to the JSON
// shape Plotly.newPlot expects.
type Figure struct {
	Data   []Trace `json:"data" msgpack:"data"`
	Layout Layout  `json:"layout" msgpack:"layout"`
}

// Trace is one series of points.
type Trace struct {
	Type        string `json:"type" msgpack:"type"`
	Mode        string `json:"mode" msgpack:"mode"`
	Name        string `json:"name" msgpack:"name"`
	LegendGroup string `json:"legendgroup" msgpack:"legendgroup"`
	ShowLegend  bool   `json:"showlegend" msgpack:"showlegend"`
	X           []any  `json:"x" msgpack:"x"`
	Y           []any  `json:"y" msgpack:"y"`
}

type Text struct {
	Text string `json:"text" msgpack:"text"`
}

type Axis struct {
	Title Text `json:"title" msgpack:"title"`
}

type Legend struct {
	Title Text `json:"title" msgpack:"title"`
}

type Layout struct {
	Title  Text   `json:"title" msgpack:"title"`
	XAxis  Axis   `json:"xaxis" msgpack:"xaxis"`
	YAxis  Axis   `json:"yaxis" msgpack:"yaxis"`
	Legend Legend `json:"legend" msgpack:"legend"`
}

// Points returns the total number of points across traces.
func (f *Figure) Points() int {
	n := 0
	for _, t := range f.Data {
		n += len(t.Y)
	}
	return n
}

// MissingColumnsError lists the columns a chart needed but the table lacks.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing columns: %s", strings.Join(e.Columns, ", "))
}

// Scatter builds a marker scatter of y against x with one trace per distinct
// color value, in order of first appearance. Rows with a missing y or color
// value (any missing-value token, not only empty cells) are skipped.
func Scatter(t *dataset.Table, x, y, color, title string) (*Figure, error) {
	var missing []string
	cols := make([]*dataset.Column, 3)
	for i, name := range []string{x, y, color} {
		c, ok := t.Column(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		cols[i] = c
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}
	xc, yc, cc := cols[0], cols[1], cols[2]

	fig := &Figure{Layout: Layout{
		Title:  Text{Text: title},
		XAxis:  Axis{Title: Text{Text: x}},
		YAxis:  Axis{Title: Text{Text: y}},
		Legend: Legend{Title: Text{Text: color}},
	}}
	byGroup := map[string]int{}
	for row := 0; row < t.Rows(); row++ {
		yv := cellValue(yc, row)
		if yv == nil || cc.Missing(row) {
			continue
		}
		key := cc.String(row)
		idx, ok := byGroup[key]
		if !ok {
			idx = len(fig.Data)
			byGroup[key] = idx
			fig.Data = append(fig.Data, Trace{
				Type:        "scatter",
				Mode:        "markers",
				Name:        key,
				LegendGroup: key,
				ShowLegend:  true,
			})
		}
		tr := &fig.Data[idx]
		tr.X = append(tr.X, cellValue(xc, row))
		tr.Y = append(tr.Y, yv)
	}
	return fig, nil
}

// cellValue returns a float64 for numeric cells, the source text otherwise, and
// nil when the cell is missing.
func cellValue(c *dataset.Column, row int) any {
	if c.Kind.Numeric() {
		if v, ok := c.Float(row); ok {
			return v
		}
		return nil
	}
	if c.Missing(row) {
		return nil
	}
	return c.String(row)
}

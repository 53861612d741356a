package explorer

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/healthscope/internal/dataset"
	"github.com/KaramelBytes/healthscope/internal/display"
)

// FilterState is the threshold control: bounded to the column's range and
// starting at its median.
type FilterState struct {
	Column  string  `json:"column" msgpack:"column"`
	Min     float64 `json:"min" msgpack:"min"`
	Max     float64 `json:"max" msgpack:"max"`
	Default float64 `json:"default" msgpack:"default"`
	Value   float64 `json:"value" msgpack:"value"`
}

// NewFilterState derives bounds and default from the column's statistics.
func NewFilterState(t *dataset.Table, column string) (FilterState, error) {
	c, ok := t.Column(column)
	if !ok {
		return FilterState{}, fmt.Errorf("column %q not found", column)
	}
	st := c.Stats()
	if st.Count == 0 {
		return FilterState{}, fmt.Errorf("column %q has no numeric values", column)
	}
	return FilterState{Column: column, Min: st.Min, Max: st.Max, Default: st.Median, Value: st.Median}, nil
}

// Clamp bounds v to [Min, Max].
func (f FilterState) Clamp(v float64) float64 {
	return math.Max(f.Min, math.Min(f.Max, v))
}

// Label is the slider caption.
func (f FilterState) Label() string { return fmt.Sprintf("Minimum `%s` Filter", f.Column) }

// Slider renders the state as a slider control.
func (f FilterState) Slider() display.Slider {
	return display.Slider{Label: f.Label(), Min: f.Min, Max: f.Max, Default: f.Default, Value: f.Value}
}

// Apply returns the rows whose value in column is strictly greater than
// threshold. Missing values never pass.
func Apply(t *dataset.Table, column string, threshold float64) (*dataset.Table, error) {
	c, ok := t.Column(column)
	if !ok {
		return nil, fmt.Errorf("column %q not found", column)
	}
	if !c.Kind.Numeric() {
		return nil, fmt.Errorf("column %q is %s, not numeric", column, c.Kind)
	}
	var keep []int
	for row := 0; row < t.Rows(); row++ {
		if v, ok := c.Float(row); ok && v > threshold {
			keep = append(keep, row)
		}
	}
	return t.Select(keep), nil
}

package display

import "github.com/KaramelBytes/healthscope/internal/plot"

// Kind names an emission type on the wire.
type Kind string

const (
	KindText   Kind = "text"
	KindTable  Kind = "table"
	KindSlider Kind = "slider"
	KindPlot   Kind = "plot"
)

// Emission is one recorded display call.
type Emission struct {
	Kind   Kind         `json:"kind" msgpack:"kind"`
	Text   string       `json:"text,omitempty" msgpack:"text,omitempty"`
	Table  *Grid        `json:"table,omitempty" msgpack:"table,omitempty"`
	Slider *Slider      `json:"slider,omitempty" msgpack:"slider,omitempty"`
	Figure *plot.Figure `json:"figure,omitempty" msgpack:"figure,omitempty"`
}

// Recorder is a Sink that keeps every emission in order.
type Recorder struct {
	Emissions []Emission
}

func (r *Recorder) Text(markdown string) {
	r.Emissions = append(r.Emissions, Emission{Kind: KindText, Text: markdown})
}

func (r *Recorder) Table(g Grid) {
	r.Emissions = append(r.Emissions, Emission{Kind: KindTable, Table: &g})
}

func (r *Recorder) Slider(s Slider) {
	r.Emissions = append(r.Emissions, Emission{Kind: KindSlider, Slider: &s})
}

func (r *Recorder) Plot(f *plot.Figure) {
	r.Emissions = append(r.Emissions, Emission{Kind: KindPlot, Figure: f})
}

// Texts returns the text emissions only.
func (r *Recorder) Texts() []string {
	var out []string
	for _, e := range r.Emissions {
		if e.Kind == KindText {
			out = append(out, e.Text)
		}
	}
	return out
}

// Count returns how many emissions of kind k were recorded.
func (r *Recorder) Count(k Kind) int {
	n := 0
	for _, e := range r.Emissions {
		if e.Kind == k {
			n++
		}
	}
	return n
}

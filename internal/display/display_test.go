package display

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/KaramelBytes/healthscope/internal/dataset"
	"github.com/KaramelBytes/healthscope/internal/plot"
)

func TestFormatFloat(t *testing.T) {
	cases := map[float64]string{
		12:        "12.0",
		12.5:      "12.5",
		-3:        "-3.0",
		0:         "0.0",
		2000000:   "2000000.0",
		0.00001:   "1e-05",
		1e16:      "1e+16",
		0.1 + 0.2: "0.30000000000000004",
	}
	for in, want := range cases {
		if got := FormatFloat(in); got != want {
			t.Errorf("FormatFloat(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestGridFromTable(t *testing.T) {
	tbl, err := dataset.FromRecords("t", []string{"a", "b"}, [][]string{{"1", "x"}, {"2", ""}}, dataset.DefaultOptions())
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	g := GridFromTable(tbl)
	if len(g.Columns) != 2 || len(g.Rows) != 2 || g.Rows[1][0] != "2" || g.Rows[1][1] != "" {
		t.Fatalf("grid = %#v", g)
	}
}

func TestMarkdownSink(t *testing.T) {
	var buf bytes.Buffer
	dir := t.TempDir()
	m := NewMarkdown(&buf).WithPlotDir(dir)
	m.Text("# Title")
	m.Table(Grid{Columns: []string{"Column Name", "Data | Type"}, Rows: [][]string{{"year", "int64"}, {"note", strings.Repeat("z", 100)}}})
	m.Slider(Slider{Label: "Minimum `gdp` Filter", Min: 1, Max: 9, Default: 4, Value: 5.5})
	m.Plot(&plot.Figure{
		Data:   []plot.Trace{{Name: "Chad", Y: []any{1.0, 2.0}}},
		Layout: plot.Layout{Title: plot.Text{Text: "Gdp Over Time"}},
	})
	if err := m.Err(); err != nil {
		t.Fatalf("sink error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"# Title\n\n",
		"| Column Name | Data / Type |\n| --- | --- |\n| year | int64 |",
		strings.Repeat("z", 77) + "...",
		"🎚️ Minimum `gdp` Filter: **5.5** (range 1.0 to 9.0, default 4.0)",
		"📈 Gdp Over Time",
		"(1 traces, 2 points)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("markdown missing %q:\n%s", want, out)
		}
	}
	files := m.FigureFiles()
	if len(files) != 1 {
		t.Fatalf("figure files = %v", files)
	}
	b, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatalf("read figure: %v", err)
	}
	var fig plot.Figure
	if err := json.Unmarshal(b, &fig); err != nil || fig.Layout.Title.Text != "Gdp Over Time" {
		t.Fatalf("figure file = %s (%v)", b, err)
	}
}

func TestMarkdownEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	NewMarkdown(&buf).Table(Grid{Columns: []string{"a"}})
	if !strings.Contains(buf.String(), "_(no rows)_") {
		t.Fatalf("expected empty marker: %s", buf.String())
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Text("a")
	r.Slider(Slider{Label: "s"})
	r.Text("b")
	r.Plot(&plot.Figure{})
	if got := r.Texts(); len(got) != 2 || got[1] != "b" {
		t.Fatalf("texts = %v", got)
	}
	if r.Count(KindSlider) != 1 || r.Count(KindPlot) != 1 || r.Count(KindTable) != 0 {
		t.Fatalf("counts wrong: %#v", r.Emissions)
	}
}

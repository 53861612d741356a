package display

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/healthscope/internal/plot"
	"github.com/KaramelBytes/healthscope/internal/utils"
)

const maxCellRunes = 80

// Markdown writes emissions as a markdown document. Figures are summarized
// inline and, when a plot directory is set, saved as plotly JSON files.
type Markdown struct {
	w       io.Writer
	plotDir string
	plots   int
	written []string
	err     error
}

// NewMarkdown returns a sink writing to w.
func NewMarkdown(w io.Writer) *Markdown {
	return &Markdown{w: w}
}

// WithPlotDir makes Plot save each figure as figure-NN.json under dir.
func (m *Markdown) WithPlotDir(dir string) *Markdown {
	m.plotDir = dir
	return m
}

// Err returns the first write error, if any.
func (m *Markdown) Err() error { return m.err }

// FigureFiles lists figure files written so far.
func (m *Markdown) FigureFiles() []string { return m.written }

func (m *Markdown) printf(format string, args ...any) {
	if m.err != nil {
		return
	}
	_, m.err = fmt.Fprintf(m.w, format, args...)
}

func (m *Markdown) Text(markdown string) {
	m.printf("%s\n\n", markdown)
}

func (m *Markdown) Table(g Grid) {
	var b strings.Builder
	b.WriteString("| ")
	for i, c := range g.Columns {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeName(c))
	}
	b.WriteString(" |\n| ")
	for i := range g.Columns {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("---")
	}
	b.WriteString(" |\n")
	for _, row := range g.Rows {
		b.WriteString("| ")
		for i := range g.Columns {
			if i > 0 {
				b.WriteString(" | ")
			}
			val := ""
			if i < len(row) {
				val = row[i]
			}
			b.WriteString(safeVal(utils.Truncate(val, maxCellRunes)))
		}
		b.WriteString(" |\n")
	}
	if len(g.Rows) == 0 {
		b.WriteString("\n_(no rows)_\n")
	}
	m.printf("%s\n", b.String())
}

func (m *Markdown) Slider(s Slider) {
	m.printf("🎚️ %s: **%s** (range %s to %s, default %s)\n\n",
		s.Label, FormatFloat(s.Value), FormatFloat(s.Min), FormatFloat(s.Max), FormatFloat(s.Default))
}

func (m *Markdown) Plot(f *plot.Figure) {
	m.plots++
	m.printf("📈 %s: scatter of `%s` vs `%s` by `%s` (%d traces, %d points)\n\n",
		f.Layout.Title.Text, f.Layout.YAxis.Title.Text, f.Layout.XAxis.Title.Text,
		f.Layout.Legend.Title.Text, len(f.Data), f.Points())
	if m.plotDir == "" || m.err != nil {
		return
	}
	b, err := utils.PrettyJSON(f)
	if err != nil {
		m.err = err
		return
	}
	path := filepath.Join(m.plotDir, fmt.Sprintf("figure-%02d.json", m.plots))
	if err := utils.SafeWriteFile(path, b); err != nil {
		m.err = fmt.Errorf("write figure: %w", err)
		return
	}
	m.written = append(m.written, path)
	m.printf("Figure written to %s\n\n", path)
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return safeVal(s)
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

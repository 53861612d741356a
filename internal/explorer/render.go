package explorer

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/KaramelBytes/healthscope/internal/dataset"
	"github.com/KaramelBytes/healthscope/internal/display"
	"github.com/KaramelBytes/healthscope/internal/plot"
)

// PlotTitle turns "life_expectancy" into "Life Expectancy Over Time". A letter
// after an apostrophe starts a new word: "o'neil_index" gives "O'Neil Index".
func PlotTitle(column string) string {
	caser := cases.Title(language.English)
	parts := strings.Split(strings.ReplaceAll(column, "_", " "), "'")
	for i, p := range parts {
		parts[i] = caser.String(p)
	}
	return strings.Join(parts, "'") + " Over Time"
}

// Render emits a scatter of column against x, colored by color, or a warning
// naming the missing columns. It reports whether a plot was emitted.
func Render(sink display.Sink, view *dataset.Table, column, x, color string) (bool, error) {
	fig, err := plot.Scatter(view, x, column, color, PlotTitle(column))
	var mce *plot.MissingColumnsError
	if errors.As(err, &mce) {
		sink.Text(missingColumnsWarning(x, column, color, mce.Columns))
		return false, nil
	}
	if err != nil {
		return false, err
	}
	sink.Plot(fig)
	return true, nil
}

func missingColumnsWarning(x, column, color string, missing []string) string {
	quoted := make([]string, len(missing))
	for i, m := range missing {
		quoted[i] = "`" + m + "`"
	}
	return fmt.Sprintf("⚠️ Columns `%s`, `%s`, or `%s` not found for plotting. Missing: %s.",
		x, column, color, strings.Join(quoted, ", "))
}

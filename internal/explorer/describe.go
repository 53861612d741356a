package explorer

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/KaramelBytes/healthscope/internal/dataset"
	"github.com/KaramelBytes/healthscope/internal/display"
)

var numbers = message.NewPrinter(language.English)

// ShapeLine is the row/column summary, e.g. "Loaded 1,204 rows × 12 columns".
func ShapeLine(t *dataset.Table) string {
	return numbers.Sprintf("### ✅ Loaded %d rows × %d columns", t.Rows(), len(t.Columns()))
}

// Describe emits the shape line, a column/type table and a preview of the
// first previewRows rows.
func Describe(sink display.Sink, t *dataset.Table, previewRows int) {
	sink.Text(ShapeLine(t))
	types := display.Grid{Columns: []string{"Column Name", "Data Type"}}
	for _, c := range t.Columns() {
		types.Rows = append(types.Rows, []string{c.Name, string(c.Kind)})
	}
	sink.Table(types)
	for _, n := range t.Notes {
		sink.Text("⚠️ " + n)
	}
	sink.Text(fmt.Sprintf("## 🔍 Preview: First %d Rows", previewRows))
	sink.Table(display.GridFromTable(t.Head(previewRows)))
}

package explorer

import "github.com/KaramelBytes/healthscope/internal/dataset"

// Options configures one explorer page.
type Options struct {
	Path        string
	Load        dataset.Options
	Title       string
	Description string
	// XColumn is plotted on the x axis and never auto-selected for filtering.
	XColumn     string
	ColorColumn string
	PreviewRows int
}

// DefaultOptions returns the Global Health Explorer page.
func DefaultOptions() Options {
	return Options{
		Path:        "data/world_health_data.csv",
		Load:        dataset.DefaultOptions(),
		Title:       "🌍 Global Health Explorer",
		Description: "Explore global health indicators across countries and years using filters and visualizations.",
		XColumn:     "year",
		ColorColumn: "country",
		PreviewRows: 10,
	}
}

package explorer

import "github.com/KaramelBytes/healthscope/internal/dataset"

// SelectColumn returns the first numeric column in column order, passing over
// names in skip. A skipped numeric column is still returned when it is the
// only numeric column.
func SelectColumn(t *dataset.Table, skip ...string) (string, error) {
	fallback := ""
	for _, c := range t.Columns() {
		if !c.Kind.Numeric() {
			continue
		}
		if contains(skip, c.Name) {
			if fallback == "" {
				fallback = c.Name
			}
			continue
		}
		return c.Name, nil
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", ErrNoNumericColumn
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v != "" && v == s {
			return true
		}
	}
	return false
}

package dataset

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Options controls how a dataset is read.
type Options struct {
	// Delimiter for CSV. If 0, chosen from the file extension (',' or '\t').
	Delimiter rune
	// Numeric parsing locale. Zero values mean plain float syntax.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// MaxRows limits rows kept; 0 means unlimited.
	MaxRows int
	// SheetName selects an XLSX sheet; empty means the first sheet.
	SheetName string
}

// DefaultOptions returns reasonable defaults for loading a dataset.
func DefaultOptions() Options {
	return Options{}
}

// ErrNoColumns is returned for inputs without a header row.
var ErrNoColumns = errors.New("no columns to parse from file")

// Reader loads one file format into a Table.
type Reader interface {
	CanRead(path string) bool
	Read(ctx context.Context, path string, opt Options) (*Table, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

func init() {
	Register(xlsxReader{})
	Register(csvReader{})
}

// Load picks a reader by file name and loads the dataset. Unknown extensions
// are read as CSV.
func Load(ctx context.Context, path string, opt Options) (*Table, error) {
	for _, r := range registry {
		if r.CanRead(path) {
			return r.Read(ctx, path, opt)
		}
	}
	return csvReader{}.Read(ctx, path, opt)
}

// FromRecords builds a Table from a header and string rows, inferring column
// kinds. Rows shorter than the header are padded with missing cells.
func FromRecords(name string, header []string, rows [][]string, opt Options) (*Table, error) {
	if len(header) == 0 {
		return nil, ErrNoColumns
	}
	names := columnNames(header)
	ncol := len(names)
	cols := make([]*Column, ncol)
	for j := range cols {
		cols[j] = &Column{Name: names[j], raw: make([]string, len(rows))}
	}
	for i, rec := range rows {
		if len(rec) > ncol {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", i+1, len(rec), ncol)
		}
		for j := 0; j < ncol; j++ {
			if j < len(rec) {
				cols[j].raw[i] = strings.TrimSpace(rec[j])
			}
		}
	}
	for _, c := range cols {
		inferColumn(c, opt)
	}
	return newTable(name, cols, len(rows)), nil
}

// columnNames fills blank headers and de-duplicates repeats:
// "Unnamed: 3", "value", "value.1".
func columnNames(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	counts := make(map[string]int)
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if seen[name] {
			base := name
			for {
				counts[base]++
				cand := fmt.Sprintf("%s.%d", base, counts[base])
				if !seen[cand] {
					name = cand
					break
				}
			}
		}
		seen[name] = true
		out[i] = name
	}
	return out
}

var missingTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "NAN": {},
	"null": {}, "NULL": {}, "None": {}, "#N/A": {}, "<NA>": {},
}

func isMissing(v string) bool {
	_, ok := missingTokens[v]
	return ok
}

// inferColumn decides the column kind by requiring every non-missing value to
// parse as that kind, then fills the numeric cache.
func inferColumn(c *Column, opt Options) {
	var present, ints, floats, bools, times int
	missing := false
	for _, v := range c.raw {
		if isMissing(v) {
			missing = true
			continue
		}
		present++
		if _, ok := parseInt(v, opt); ok {
			ints++
		}
		if _, ok := parseNumeric(v, opt); ok {
			floats++
			continue
		}
		if strings.EqualFold(v, "true") || strings.EqualFold(v, "false") {
			bools++
			continue
		}
		if _, ok := parseTimeMaybe(v); ok {
			times++
		}
	}
	switch {
	case present == 0:
		c.Kind = KindObject
	case ints == present && !missing:
		c.Kind = KindInt
	case floats == present:
		c.Kind = KindFloat
	case bools == present:
		c.Kind = KindBool
	case times == present:
		c.Kind = KindDatetime
	default:
		c.Kind = KindObject
	}
	c.num = make([]float64, len(c.raw))
	for i, v := range c.raw {
		c.num[i] = math.NaN()
		if !c.Kind.Numeric() || isMissing(v) {
			continue
		}
		// inf and overflowing values stay as text but count as missing numbers.
		if x, ok := parseNumeric(v, opt); ok && !math.IsInf(x, 0) {
			c.num[i] = x
		}
	}
}

func parseInt(s string, opt Options) (int64, bool) {
	raw := normalizeNumber(s, opt)
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseNumeric(s string, opt Options) (float64, bool) {
	raw := normalizeNumber(s, opt)
	if raw == "" || strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") || strings.Contains(raw, "_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		var ne *strconv.NumError
		if errors.As(err, &ne) && errors.Is(ne.Err, strconv.ErrRange) {
			return f, true
		}
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// normalizeNumber strips the configured thousands separator and rewrites the
// configured decimal separator to '.'.
func normalizeNumber(s string, opt Options) string {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00A0", " "))
	dec, thou := opt.DecimalSeparator, opt.ThousandsSeparator
	if thou != 0 && thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != 0 && dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	return raw
}

func parseTimeMaybe(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
		"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func baseName(path string) string { return filepath.Base(path) }

package cmd

import (
	"fmt"
	"strings"

	cfgpkg "github.com/KaramelBytes/healthscope/internal/config"
	"github.com/KaramelBytes/healthscope/internal/dataset"
	"github.com/KaramelBytes/healthscope/internal/explorer"
)

// explorerOptions turns the effective configuration into page options.
func explorerOptions(c cfgpkg.Global) (explorer.Options, error) {
	opt := explorer.DefaultOptions()
	opt.Path = c.DataPath
	opt.Title = c.Title
	opt.Description = c.Description
	if c.XColumn != "" {
		opt.XColumn = c.XColumn
	}
	if c.ColorColumn != "" {
		opt.ColorColumn = c.ColorColumn
	}
	if c.PreviewRows > 0 {
		opt.PreviewRows = c.PreviewRows
	}
	load, err := loadOptions(c)
	if err != nil {
		return explorer.Options{}, err
	}
	opt.Load = load
	return opt, nil
}

func loadOptions(c cfgpkg.Global) (dataset.Options, error) {
	opt := dataset.DefaultOptions()
	var err error
	if opt.Delimiter, err = parseDelimiter(c.Delimiter); err != nil {
		return opt, err
	}
	if opt.DecimalSeparator, err = parseDecimal(c.DecimalSeparator); err != nil {
		return opt, err
	}
	if opt.ThousandsSeparator, err = parseThousands(c.ThousandsSeparator); err != nil {
		return opt, err
	}
	if c.MaxRows < 0 {
		return opt, fmt.Errorf("invalid max_rows: %d", c.MaxRows)
	}
	opt.MaxRows = c.MaxRows
	opt.SheetName = c.SheetName
	return opt, nil
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case "\t", "\\t", "tab":
		return '\t', nil
	case ";", "semicolon":
		return ';', nil
	case "|", "pipe":
		return '|', nil
	default:
		return 0, fmt.Errorf("unsupported delimiter: %s (use ','|';'|'tab'|'|')", s)
	}
}

func parseDecimal(s string) (rune, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case ".", "dot":
		return '.', nil
	default:
		return 0, fmt.Errorf("unsupported decimal separator: %s (use '.'|'comma')", s)
	}
}

func parseThousands(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case ".", "dot":
		return '.', nil
	case "space", " ":
		return ' ', nil
	default:
		return 0, fmt.Errorf("unsupported thousands separator: %s (use ','|'.'|'space')", s)
	}
}

package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

type csvReader struct{}

func (csvReader) CanRead(path string) bool {
	name := strings.ToLower(path)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".txt")
}

func (csvReader) Read(ctx context.Context, path string, opt Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	return ReadCSV(ctx, f, baseName(path), delim, opt)
}

// ReadCSV parses delimited text with a header row into a Table.
func ReadCSV(ctx context.Context, in io.Reader, name string, delim rune, opt Options) (*Table, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = delim
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoColumns
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	maxRows := opt.MaxRows
	var rows [][]string
	total := 0
	for {
		if total%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", total+1, err)
		}
		total++
		if blankRecord(rec) {
			total--
			continue
		}
		if maxRows > 0 && len(rows) >= maxRows {
			continue
		}
		rows = append(rows, rec)
	}
	t, err := FromRecords(name, header, rows, opt)
	if err != nil {
		return nil, err
	}
	if len(rows) < total {
		t.Notes = append(t.Notes, fmt.Sprintf("processed only %d/%d rows due to max_rows", len(rows), total))
	}
	return t, nil
}

// blankRecord matches lines that are skipped entirely (a single empty field).
func blankRecord(rec []string) bool {
	return len(rec) == 1 && strings.TrimSpace(rec[0]) == ""
}

func sniffDelimiter(path string) rune {
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".tsv") {
		return '\t'
	}
	// Filename heuristic only; the input may be a stream that cannot be read twice.
	return ','
}

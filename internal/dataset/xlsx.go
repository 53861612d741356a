package dataset

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strconv"
	"strings"
)

type xlsxReader struct{}

func (xlsxReader) CanRead(p string) bool {
	return strings.HasSuffix(strings.ToLower(p), ".xlsx")
}

// Read loads the sheet named by opt.SheetName, or the first sheet of the workbook.
func (xlsxReader) Read(ctx context.Context, p string, opt Options) (*Table, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	sheets, err := readSheetList(zr)
	if err != nil {
		return nil, err
	}
	rels, err := readRelationships(zr)
	if err != nil {
		return nil, err
	}
	shared, err := readSharedStrings(zr)
	if err != nil {
		return nil, err
	}

	target := ""
	if opt.SheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s.Name, opt.SheetName) {
				if rel, ok := rels[s.RID]; ok {
					target = normalizeRelPath(rel)
				}
				break
			}
		}
		if target == "" {
			names := make([]string, len(sheets))
			for i, s := range sheets {
				names[i] = s.Name
			}
			return nil, fmt.Errorf("sheet '%s' not found in workbook '%s' (available: %s)",
				opt.SheetName, baseName(p), strings.Join(names, ", "))
		}
	} else if len(sheets) > 0 {
		if rel, ok := rels[sheets[0].RID]; ok {
			target = normalizeRelPath(rel)
		}
	}
	if target == "" {
		target = "xl/worksheets/sheet1.xml"
	}
	sheetXML, err := fs.ReadFile(zr, target)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: worksheet %s: %w", target, err)
	}

	rr := newSheetRowReader(sheetXML, shared)
	header, ok := rr.Next()
	if !ok || len(header) == 0 {
		return nil, ErrNoColumns
	}
	header = trimTrailingEmpty(header)
	var rows [][]string
	total := 0
	for {
		if total%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row, ok := rr.Next()
		if !ok {
			break
		}
		row = trimTrailingEmpty(row)
		if len(row) == 0 {
			continue
		}
		total++
		if opt.MaxRows > 0 && len(rows) >= opt.MaxRows {
			continue
		}
		rows = append(rows, row)
	}
	if rr.err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", rr.err)
	}
	t, err := FromRecords(baseName(p), header, rows, opt)
	if err != nil {
		return nil, err
	}
	if len(rows) < total {
		t.Notes = append(t.Notes, fmt.Sprintf("processed only %d/%d rows due to max_rows", len(rows), total))
	}
	return t, nil
}

func trimTrailingEmpty(row []string) []string {
	n := len(row)
	for n > 0 && strings.TrimSpace(row[n-1]) == "" {
		n--
	}
	return row[:n]
}

// readPart unmarshals an optional workbook part; a missing part leaves v empty.
func readPart(zr *zip.Reader, name string, v any) error {
	b, err := fs.ReadFile(zr, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open xlsx %s: %w", name, err)
	}
	if err := xml.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parse xlsx %s: %w", name, err)
	}
	return nil
}

type sheetEntry struct {
	Name string `xml:"name,attr"`
	RID  string `xml:"id,attr"`
}

func readSheetList(zr *zip.Reader) ([]sheetEntry, error) {
	var wb struct {
		Sheets []sheetEntry `xml:"sheets>sheet"`
	}
	err := readPart(zr, "xl/workbook.xml", &wb)
	return wb.Sheets, err
}

// readRelationships maps relationship ids to their targets.
func readRelationships(zr *zip.Reader) (map[string]string, error) {
	var doc struct {
		Rels []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	if err := readPart(zr, "xl/_rels/workbook.xml.rels", &doc); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(doc.Rels))
	for _, r := range doc.Rels {
		if r.ID != "" && r.Target != "" {
			out[r.ID] = r.Target
		}
	}
	return out, nil
}

// richText is a string item or inline string: plain <t> or rich-text runs.
type richText struct {
	T    string `xml:"t"`
	Runs []struct {
		T string `xml:"t"`
	} `xml:"r"`
}

func (rt richText) String() string {
	if len(rt.Runs) == 0 {
		return rt.T
	}
	var b strings.Builder
	b.WriteString(rt.T)
	for _, r := range rt.Runs {
		b.WriteString(r.T)
	}
	return b.String()
}

func readSharedStrings(zr *zip.Reader) ([]string, error) {
	var sst struct {
		Items []richText `xml:"si"`
	}
	if err := readPart(zr, "xl/sharedStrings.xml", &sst); err != nil {
		return nil, err
	}
	out := make([]string, len(sst.Items))
	for i, it := range sst.Items {
		out[i] = it.String()
	}
	return out, nil
}

type sheetCell struct {
	Ref    string   `xml:"r,attr"`
	Type   string   `xml:"t,attr"`
	Value  string   `xml:"v"`
	Inline richText `xml:"is"`
}

// sheetRowReader streams <row> elements of a worksheet as string slices.
type sheetRowReader struct {
	dec    *xml.Decoder
	shared []string
	err    error
}

func newSheetRowReader(data []byte, shared []string) *sheetRowReader {
	return &sheetRowReader{dec: xml.NewDecoder(bytes.NewReader(data)), shared: shared}
}

func (r *sheetRowReader) Next() ([]string, bool) {
	for {
		tok, err := r.dec.Token()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				r.err = err
			}
			return nil, false
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "row" {
			continue
		}
		var row struct {
			Cells []sheetCell `xml:"c"`
		}
		if err := r.dec.DecodeElement(&row, &se); err != nil {
			r.err = err
			return nil, false
		}
		var cur []string
		for _, c := range row.Cells {
			idx := len(cur)
			if c.Ref != "" {
				idx = colIndexFromRef(c.Ref)
			}
			if idx < 0 {
				continue
			}
			for len(cur) <= idx {
				cur = append(cur, "")
			}
			cur[idx] = r.cellText(c)
		}
		return cur, true
	}
}

func (r *sheetRowReader) cellText(c sheetCell) string {
	switch c.Type {
	case "s":
		idx, err := strconv.Atoi(strings.TrimSpace(c.Value))
		if err != nil || idx < 0 || idx >= len(r.shared) {
			return ""
		}
		return r.shared[idx]
	case "inlineStr":
		return c.Inline.String()
	case "b":
		if c.Value == "1" {
			return "TRUE"
		}
		return "FALSE"
	}
	if c.Value == "" {
		return c.Inline.String()
	}
	return c.Value
}

// colIndexFromRef maps "C12" to 2; refs without letters map to -1.
func colIndexFromRef(ref string) int {
	idx := 0
	for _, ch := range strings.ToUpper(ref) {
		if ch < 'A' || ch > 'Z' {
			break
		}
		idx = idx*26 + int(ch-'A'+1)
	}
	return idx - 1
}

// normalizeRelPath converts relationship targets to ZIP entry names, which
// never carry a leading slash.
func normalizeRelPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return path.Join("xl", rel)
}

package dataset

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ReadXLSX loads the selected worksheet of an .xlsx workbook as a Table.
// The first row is the header. If no sheet is selected the first sheet is used.
func ReadXLSX(path string, opt ReadOptions) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	wb, err := openWorkbook(b)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	target, err := wb.resolve(opt.SheetName, opt.SheetIndex)
	if err != nil {
		return nil, fmt.Errorf("%w in workbook '%s'", err, filepath.Base(path))
	}
	data, err := wb.part(target)
	if err != nil {
		return nil, fmt.Errorf("worksheet %s missing from workbook '%s'", target, filepath.Base(path))
	}

	rows := &rowScanner{dec: xml.NewDecoder(bytes.NewReader(data)), shared: wb.shared}
	header, ok := rows.next()
	if !ok || len(header) == 0 {
		return nil, &SchemaError{Row: -1, Reason: "missing header row"}
	}
	tb, err := newTableBuilder(header, opt)
	if err != nil {
		return nil, err
	}
	for !tb.full() {
		row, ok := rows.next()
		if !ok {
			break
		}
		if err := tb.add(row); err != nil {
			return nil, err
		}
	}
	return tb.build()
}

// workbook is the part of an .xlsx package needed to locate and decode sheets.
type workbook struct {
	zr     *zip.Reader
	sheets []sheetEntry
	rels   map[string]string // relationship id -> target
	shared []string
}

type sheetEntry struct {
	Name string `xml:"name,attr"`
	ID   int    `xml:"sheetId,attr"`
	RID  string `xml:"id,attr"`
}

func openWorkbook(b []byte) (*workbook, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, err
	}
	wb := &workbook{zr: zr, rels: map[string]string{}}

	var doc struct {
		Sheets []sheetEntry `xml:"sheets>sheet"`
	}
	if err := wb.decode("xl/workbook.xml", &doc); err != nil {
		return nil, fmt.Errorf("workbook.xml: %w", err)
	}
	wb.sheets = doc.Sheets

	var rels struct {
		Items []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	if err := wb.decode("xl/_rels/workbook.xml.rels", &rels); err != nil && !errors.Is(err, errPartMissing) {
		return nil, fmt.Errorf("workbook relationships: %w", err)
	}
	for _, r := range rels.Items {
		if r.ID != "" && r.Target != "" {
			wb.rels[r.ID] = r.Target
		}
	}

	var sst struct {
		Items []struct {
			T    string `xml:"t"`
			Runs []struct {
				T string `xml:"t"`
			} `xml:"r"`
		} `xml:"si"`
	}
	if err := wb.decode("xl/sharedStrings.xml", &sst); err != nil && !errors.Is(err, errPartMissing) {
		return nil, fmt.Errorf("shared strings: %w", err)
	}
	for _, si := range sst.Items {
		// rich text is stored as runs
		s := si.T
		for _, r := range si.Runs {
			s += r.T
		}
		wb.shared = append(wb.shared, s)
	}
	return wb, nil
}

var errPartMissing = errors.New("part not found")

// part returns the raw bytes of a package entry.
func (wb *workbook) part(name string) ([]byte, error) {
	for _, f := range wb.zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%s: %w", name, errPartMissing)
}

func (wb *workbook) decode(name string, v any) error {
	b, err := wb.part(name)
	if err != nil {
		return err
	}
	return xml.Unmarshal(b, v)
}

// resolve maps a sheet name, or a 1-based sheetId when name is empty, to the
// zip entry of its worksheet.
func (wb *workbook) resolve(name string, index int) (string, error) {
	if name != "" {
		names := make([]string, len(wb.sheets))
		for i, s := range wb.sheets {
			names[i] = s.Name
			if strings.EqualFold(s.Name, name) {
				if rel, ok := wb.rels[s.RID]; ok {
					return normalizeRelPath(rel), nil
				}
			}
		}
		return "", fmt.Errorf("sheet '%s' not found (available: %s)", name, strings.Join(names, ", "))
	}
	if index <= 0 {
		index = 1
	}
	for _, s := range wb.sheets {
		if s.ID != index {
			continue
		}
		if rel, ok := wb.rels[s.RID]; ok {
			return normalizeRelPath(rel), nil
		}
	}
	return fmt.Sprintf("xl/worksheets/sheet%d.xml", index), nil
}

// rowScanner streams worksheet rows as raw cell strings, placing each cell at
// the column named by its reference so gaps stay empty.
type rowScanner struct {
	dec    *xml.Decoder
	shared []string
}

type xlsxCell struct {
	Ref    string `xml:"r,attr"`
	Type   string `xml:"t,attr"`
	V      string `xml:"v"`
	Inline string `xml:"is>t"`
}

func (s *rowScanner) next() ([]string, bool) {
	for {
		tok, err := s.dec.Token()
		if err != nil {
			return nil, false
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "row" {
			continue
		}
		var row struct {
			Cells []xlsxCell `xml:"c"`
		}
		if err := s.dec.DecodeElement(&row, &se); err != nil {
			return nil, false
		}
		var out []string
		for _, c := range row.Cells {
			col := colIndexFromRef(c.Ref)
			if col < 0 {
				col = len(out)
			}
			for len(out) <= col {
				out = append(out, "")
			}
			out[col] = s.value(c)
		}
		return out, true
	}
}

func (s *rowScanner) value(c xlsxCell) string {
	switch c.Type {
	case "s":
		idx, err := strconv.Atoi(strings.TrimSpace(c.V))
		if err != nil || idx < 0 || idx >= len(s.shared) {
			return ""
		}
		return s.shared[idx]
	case "inlineStr":
		return c.Inline
	}
	return c.V
}

// colIndexFromRef maps a cell reference like "C12" to a 0-based column index.
// It returns -1 when the reference carries no column letters.
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

// normalizeRelPath converts relationship targets such as "/xl/worksheets/sheet1.xml"
// or "worksheets/sheet1.xml" into ZIP entry names.
func normalizeRelPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return "xl/" + rel
}

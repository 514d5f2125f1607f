package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ReadOptions controls how raw cells are turned into values.
type ReadOptions struct {
	// Delimiter for CSV. If 0, chosen from the file extension (',' or '\t').
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune // optional; if 0, auto-detect common separators (',' '.' space)
	// MaxRows limits records read; 0 means unlimited.
	MaxRows int
	// SheetName and SheetIndex select the worksheet for .xlsx input.
	// SheetIndex is 1-based and used only when SheetName is empty.
	SheetName  string
	SheetIndex int
}

// ReadFile loads a table from disk, choosing the reader by extension.
func ReadFile(path string, opt ReadOptions) (*Table, error) {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".xlsx") {
		return ReadXLSX(path, opt)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	return ReadCSV(f, opt)
}

// ReadCSV parses a header row followed by records. Cells that parse as
// numbers become numeric values, empty cells are missing, the rest is text.
func ReadCSV(r io.Reader, opt ReadOptions) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &SchemaError{Row: -1, Reason: "missing header row"}
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	b, err := newTableBuilder(header, opt)
	if err != nil {
		return nil, err
	}
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", b.rows()+1, err)
		}
		if b.full() {
			break
		}
		if err := b.add(rec); err != nil {
			return nil, err
		}
	}
	return b.build()
}

// tableBuilder turns raw string rows into typed records.
type tableBuilder struct {
	columns []string
	opt     ReadOptions
	records []Record
}

func newTableBuilder(header []string, opt ReadOptions) (*tableBuilder, error) {
	cols := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			return nil, &SchemaError{Row: -1, Reason: fmt.Sprintf("empty column name at position %d", i+1)}
		}
		cols[i] = h
	}
	if len(cols) == 0 {
		return nil, &SchemaError{Row: -1, Reason: "header has no columns"}
	}
	return &tableBuilder{columns: cols, opt: opt}, nil
}

func (b *tableBuilder) rows() int { return len(b.records) }

func (b *tableBuilder) full() bool {
	return b.opt.MaxRows > 0 && len(b.records) >= b.opt.MaxRows
}

func (b *tableBuilder) add(raw []string) error {
	if len(raw) > len(b.columns) {
		for _, extra := range raw[len(b.columns):] {
			if strings.TrimSpace(extra) != "" {
				return &SchemaError{Row: len(b.records), Reason: fmt.Sprintf("row has %d fields, header has %d", len(raw), len(b.columns))}
			}
		}
	}
	rec := make(Record, len(b.columns))
	for j, c := range b.columns {
		var cell string
		if j < len(raw) {
			cell = raw[j]
		}
		rec[c] = parseCell(cell, b.opt)
	}
	b.records = append(b.records, rec)
	return nil
}

func (b *tableBuilder) build() (*Table, error) {
	return NewTable(b.columns, b.records)
}

func parseCell(s string, opt ReadOptions) Value {
	v := strings.TrimSpace(s)
	if v == "" {
		return Missing()
	}
	if x, ok := parseNumeric(v, opt); ok {
		return Number(x)
	}
	return Text(v)
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(filepath.Ext(path)), ".tsv") {
		return '\t'
	}
	return ','
}

func parseNumeric(s string, opt ReadOptions) (float64, bool) {
	raw := strings.ReplaceAll(s, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0 && cpos > dpos:
			dec, thou = ',', '.'
		case cpos >= 0 && dpos >= 0:
			dec, thou = '.', ','
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

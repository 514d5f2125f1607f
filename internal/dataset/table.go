package dataset

import (
	"math"
	"strconv"
)

// Kind classifies a cell value.
type Kind int

const (
	KindMissing Kind = iota
	KindNumber
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "missing"
	}
}

// Value is a single cell: a number, a text label, or missing.
type Value struct {
	Kind Kind
	Num  float64
	Text string
}

// Number returns a numeric value.
func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// Text returns a text value.
func Text(s string) Value { return Value{Kind: KindText, Text: s} }

// Missing returns an empty cell.
func Missing() Value { return Value{} }

func (v Value) IsMissing() bool { return v.Kind == KindMissing }
func (v Value) IsNumber() bool  { return v.Kind == KindNumber }

// Label renders the value as a categorical label. Numbers use the shortest
// decimal form, so 1.0 becomes "1".
func (v Value) Label() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindText:
		return v.Text
	default:
		return ""
	}
}

// isInteger reports whether the value is a number without a fractional part.
func (v Value) isInteger() bool {
	return v.Kind == KindNumber && v.Num == math.Trunc(v.Num) && !math.IsInf(v.Num, 0)
}

// Record maps attribute name to value.
type Record map[string]Value

func (r Record) clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an ordered sequence of records sharing one attribute set.
// A Table is never modified after construction; transforms return new tables.
type Table struct {
	columns []string
	index   map[string]int
	records []Record
}

// NewTable validates and copies columns and records into a Table.
// Every record must carry exactly the given columns.
func NewTable(columns []string, records []Record) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; dup {
			return nil, &SchemaError{Column: c, Row: -1, Reason: "duplicate column"}
		}
		index[c] = i
	}
	recs := make([]Record, len(records))
	for i, r := range records {
		if len(r) != len(columns) {
			for k := range r {
				if _, ok := index[k]; !ok {
					return nil, &SchemaError{Column: k, Row: i, Reason: "unexpected attribute"}
				}
			}
		}
		for _, c := range columns {
			if _, ok := r[c]; !ok {
				return nil, &SchemaError{Column: c, Row: i, Reason: "attribute missing from record"}
			}
		}
		recs[i] = r.clone()
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{columns: cols, index: index, records: recs}, nil
}

// Columns returns the ordered column names.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.records) }

// HasColumn reports whether the table has the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Record returns a copy of the i-th record.
func (t *Table) Record(i int) Record { return t.records[i].clone() }

// At returns the value of column name in row i.
func (t *Table) At(i int, name string) Value { return t.records[i][name] }

// Column returns the values of one column in row order.
func (t *Table) Column(name string) ([]Value, error) {
	if !t.HasColumn(name) {
		return nil, &SchemaError{Column: name, Row: -1, Reason: "column not found"}
	}
	out := make([]Value, len(t.records))
	for i, r := range t.records {
		out[i] = r[name]
	}
	return out, nil
}

package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var heartRows = []string{
	`"row.names",sbp,tobacco,ldl,adiposity,famhist,typea,obesity,alcohol,age,chd`,
	`1,160,12,5.73,23.11,Present,49,25.3,97.2,52,1`,
	`2,144,0.01,4.41,28.61,Absent,55,28.87,2.06,63,1`,
	`3,118,0.08,3.48,32.28,Present,52,29.14,3.81,46,0`,
	`4,170,7.5,6.41,38.03,Present,51,31.99,24.26,58,1`,
	`5,134,13.6,3.5,27.78,Present,60,25.99,57.34,49,1`,
	`6,132,6.2,6.47,36.21,Present,62,30.77,14.14,45,0`,
}

func TestReadCSV_TypesAndOrder(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(strings.Join(heartRows, "\n")), ReadOptions{})
	require.NoError(t, err)

	assert.Equal(t, 6, tbl.Len())
	assert.Equal(t, []string{"row.names", "sbp", "tobacco", "ldl", "adiposity", "famhist", "typea", "obesity", "alcohol", "age", "chd"}, tbl.Columns())

	v := tbl.At(0, "ldl")
	require.True(t, v.IsNumber())
	assert.InDelta(t, 5.73, v.Num, 1e-12)

	fam := tbl.At(1, "famhist")
	assert.Equal(t, KindText, fam.Kind)
	assert.Equal(t, "Absent", fam.Text)

	assert.Equal(t, "1", tbl.At(0, "chd").Label())
}

func TestReadCSV_MissingAndLocale(t *testing.T) {
	in := "a;b;c\n1,5;x;\n2.000,25;y;3\n"
	tbl, err := ReadCSV(strings.NewReader(in), ReadOptions{Delimiter: ';', DecimalSeparator: ',', ThousandsSeparator: '.'})
	require.NoError(t, err)

	assert.InDelta(t, 1.5, tbl.At(0, "a").Num, 1e-12)
	assert.InDelta(t, 2000.25, tbl.At(1, "a").Num, 1e-12)
	assert.True(t, tbl.At(0, "c").IsMissing())
	assert.Equal(t, 3.0, tbl.At(1, "c").Num)
}

func TestReadCSV_ShortRowsArePadded(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("a,b\n1\n"), ReadOptions{})
	require.NoError(t, err)
	assert.True(t, tbl.At(0, "b").IsMissing())
}

func TestReadCSV_SchemaErrors(t *testing.T) {
	cases := map[string]string{
		"empty input":      "",
		"duplicate column": "a,a\n1,2\n",
		"empty name":       "a,,c\n1,2,3\n",
		"long row":         "a,b\n1,2,3\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(in), ReadOptions{})
			var se *SchemaError
			require.True(t, errors.As(err, &se), "got %v", err)
		})
	}
}

func TestReadCSV_MaxRows(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(strings.Join(heartRows, "\n")), ReadOptions{MaxRows: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
}

func TestReadCSV_NonFiniteIsText(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("a\nNaN\nInf\n"), ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, KindText, tbl.At(0, "a").Kind)
	assert.Equal(t, KindText, tbl.At(1, "a").Kind)
}

func TestReadFile_TSV(t *testing.T) {
	p := filepath.Join(t.TempDir(), "data.tsv")
	require.NoError(t, os.WriteFile(p, []byte("x\ty\n1\t2\n3\t4\n"), 0o644))

	tbl, err := ReadFile(p, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, tbl.Columns())
	assert.Equal(t, 4.0, tbl.At(1, "y").Num)
}

func TestNewTable_Invariants(t *testing.T) {
	_, err := NewTable([]string{"a", "b"}, []Record{{"a": Number(1)}})
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "b", se.Column)
	assert.Equal(t, 0, se.Row)

	_, err = NewTable([]string{"a"}, []Record{{"a": Number(1), "z": Number(2)}})
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "z", se.Column)
}

func TestTable_RecordIsCopy(t *testing.T) {
	tbl, err := NewTable([]string{"a"}, []Record{{"a": Number(1)}})
	require.NoError(t, err)
	r := tbl.Record(0)
	r["a"] = Number(99)
	assert.Equal(t, 1.0, tbl.At(0, "a").Num)
}

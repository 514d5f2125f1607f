package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTable(t *testing.T, columns []string, rows ...[]Value) *Table {
	t.Helper()
	recs := make([]Record, len(rows))
	for i, row := range rows {
		r := Record{}
		for j, c := range columns {
			r[c] = row[j]
		}
		recs[i] = r
	}
	tbl, err := NewTable(columns, recs)
	require.NoError(t, err)
	return tbl
}

func numbers(t *testing.T, tbl *Table, column string) []float64 {
	t.Helper()
	vals, err := tbl.Column(column)
	require.NoError(t, err)
	out := make([]float64, len(vals))
	for i, v := range vals {
		require.True(t, v.IsNumber(), "row %d of %s is %s", i, column, v.Kind)
		out[i] = v.Num
	}
	return out
}

func TestClean_OneHotDropFirst(t *testing.T) {
	tbl := mustTable(t, []string{"smoker"},
		[]Value{Text("Yes")}, []Value{Text("No")}, []Value{Text("Yes")})

	out, err := Clean(tbl, CleanSpec{Encodings: []Encoding{{Column: "smoker", Rule: RuleOneHot, DropFirst: true}}})
	require.NoError(t, err)

	assert.Equal(t, []string{"smoker_Yes"}, out.Columns())
	assert.Equal(t, []float64{1, 0, 1}, numbers(t, out, "smoker_Yes"))
}

func TestClean_OneHotFullIsLexicographic(t *testing.T) {
	tbl := mustTable(t, []string{"id", "colour", "x"},
		[]Value{Number(1), Text("red"), Number(0.5)},
		[]Value{Number(2), Text("blue"), Number(1.5)},
		[]Value{Number(3), Text("green"), Number(2.5)},
	)
	spec := CleanSpec{Drop: []string{"id"}, Encodings: []Encoding{{Column: "colour", Rule: RuleOneHot}}}

	out, err := Clean(tbl, spec)
	require.NoError(t, err)
	assert.Equal(t, []string{"colour_blue", "colour_green", "colour_red", "x"}, out.Columns())
	assert.Equal(t, []float64{0, 1, 0}, numbers(t, out, "colour_blue"))
	assert.Equal(t, []float64{1, 0, 0}, numbers(t, out, "colour_red"))

	again, err := Clean(tbl, spec)
	require.NoError(t, err)
	assert.Equal(t, out.Columns(), again.Columns())

	// the source table is untouched
	assert.True(t, tbl.HasColumn("id"))
	assert.True(t, tbl.HasColumn("colour"))
}

func TestClean_BinaryDefaultsAndNaming(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(strings.Join(heartRows, "\n")), ReadOptions{})
	require.NoError(t, err)

	out, err := Clean(tbl, CleanSpec{
		Drop:      []string{"row.names"},
		Encodings: []Encoding{{Column: "famhist", Rule: RuleBinary, Name: "famhist_present"}},
	})
	require.NoError(t, err)

	assert.False(t, out.HasColumn("row.names"))
	assert.False(t, out.HasColumn("famhist"))
	assert.Equal(t, []float64{1, 0, 1, 1, 1, 1}, numbers(t, out, "famhist_present"))
	assert.Equal(t, "famhist_present", out.Columns()[4])
}

func TestClean_BinaryPositiveAndKeep(t *testing.T) {
	tbl := mustTable(t, []string{"f"}, []Value{Text("Present")}, []Value{Text("Absent")})
	out, err := Clean(tbl, CleanSpec{Encodings: []Encoding{{Column: "f", Rule: RuleBinary, Positive: "Absent", Keep: true}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"f", "f_Absent"}, out.Columns())
	assert.Equal(t, []float64{0, 1}, numbers(t, out, "f_Absent"))
	assert.Equal(t, "Present", out.At(0, "f").Text)
}

func TestClean_BinaryNumericLabels(t *testing.T) {
	tbl := mustTable(t, []string{"chd"}, []Value{Number(0)}, []Value{Number(1)}, []Value{Number(1)})
	out, err := Clean(tbl, CleanSpec{Encodings: []Encoding{{Column: "chd", Rule: RuleBinary}}})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 1}, numbers(t, out, "chd_1"))
}

func TestClean_Errors(t *testing.T) {
	tbl := mustTable(t, []string{"a", "b"},
		[]Value{Text("x"), Number(1)},
		[]Value{Text("y"), Number(2)},
		[]Value{Text("z"), Missing()},
	)

	t.Run("drop missing column", func(t *testing.T) {
		_, err := Clean(tbl, CleanSpec{Drop: []string{"nope"}})
		var se *SchemaError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "nope", se.Column)
	})
	t.Run("encode missing column", func(t *testing.T) {
		_, err := Clean(tbl, CleanSpec{Encodings: []Encoding{{Column: "nope", Rule: RuleOneHot}}})
		var se *SchemaError
		require.ErrorAs(t, err, &se)
	})
	t.Run("binary with three labels", func(t *testing.T) {
		_, err := Clean(tbl, CleanSpec{Encodings: []Encoding{{Column: "a", Rule: RuleBinary}}})
		var ee *EncodingError
		require.ErrorAs(t, err, &ee)
		assert.Equal(t, "a", ee.Column)
	})
	t.Run("label outside expected set", func(t *testing.T) {
		_, err := Clean(tbl, CleanSpec{Encodings: []Encoding{{Column: "a", Rule: RuleOneHot, Labels: []string{"x", "y"}}}})
		var ee *EncodingError
		require.ErrorAs(t, err, &ee)
		assert.Equal(t, "z", ee.Value)
		assert.Equal(t, 2, ee.Row)
	})
	t.Run("missing categorical value", func(t *testing.T) {
		_, err := Clean(tbl, CleanSpec{Encodings: []Encoding{{Column: "b", Rule: RuleOneHot}}})
		var ee *EncodingError
		require.ErrorAs(t, err, &ee)
	})
	t.Run("name collision", func(t *testing.T) {
		_, err := Clean(tbl, CleanSpec{Encodings: []Encoding{{Column: "a", Rule: RuleOneHot, Labels: []string{"x", "y", "z"}, Keep: true}}, Drop: nil})
		require.NoError(t, err)
		_, err = Clean(tbl, CleanSpec{Encodings: []Encoding{{Column: "a", Rule: RuleBinary, Labels: []string{"x", "y", "z"}}}})
		var ee *EncodingError
		require.ErrorAs(t, err, &ee)

		clash := mustTable(t, []string{"a", "a_x"}, []Value{Text("x"), Number(0)})
		_, err = Clean(clash, CleanSpec{Encodings: []Encoding{{Column: "a", Rule: RuleOneHot}}})
		var se *SchemaError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "a_x", se.Column)
	})
}

func TestParseRule(t *testing.T) {
	r, err := ParseRule("One-Hot")
	require.NoError(t, err)
	assert.Equal(t, RuleOneHot, r)
	_, err = ParseRule("ordinal")
	require.Error(t, err)
}

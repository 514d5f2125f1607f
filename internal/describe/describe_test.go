package describe

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilcphu/dtu-intro-to-ml-dm/internal/dataset"
)

const sample = `x,g,y,z
1,a,2,10
2,b,4,20
3,a,6,
4,,8,40
`

func sampleTable(t *testing.T) *dataset.Table {
	t.Helper()
	tbl, err := dataset.ReadCSV(strings.NewReader(sample), dataset.ReadOptions{})
	require.NoError(t, err)
	return tbl
}

func column(t *testing.T, rep *Report, name string) ColumnSummary {
	t.Helper()
	for _, c := range rep.Columns {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("column %s not in report", name)
	return ColumnSummary{}
}

func TestSummarize(t *testing.T) {
	opt := DefaultOptions()
	opt.GroupBy = "g"
	rep, err := Summarize(sampleTable(t), opt)
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Rows)
	require.Len(t, rep.Columns, 4)

	x := column(t, rep, "x")
	assert.Equal(t, KindNumeric, x.Kind)
	assert.Equal(t, 4, x.Count)
	require.NotNil(t, x.Numeric)
	assert.InDelta(t, 2.5, x.Numeric.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(5.0/3), x.Numeric.Std, 1e-12)
	assert.InDelta(t, 1.75, x.Numeric.Q25, 1e-12)
	assert.InDelta(t, 2.5, x.Numeric.Median, 1e-12)
	assert.InDelta(t, 3.25, x.Numeric.Q75, 1e-12)
	assert.Equal(t, 1.0, x.Numeric.Min)
	assert.Equal(t, 4.0, x.Numeric.Max)

	g := column(t, rep, "g")
	assert.Equal(t, KindCategorical, g.Kind)
	assert.Equal(t, 1, g.Missing)
	assert.Equal(t, 2, g.Unique)
	assert.Equal(t, CategoryCount{Value: "a", Count: 2}, g.TopValues[0])

	z := column(t, rep, "z")
	assert.Equal(t, 3, z.Count)
	assert.Equal(t, 1, z.Missing)

	require.NotNil(t, rep.Corr)
	assert.Equal(t, []string{"x", "y", "z"}, rep.Corr.Columns)
	assert.Equal(t, 3, rep.Corr.Rows)
	assert.InDelta(t, 1.0, rep.Corr.Values[0][1], 1e-12)
	assert.InDelta(t, rep.Corr.Values[0][2], rep.Corr.Values[2][0], 1e-12)
	assert.Contains(t, rep.Warnings, "correlations ignore 1 rows with missing values")

	require.Len(t, rep.Groups, 2)
	assert.Equal(t, "a", rep.Groups[0].Key)
	assert.Equal(t, 2, rep.Groups[0].Size)
	assert.InDelta(t, 2.0, rep.Groups[0].Means["x"], 1e-12)
	assert.InDelta(t, 10.0, rep.Groups[0].Means["z"], 1e-12)
	assert.InDelta(t, 20.0, rep.Groups[1].Means["z"], 1e-12)
}

func TestSummarize_UnknownGroupBy(t *testing.T) {
	_, err := Summarize(sampleTable(t), Options{GroupBy: "nope"})
	var se *dataset.SchemaError
	assert.ErrorAs(t, err, &se)
}

func TestRobustOutliers(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 100}
	n, maxZ := robustOutliers(vals, 3.5)
	assert.Equal(t, 1, n)
	assert.InDelta(t, 0.6745*94.5/2.5, maxZ, 1e-9)

	n, maxZ = robustOutliers([]float64{5, 5, 5, 5, 5, 5, 5, 9}, 3.5)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0.0, maxZ)
}

func TestQuantile(t *testing.T) {
	s := []float64{1, 2, 3, 4}
	assert.Equal(t, 1.0, quantile(s, 0))
	assert.Equal(t, 4.0, quantile(s, 1))
	assert.InDelta(t, 2.5, quantile(s, 0.5), 1e-12)
	// position q*(n-1) between order statistics
	assert.InDelta(t, 1.75, quantile(s, 0.25), 1e-12)
	assert.InDelta(t, 3.25, quantile(s, 0.75), 1e-12)
	assert.Equal(t, 0.0, quantile(nil, 0.5))
}

func TestMarkdown(t *testing.T) {
	opt := DefaultOptions()
	opt.GroupBy = "g"
	rep, err := Summarize(sampleTable(t), opt)
	require.NoError(t, err)
	rep.Name = "sample.csv"
	md := rep.Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]", "File: sample.csv", "Rows: 4",
		"[MISSING VALUES]", "- g: 1",
		"[NUMERIC COLUMNS]", "| x | 4 | 2.50 | 1.29 | 1.00 | 1.75 | 2.50 | 3.25 | 4.00 |",
		"[CATEGORICAL COLUMNS]", "- g: count 3, unique 2, top a (2)",
		"[GROUP-BY SUMMARY]", "[CORRELATIONS]", "- x ~ y: r=1.000",
		"[NOTES]",
	} {
		assert.Contains(t, md, want)
	}
}

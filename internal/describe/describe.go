// Package describe produces descriptive statistics for a dataset.Table:
// missing counts, numeric summaries, categorical frequencies, robust outlier
// counts, per-group means and a Pearson correlation matrix.
package describe

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/emilcphu/dtu-intro-to-ml-dm/internal/dataset"
)

// Options controls which sections Summarize computes.
type Options struct {
	// TopValues caps the categorical frequency list; 0 means 8.
	TopValues int
	// Outliers counts values with robust |z| above OutlierThreshold (3.5 if 0).
	Outliers         bool
	OutlierThreshold float64
	// Correlations computes Pearson r over rows complete in every numeric column.
	Correlations bool
	// GroupBy computes per-group means of numeric columns.
	GroupBy string
}

// DefaultOptions enables every section.
func DefaultOptions() Options {
	return Options{TopValues: 8, Outliers: true, OutlierThreshold: 3.5, Correlations: true}
}

// Kind classifies a column by the values it holds.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
	KindEmpty       Kind = "empty"
)

// Report is the descriptive summary of one table.
type Report struct {
	Name     string          `yaml:"name,omitempty" json:"name,omitempty"`
	Rows     int             `yaml:"rows" json:"rows"`
	Columns  []ColumnSummary `yaml:"columns" json:"columns"`
	Groups   []GroupSummary  `yaml:"groups,omitempty" json:"groups,omitempty"`
	Corr     *CorrMatrix     `yaml:"correlations,omitempty" json:"correlations,omitempty"`
	Warnings []string        `yaml:"warnings,omitempty" json:"warnings,omitempty"`
}

// ColumnSummary describes one column.
type ColumnSummary struct {
	Name    string          `yaml:"name" json:"name"`
	Kind    Kind            `yaml:"kind" json:"kind"`
	Count   int             `yaml:"count" json:"count"`
	Missing int             `yaml:"missing" json:"missing"`
	Numeric *NumericSummary `yaml:"numeric,omitempty" json:"numeric,omitempty"`
	// categorical
	Unique    int             `yaml:"unique,omitempty" json:"unique,omitempty"`
	TopValues []CategoryCount `yaml:"top,omitempty" json:"top,omitempty"`
}

// NumericSummary mirrors the usual describe() table. Std is the sample
// standard deviation; quantiles interpolate linearly between order statistics.
type NumericSummary struct {
	Mean   float64 `yaml:"mean" json:"mean"`
	Std    float64 `yaml:"std" json:"std"`
	Min    float64 `yaml:"min" json:"min"`
	Q25    float64 `yaml:"q25" json:"q25"`
	Median float64 `yaml:"median" json:"median"`
	Q75    float64 `yaml:"q75" json:"q75"`
	Max    float64 `yaml:"max" json:"max"`

	Outliers         int     `yaml:"outliers,omitempty" json:"outliers,omitempty"`
	OutliersMaxAbsZ  float64 `yaml:"outliers_max_abs_z,omitempty" json:"outliers_max_abs_z,omitempty"`
	OutlierThreshold float64 `yaml:"outlier_threshold,omitempty" json:"outlier_threshold,omitempty"`
}

// CategoryCount is one distinct value of a categorical column and how often it occurs.
type CategoryCount struct {
	Value string `yaml:"value" json:"value"`
	Count int    `yaml:"count" json:"count"`
}

// GroupSummary holds the numeric column means of one group.
type GroupSummary struct {
	Key   string             `yaml:"key" json:"key"`
	Size  int                `yaml:"size" json:"size"`
	Means map[string]float64 `yaml:"means" json:"means"`
}

// CorrMatrix is a symmetric Pearson correlation matrix.
type CorrMatrix struct {
	Columns []string    `yaml:"columns" json:"columns"`
	Values  [][]float64 `yaml:"values" json:"values"`
	Rows    int         `yaml:"rows" json:"rows"`
}

// Summarize computes a Report for t. It never modifies t.
func Summarize(t *dataset.Table, opt Options) (*Report, error) {
	if opt.TopValues <= 0 {
		opt.TopValues = 8
	}
	if opt.OutlierThreshold <= 0 {
		opt.OutlierThreshold = 3.5
	}
	if opt.GroupBy != "" && !t.HasColumn(opt.GroupBy) {
		return nil, &dataset.SchemaError{Column: opt.GroupBy, Row: -1, Reason: "group-by column not found"}
	}

	rep := &Report{Rows: t.Len()}
	var numeric []string
	for _, name := range t.Columns() {
		vals, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		s := summarizeColumn(name, vals, opt)
		if s.Kind == KindNumeric {
			numeric = append(numeric, name)
		}
		rep.Columns = append(rep.Columns, s)
	}

	if opt.GroupBy != "" {
		rep.Groups = groupMeans(t, opt.GroupBy, numeric)
	}
	if opt.Correlations && len(numeric) >= 2 {
		corr, dropped := correlations(t, numeric)
		if corr == nil {
			rep.Warnings = append(rep.Warnings, "correlations skipped: fewer than 2 complete rows")
		} else {
			rep.Corr = corr
			if dropped > 0 {
				rep.Warnings = append(rep.Warnings, fmt.Sprintf("correlations ignore %d rows with missing values", dropped))
			}
		}
	}
	return rep, nil
}

func summarizeColumn(name string, vals []dataset.Value, opt Options) ColumnSummary {
	s := ColumnSummary{Name: name}
	var nums []float64
	cats := map[string]int{}
	text := 0
	for _, v := range vals {
		switch v.Kind {
		case dataset.KindMissing:
			s.Missing++
			continue
		case dataset.KindNumber:
			nums = append(nums, v.Num)
		default:
			text++
		}
		s.Count++
		cats[v.Label()]++
	}

	switch {
	case s.Count == 0:
		s.Kind = KindEmpty
	case text == 0:
		s.Kind = KindNumeric
		s.Numeric = summarizeNumbers(nums, opt)
	default:
		s.Kind = KindCategorical
		tops := make([]CategoryCount, 0, len(cats))
		for k, n := range cats {
			tops = append(tops, CategoryCount{Value: k, Count: n})
		}
		sort.Slice(tops, func(i, j int) bool {
			if tops[i].Count == tops[j].Count {
				return tops[i].Value < tops[j].Value
			}
			return tops[i].Count > tops[j].Count
		})
		if len(tops) > opt.TopValues {
			tops = tops[:opt.TopValues]
		}
		s.TopValues = tops
		s.Unique = len(cats)
	}
	return s
}

func summarizeNumbers(vals []float64, opt Options) *NumericSummary {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := &NumericSummary{
		Min:    sorted[0],
		Q25:    quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q75:    quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}
	if len(vals) > 1 {
		n.Mean, n.Std = stat.MeanStdDev(vals, nil)
	} else {
		n.Mean = vals[0]
	}
	if opt.Outliers && len(vals) >= 8 {
		n.Outliers, n.OutliersMaxAbsZ = robustOutliers(vals, opt.OutlierThreshold)
		n.OutlierThreshold = opt.OutlierThreshold
	}
	return n
}

// robustOutliers counts values whose modified z-score 0.6745 (x-median)/MAD
// exceeds thr. A zero MAD yields no outliers.
func robustOutliers(vals []float64, thr float64) (count int, maxAbsZ float64) {
	median, mad := medianMAD(vals)
	if mad == 0 {
		return 0, 0
	}
	for _, v := range vals {
		az := math.Abs(0.6745 * (v - median) / mad)
		if az > thr {
			count++
		}
		if az > maxAbsZ {
			maxAbsZ = az
		}
	}
	return count, maxAbsZ
}

func groupMeans(t *dataset.Table, by string, numeric []string) []GroupSummary {
	type acc struct {
		size int
		sum  map[string]float64
		cnt  map[string]int
	}
	groups := map[string]*acc{}
	for i := 0; i < t.Len(); i++ {
		key := t.At(i, by)
		if key.IsMissing() {
			continue
		}
		k := key.Label()
		g := groups[k]
		if g == nil {
			g = &acc{sum: map[string]float64{}, cnt: map[string]int{}}
			groups[k] = g
		}
		g.size++
		for _, col := range numeric {
			if col == by {
				continue
			}
			if v := t.At(i, col); v.IsNumber() {
				g.sum[col] += v.Num
				g.cnt[col]++
			}
		}
	}
	out := make([]GroupSummary, 0, len(groups))
	for k, g := range groups {
		gs := GroupSummary{Key: k, Size: g.size, Means: map[string]float64{}}
		for col, c := range g.cnt {
			gs.Means[col] = g.sum[col] / float64(c)
		}
		out = append(out, gs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// correlations uses listwise deletion: only rows numeric in every column count.
func correlations(t *dataset.Table, cols []string) (*CorrMatrix, int) {
	var data []float64
	rows, dropped := 0, 0
	row := make([]float64, len(cols))
	for i := 0; i < t.Len(); i++ {
		complete := true
		for j, c := range cols {
			v := t.At(i, c)
			if !v.IsNumber() {
				complete = false
				break
			}
			row[j] = v.Num
		}
		if !complete {
			dropped++
			continue
		}
		data = append(data, row...)
		rows++
	}
	if rows < 2 {
		return nil, dropped
	}
	x := mat.NewDense(rows, len(cols), data)
	var sym mat.SymDense
	stat.CorrelationMatrix(&sym, x, nil)

	cm := &CorrMatrix{Columns: append([]string(nil), cols...), Rows: rows, Values: make([][]float64, len(cols))}
	for i := range cols {
		cm.Values[i] = make([]float64, len(cols))
		for j := range cols {
			r := sym.At(i, j)
			switch {
			case i == j:
				r = 1
			case math.IsNaN(r) || math.IsInf(r, 0):
				r = 0
			case r > 1:
				r = 1
			case r < -1:
				r = -1
			}
			cm.Values[i][j] = r
		}
	}
	return cm, dropped
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := append([]float64(nil), vals...)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

package describe

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
)

// maxCorrPairs bounds the correlation section to the strongest pairs.
const maxCorrPairs = 10

// Markdown renders the report in bracketed sections.
func (r *Report) Markdown() string {
	var b strings.Builder
	r.writeOverview(&b)
	numeric, categorical := r.byKind()
	writeNumeric(&b, numeric)
	writeCategorical(&b, categorical)
	r.writeGroups(&b)
	r.writeCorrelations(&b)
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}

func (r *Report) byKind() (numeric, categorical []ColumnSummary) {
	for _, c := range r.Columns {
		switch c.Kind {
		case KindNumeric:
			numeric = append(numeric, c)
		case KindCategorical:
			categorical = append(categorical, c)
		}
	}
	return numeric, categorical
}

func (r *Report) writeOverview(w io.Writer) {
	fmt.Fprintln(w, "[DATASET SUMMARY]")
	if r.Name != "" {
		fmt.Fprintf(w, "File: %s\n", r.Name)
	}
	fmt.Fprintf(w, "Rows: %d\nColumns: %d\n\n", r.Rows, len(r.Columns))
	fmt.Fprintln(w, "[MISSING VALUES]")
	for _, c := range r.Columns {
		fmt.Fprintf(w, "- %s: %d\n", cellName(c.Name), c.Missing)
	}
}

func writeNumeric(w io.Writer, cols []ColumnSummary) {
	if len(cols) == 0 {
		return
	}
	fmt.Fprint(w, "\n[NUMERIC COLUMNS]\n",
		"| column | count | mean | std | min | 25% | 50% | 75% | max |\n",
		"| --- | --- | --- | --- | --- | --- | --- | --- | --- |\n")
	var flagged []ColumnSummary
	for _, c := range cols {
		s := c.Numeric
		fmt.Fprintf(w, "| %s | %d | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f |\n",
			cellName(c.Name), c.Count, s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max)
		if s.OutlierThreshold > 0 && s.Outliers > 0 {
			flagged = append(flagged, c)
		}
	}
	if len(flagged) == 0 {
		return
	}
	fmt.Fprint(w, "\n[OUTLIERS]\n")
	for _, c := range flagged {
		s := c.Numeric
		fmt.Fprintf(w, "- %s: %d above |z|>%.1f (max |z|≈%.2f)\n",
			cellName(c.Name), s.Outliers, s.OutlierThreshold, s.OutliersMaxAbsZ)
	}
}

func writeCategorical(w io.Writer, cols []ColumnSummary) {
	if len(cols) == 0 {
		return
	}
	fmt.Fprint(w, "\n[CATEGORICAL COLUMNS]\n")
	for _, c := range cols {
		line := fmt.Sprintf("- %s: count %d, unique %d", cellName(c.Name), c.Count, c.Unique)
		if len(c.TopValues) > 0 {
			top := c.TopValues[0]
			line += fmt.Sprintf(", top %s (%d)", cellText(top.Value), top.Count)
			rest := make([]string, 0, len(c.TopValues)-1)
			for _, kv := range c.TopValues[1:] {
				rest = append(rest, fmt.Sprintf("%s(%d)", cellText(kv.Value), kv.Count))
			}
			if len(rest) > 0 {
				line += "; " + strings.Join(rest, ", ")
			}
		}
		fmt.Fprintln(w, line)
	}
}

func (r *Report) writeGroups(w io.Writer) {
	if len(r.Groups) == 0 {
		return
	}
	fmt.Fprint(w, "\n[GROUP-BY SUMMARY]\n")
	for _, g := range r.Groups {
		fmt.Fprintf(w, "- %s (n=%d)\n", cellText(g.Key), g.Size)
		cols := make([]string, 0, len(g.Means))
		for col := range g.Means {
			cols = append(cols, col)
		}
		sort.Strings(cols)
		for _, col := range cols {
			fmt.Fprintf(w, "  • %s: mean %.4g\n", col, g.Means[col])
		}
	}
}

type corrPair struct {
	a, b string
	r    float64
}

func (r *Report) writeCorrelations(w io.Writer) {
	if r.Corr == nil || len(r.Corr.Columns) < 2 {
		return
	}
	names := r.Corr.Columns
	var pairs []corrPair
	for i := range names {
		for j := i + 1; j < len(names); j++ {
			pairs = append(pairs, corrPair{a: names[i], b: names[j], r: r.Corr.Values[i][j]})
		}
	}
	// strongest first, ties by name
	sort.SliceStable(pairs, func(i, j int) bool {
		ri, rj := math.Abs(pairs[i].r), math.Abs(pairs[j].r)
		if ri != rj {
			return ri > rj
		}
		return pairs[i].a+pairs[i].b < pairs[j].a+pairs[j].b
	})
	if len(pairs) > maxCorrPairs {
		pairs = pairs[:maxCorrPairs]
	}
	fmt.Fprint(w, "\n[CORRELATIONS]\n")
	for _, p := range pairs {
		fmt.Fprintf(w, "- %s ~ %s: r=%.3f\n", p.a, p.b, p.r)
	}
}

func cellName(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "(unnamed)"
	}
	return s
}

// cellText keeps values on one line and out of table pipes.
func cellText(s string) string {
	return strings.NewReplacer("\n", " ", "|", "/").Replace(s)
}

package pipeline

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/emilcphu/dtu-intro-to-ml-dm/internal/cluster"
	"github.com/emilcphu/dtu-intro-to-ml-dm/internal/standardize"
)

// Result is the outcome of Run.
type Result struct {
	ID          string                 `yaml:"id" json:"id"`
	Rows        int                    `yaml:"rows" json:"rows"`
	Attributes  []string               `yaml:"attributes" json:"attributes"`
	Label       string                 `yaml:"label,omitempty" json:"label,omitempty"`
	Classes     []string               `yaml:"classes,omitempty" json:"classes,omitempty"`
	Standardize *standardize.Transform `yaml:"standardize,omitempty" json:"standardize,omitempty"`
	PCA         *PCASummary            `yaml:"pca,omitempty" json:"pca,omitempty"`
	Clusters    []cluster.Comparison   `yaml:"clusters,omitempty" json:"clusters,omitempty"`
	Warnings    []string               `yaml:"warnings,omitempty" json:"warnings,omitempty"`
	Elapsed     time.Duration          `yaml:"-" json:"-"`
}

// PCASummary holds the variance profile and the chosen projection.
type PCASummary struct {
	Singular               []float64   `yaml:"singular_values" json:"singular_values"`
	Rho                    []float64   `yaml:"variance_explained" json:"variance_explained"`
	Cumulative             []float64   `yaml:"cumulative" json:"cumulative"`
	Threshold              float64     `yaml:"threshold" json:"threshold"`
	ComponentsForThreshold int         `yaml:"components_for_threshold" json:"components_for_threshold"`
	Loadings               []Loading   `yaml:"pc1_loadings" json:"pc1_loadings"`
	Components             []int       `yaml:"components" json:"components"`
	Projection             [][]float64 `yaml:"projection" json:"projection"`
}

// Loading is the weight of one attribute in a principal direction.
type Loading struct {
	Attribute string  `yaml:"attribute" json:"attribute"`
	Weight    float64 `yaml:"weight" json:"weight"`
}

// Markdown renders the result in bracketed sections. Per-row projections and
// assignments are left to the YAML/JSON forms.
func (r *Result) Markdown() string {
	var b strings.Builder
	b.WriteString("[RUN]\n")
	b.WriteString(fmt.Sprintf("ID: %s\n", r.ID))
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Attributes: %s\n", strings.Join(r.Attributes, ", ")))
	if r.Label != "" {
		b.WriteString(fmt.Sprintf("Label: %s (%d classes)\n", r.Label, len(r.Classes)))
	}
	if r.Standardize != nil && len(r.Standardize.Degenerate) > 0 {
		b.WriteString(fmt.Sprintf("Constant columns (centered only): %v\n", r.Standardize.Degenerate))
	}

	if p := r.PCA; p != nil {
		b.WriteString("\n[VARIANCE EXPLAINED]\n")
		b.WriteString("| PC | singular value | rho | cumulative |\n")
		b.WriteString("| --- | --- | --- | --- |\n")
		for i := range p.Rho {
			b.WriteString(fmt.Sprintf("| %d | %.4f | %.4f | %.4f |\n", i+1, p.Singular[i], p.Rho[i], p.Cumulative[i]))
		}
		if p.Threshold > 0 {
			b.WriteString(fmt.Sprintf("\nComponents needed for %.0f%% of variance: %d\n", p.Threshold*100, p.ComponentsForThreshold))
		}
		if len(p.Loadings) > 0 {
			b.WriteString("\n[PC1 LOADINGS]\n")
			ls := append([]Loading(nil), p.Loadings...)
			sort.SliceStable(ls, func(i, j int) bool { return math.Abs(ls[i].Weight) > math.Abs(ls[j].Weight) })
			for _, l := range ls {
				b.WriteString(fmt.Sprintf("- %s: %+.3f\n", l.Attribute, l.Weight))
			}
		}
		if len(p.Components) > 0 {
			names := make([]string, len(p.Components))
			for i, c := range p.Components {
				names[i] = fmt.Sprintf("PC%d", c+1)
			}
			b.WriteString(fmt.Sprintf("\nProjection onto %s: %d rows\n", strings.Join(names, "/"), len(p.Projection)))
		}
	}

	if len(r.Clusters) > 0 {
		b.WriteString("\n[CLUSTER VALIDITY]\n")
		b.WriteString("| method | metric | K | sizes | Rand | Jaccard | NMI |\n")
		b.WriteString("| --- | --- | --- | --- | --- | --- | --- |\n")
		for _, c := range r.Clusters {
			sizes := make([]string, len(c.Sizes))
			for i, s := range c.Sizes {
				sizes[i] = fmt.Sprint(s)
			}
			b.WriteString(fmt.Sprintf("| %s | %s | %d | %s | %.4f | %.4f | %.4f |\n",
				c.Method, c.Metric, c.K, strings.Join(sizes, "/"), c.Scores.Rand, c.Scores.Jaccard, c.Scores.NMI))
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cfgpkg "github.com/emilcphu/dtu-intro-to-ml-dm/internal/config"
	"github.com/emilcphu/dtu-intro-to-ml-dm/internal/cluster"
	"github.com/emilcphu/dtu-intro-to-ml-dm/internal/dataset"
	"github.com/emilcphu/dtu-intro-to-ml-dm/internal/pipeline"
	"github.com/emilcphu/dtu-intro-to-ml-dm/internal/standardize"
	"github.com/emilcphu/dtu-intro-to-ml-dm/internal/utils"
)

// inputFlags select how the dataset file is parsed.
type inputFlags struct {
	delimiter  string
	decimal    string
	thousands  string
	maxRows    int
	sheetName  string
	sheetIndex int
	output     string
}

func (f *inputFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.output, "output", "o", "", "optional path to write the report")
	fl.StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	fl.StringVar(&f.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	fl.StringVar(&f.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	fl.IntVar(&f.maxRows, "max-rows", 0, "maximum rows to read (0 = unlimited)")
	fl.StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to read")
	fl.IntVar(&f.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

func (f *inputFlags) readOptions(c *cfgpkg.Global) (dataset.ReadOptions, error) {
	opt := dataset.ReadOptions{MaxRows: f.maxRows, SheetName: f.sheetName, SheetIndex: f.sheetIndex}
	delim := f.delimiter
	if delim == "" {
		delim = c.Delimiter
	}
	switch delim {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", delim)
	}
	dec := f.decimal
	if dec == "" {
		dec = c.DecimalSeparator
	}
	switch strings.ToLower(strings.TrimSpace(dec)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", dec)
	}
	th := f.thousands
	if th == "" {
		th = c.ThousandsSeparator
	}
	switch strings.ToLower(th) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", th)
	}
	return opt, nil
}

func (f *inputFlags) load(path string) (*dataset.Table, error) {
	ropt, err := f.readOptions(current())
	if err != nil {
		return nil, err
	}
	t, err := dataset.ReadFile(path, ropt)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"file": filepath.Base(path), "rows": t.Len(), "cols": len(t.Columns())}).Debug("dataset loaded")
	return t, nil
}

// analysisFlags override the configured pipeline settings.
type analysisFlags struct {
	inputFlags
	label      string
	attributes []string
	drop       []string
	policy     string
	threshold  float64
	components []int
	methods    []string
	metric     string
	k          int
}

func (f *analysisFlags) bind(cmd *cobra.Command, withPCA, withCluster bool) {
	f.inputFlags.bind(cmd)
	fl := cmd.Flags()
	fl.StringVar(&f.label, "label", "", "ground-truth label column (default from config)")
	fl.StringSliceVar(&f.attributes, "attributes", nil, "attribute columns for the matrix, in order (default from config)")
	fl.StringSliceVar(&f.drop, "drop", nil, "columns to drop before encoding (default from config)")
	fl.StringVar(&f.policy, "degenerate", "", "zero-variance column policy: reject|center")
	if withPCA {
		fl.Float64Var(&f.threshold, "threshold", 0, "cumulative variance threshold for component selection (default from config)")
		fl.IntSliceVar(&f.components, "components", nil, "0-based component indices for the projection (default 0,1)")
	}
	if withCluster {
		fl.StringSliceVar(&f.methods, "method", nil, "linkage method(s): single|complete|average|ward|all")
		fl.StringVar(&f.metric, "metric", "", "distance metric: euclidean|sqeuclidean|cityblock|chebyshev")
		fl.IntVar(&f.k, "k", 0, "number of clusters to cut the tree into")
	}
}

// options merges the flags that were set over the loaded configuration.
func (f *analysisFlags) options(cmd *cobra.Command) (pipeline.Options, error) {
	c := *current()
	fl := cmd.Flags()
	if fl.Changed("label") {
		c.Label = f.label
	}
	if fl.Changed("attributes") {
		c.Attributes = f.attributes
	}
	if fl.Changed("drop") {
		c.Drop = f.drop
	}
	if fl.Changed("degenerate") {
		c.DegeneratePolicy = f.policy
	}
	if fl.Lookup("threshold") != nil && fl.Changed("threshold") {
		c.VarianceThreshold = f.threshold
	}
	if fl.Lookup("components") != nil && fl.Changed("components") {
		c.Components = f.components
	}
	if fl.Lookup("method") != nil && fl.Changed("method") {
		c.Methods = expandMethods(f.methods)
	}
	if fl.Lookup("metric") != nil && fl.Changed("metric") {
		c.Metric = f.metric
	}
	if fl.Lookup("k") != nil && fl.Changed("k") {
		c.Clusters = f.k
	}
	if rootCmd.PersistentFlags().Changed("format") {
		c.Format = formatFlag
	}
	if err := c.Validate(); err != nil {
		return pipeline.Options{}, err
	}
	return pipelineOptions(&c)
}

func expandMethods(in []string) []string {
	var out []string
	for _, m := range in {
		if strings.EqualFold(strings.TrimSpace(m), "all") {
			out = out[:0]
			for _, known := range cluster.Methods {
				out = append(out, string(known))
			}
			return out
		}
		out = append(out, m)
	}
	return out
}

func pipelineOptions(c *cfgpkg.Global) (pipeline.Options, error) {
	policy, err := standardize.ParsePolicy(c.DegeneratePolicy)
	if err != nil {
		return pipeline.Options{}, err
	}
	metric, err := cluster.ParseMetric(c.Metric)
	if err != nil {
		return pipeline.Options{}, err
	}
	methods := make([]cluster.Method, 0, len(c.Methods))
	for _, s := range c.Methods {
		m, err := cluster.ParseMethod(s)
		if err != nil {
			return pipeline.Options{}, err
		}
		methods = append(methods, m)
	}
	encs := make([]dataset.Encoding, len(c.Encodings))
	for i, e := range c.Encodings {
		r, err := dataset.ParseRule(string(e.Rule))
		if err != nil {
			return pipeline.Options{}, fmt.Errorf("encoding %s: %w", e.Column, err)
		}
		e.Rule = r
		encs[i] = e
	}
	return pipeline.Options{
		Clean:      dataset.CleanSpec{Drop: c.Drop, Encodings: encs},
		Attributes: c.Attributes,
		Label:      c.Label,
		Policy:     policy,
		Threshold:  c.VarianceThreshold,
		Components: c.Components,
		Methods:    methods,
		Metric:     metric,
		K:          c.Clusters,
		Logger:     log,
	}, nil
}

// emit writes a rendered report to --output or stdout.
func emit(cmd *cobra.Command, report utils.Markdowner, output, what string) error {
	b, err := utils.Render(report, outputFormat())
	if err != nil {
		return err
	}
	if output != "" {
		if err := utils.SafeWriteFile(output, b); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s to %s\n", what, output)
		return nil
	}
	_, err = cmd.OutOrStdout().Write(b)
	return err
}

package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/emilcphu/dtu-intro-to-ml-dm/internal/dataset"
	"github.com/emilcphu/dtu-intro-to-ml-dm/internal/describe"
)

var (
	descInput     inputFlags
	descGroupBy   string
	descCorr      bool
	descOutliers  bool
	descOutlierTh float64
	descTop       int
	descClean     bool
)

var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Summarize a dataset: missing values, distributions, categories, correlations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		t, err := descInput.load(path)
		if err != nil {
			return err
		}
		c := current()
		if descClean {
			// summarize the encoded table instead of the raw one
			popt, err := pipelineOptions(c)
			if err != nil {
				return err
			}
			t, err = dataset.Clean(t, popt.Clean)
			if err != nil {
				return err
			}
		}
		opt := describe.DefaultOptions()
		opt.Correlations = descCorr
		opt.Outliers = descOutliers
		opt.TopValues = descTop
		opt.OutlierThreshold = c.OutlierThreshold
		if cmd.Flags().Changed("outlier-threshold") {
			opt.OutlierThreshold = descOutlierTh
		}
		opt.GroupBy = c.GroupBy
		if cmd.Flags().Changed("group-by") {
			opt.GroupBy = descGroupBy
		}
		rep, err := describe.Summarize(t, opt)
		if err != nil {
			return err
		}
		rep.Name = filepath.Base(path)
		return emit(cmd, rep, descInput.output, "summary")
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	descInput.bind(describeCmd)
	describeCmd.Flags().StringVar(&descGroupBy, "group-by", "", "column to compute per-group means by (e.g. chd)")
	describeCmd.Flags().BoolVar(&descCorr, "correlations", true, "compute Pearson correlations among numeric columns")
	describeCmd.Flags().BoolVar(&descOutliers, "outliers", true, "compute robust outlier counts (MAD)")
	describeCmd.Flags().Float64Var(&descOutlierTh, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based)")
	describeCmd.Flags().IntVar(&descTop, "top", 8, "number of most frequent categories to list")
	describeCmd.Flags().BoolVar(&descClean, "clean", false, "apply the configured drop/encoding rules before summarizing")
}

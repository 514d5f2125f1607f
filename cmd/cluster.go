package cmd

import (
	"github.com/spf13/cobra"

	"github.com/emilcphu/dtu-intro-to-ml-dm/internal/pipeline"
)

var clusterFlags analysisFlags

var clusterCmd = &cobra.Command{
	Use:   "cluster <file>",
	Short: "Hierarchically cluster the standardized data and score it against the label",
	Long: `Builds one linkage tree per method, cuts it into K clusters and reports the
Rand index, Jaccard coefficient and normalized mutual information against the
label column.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := clusterFlags.load(args[0])
		if err != nil {
			return err
		}
		opt, err := clusterFlags.options(cmd)
		if err != nil {
			return err
		}
		opt.SkipPCA = true
		res, err := pipeline.Run(cmd.Context(), t, opt)
		if err != nil {
			return err
		}
		return emit(cmd, res, clusterFlags.output, "clustering report")
	},
}

func init() {
	rootCmd.AddCommand(clusterCmd)
	clusterFlags.bind(clusterCmd, false, true)
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/emilcphu/dtu-intro-to-ml-dm/internal/pipeline"
)

var pcaFlags analysisFlags

var pcaCmd = &cobra.Command{
	Use:   "pca <file>",
	Short: "Standardize the attribute matrix and report principal components",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := pcaFlags.load(args[0])
		if err != nil {
			return err
		}
		opt, err := pcaFlags.options(cmd)
		if err != nil {
			return err
		}
		opt.SkipCluster = true
		res, err := pipeline.Run(cmd.Context(), t, opt)
		if err != nil {
			return err
		}
		return emit(cmd, res, pcaFlags.output, "PCA report")
	},
}

func init() {
	rootCmd.AddCommand(pcaCmd)
	pcaFlags.bind(pcaCmd, true, false)
}

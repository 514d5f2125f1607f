package cmd

import (
	"github.com/spf13/cobra"

	"github.com/emilcphu/dtu-intro-to-ml-dm/internal/pipeline"
)

var runFlags analysisFlags

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Run the full pipeline: clean, standardize, PCA and clustering",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := runFlags.load(args[0])
		if err != nil {
			return err
		}
		opt, err := runFlags.options(cmd)
		if err != nil {
			return err
		}
		res, err := pipeline.Run(cmd.Context(), t, opt)
		if err != nil {
			return err
		}
		return emit(cmd, res, runFlags.output, "report")
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runFlags.bind(runCmd, true, true)
}

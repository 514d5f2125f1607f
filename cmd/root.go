package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cfgpkg "github.com/emilcphu/dtu-intro-to-ml-dm/internal/config"
)

var (
	// Global flags
	cfgFile    string
	debug      bool
	formatFlag string

	// Loaded configuration
	cfg *cfgpkg.Global

	log = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "heartstat",
	Short: "heartstat: descriptive statistics, PCA and hierarchical clustering for tabular data",
	Long: `heartstat loads a CSV/TSV/XLSX dataset, cleans and encodes it, standardizes the
attribute matrix, and reports principal components and hierarchical clustering
validity (Rand, Jaccard, NMI) against a ground-truth label column.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.heartstat/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", "", "output format: markdown|yaml|json (overrides config)")
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
}

func loadConfig() {
	if debug {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	cfg = c
	log.WithField("config", cfgFile).Debug("configuration loaded")
}

// current returns the loaded configuration or the defaults.
func current() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	return cfgpkg.Default()
}

func outputFormat() string {
	if rootCmd.PersistentFlags().Changed("format") {
		return formatFlag
	}
	return current().Format
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/emilcphu/dtu-intro-to-ml-dm/internal/cluster"
	"github.com/emilcphu/dtu-intro-to-ml-dm/internal/dataset"
	"github.com/emilcphu/dtu-intro-to-ml-dm/internal/standardize"
)

// Global configuration structure.
type Global struct {
	// Cleaning
	Drop      []string           `mapstructure:"drop" yaml:"drop"`
	Encodings []dataset.Encoding `mapstructure:"encodings" yaml:"encodings"`

	// Matrix and ground truth
	Attributes []string `mapstructure:"attributes" yaml:"attributes"`
	Label      string   `mapstructure:"label" yaml:"label"`

	DegeneratePolicy  string  `mapstructure:"degenerate_policy" yaml:"degenerate_policy"`
	VarianceThreshold float64 `mapstructure:"variance_threshold" yaml:"variance_threshold"`
	Components        []int   `mapstructure:"components" yaml:"components"`

	// Clustering
	Methods  []string `mapstructure:"methods" yaml:"methods"`
	Metric   string   `mapstructure:"metric" yaml:"metric"`
	Clusters int      `mapstructure:"clusters" yaml:"clusters"`

	// Input parsing
	Delimiter          string `mapstructure:"delimiter" yaml:"delimiter"`
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`

	// Descriptive report
	OutlierThreshold float64 `mapstructure:"outlier_threshold" yaml:"outlier_threshold"`
	GroupBy          string  `mapstructure:"group_by" yaml:"group_by"`

	// Output: markdown|yaml|json
	Format string `mapstructure:"format" yaml:"format"`
}

// Formats lists the accepted output formats.
var Formats = []string{"markdown", "yaml", "json"}

// Dir returns ~/.heartstat.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".heartstat"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.heartstat/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// South African Heart Disease layout
	v.SetDefault("drop", []string{"row.names"})
	v.SetDefault("encodings", []map[string]any{{"column": "famhist", "rule": "onehot"}})
	v.SetDefault("attributes", []string{
		"sbp", "tobacco", "ldl", "adiposity", "typea", "obesity", "alcohol", "age",
		"famhist_Absent", "famhist_Present",
	})
	v.SetDefault("label", "chd")
	v.SetDefault("degenerate_policy", "reject")
	v.SetDefault("variance_threshold", 0.95)
	v.SetDefault("components", []int{0, 1})
	v.SetDefault("methods", []string{"single", "complete", "average", "ward"})
	v.SetDefault("metric", "euclidean")
	v.SetDefault("clusters", 2)
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal_separator", "")
	v.SetDefault("thousands_separator", "")
	v.SetDefault("outlier_threshold", 3.5)
	v.SetDefault("group_by", "")
	v.SetDefault("format", "markdown")
}

// Default returns the built-in configuration without consulting files or env.
func Default() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	if err := v.Unmarshal(&c); err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return &c
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("HEARTSTAT")
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// an explicit path must exist; the home config is optional
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Validate checks enumerations and ranges.
func (c *Global) Validate() error {
	if _, err := standardize.ParsePolicy(c.DegeneratePolicy); err != nil {
		return err
	}
	for _, m := range c.Methods {
		if _, err := cluster.ParseMethod(m); err != nil {
			return err
		}
	}
	if _, err := cluster.ParseMetric(c.Metric); err != nil {
		return err
	}
	for _, e := range c.Encodings {
		if _, err := dataset.ParseRule(string(e.Rule)); err != nil {
			return fmt.Errorf("encoding %s: %w", e.Column, err)
		}
	}
	if c.Clusters < 1 {
		return fmt.Errorf("clusters must be >= 1 (got %d)", c.Clusters)
	}
	if c.VarianceThreshold < 0 || c.VarianceThreshold > 1 {
		return fmt.Errorf("variance_threshold must be in [0, 1] (got %g)", c.VarianceThreshold)
	}
	for _, k := range c.Components {
		if k < 0 {
			return fmt.Errorf("components must be non-negative (got %d)", k)
		}
	}
	if !validFormat(c.Format) {
		return fmt.Errorf("unknown format %q (use %s)", c.Format, strings.Join(Formats, "|"))
	}
	return nil
}

func validFormat(f string) bool {
	for _, ok := range Formats {
		if strings.EqualFold(f, ok) {
			return true
		}
	}
	return false
}

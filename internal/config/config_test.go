package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilcphu/dtu-intro-to-ml-dm/internal/dataset"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, []string{"row.names"}, c.Drop)
	require.Len(t, c.Encodings, 1)
	assert.Equal(t, "famhist", c.Encodings[0].Column)
	assert.Equal(t, dataset.RuleOneHot, c.Encodings[0].Rule)
	assert.Equal(t, "chd", c.Label)
	assert.Len(t, c.Attributes, 10)
	assert.Equal(t, 0.95, c.VarianceThreshold)
	assert.Equal(t, []int{0, 1}, c.Components)
	assert.Equal(t, 2, c.Clusters)
	assert.Equal(t, "markdown", c.Format)
	assert.NoError(t, c.Validate())
}

func TestLoad_HomeFileOptional(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoad_FileAndEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(home, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
label: class
clusters: 4
methods: [ward]
encodings:
  - column: sex
    rule: binary
    positive: F
`), 0o644))
	t.Setenv("HEARTSTAT_METRIC", "cityblock")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "class", c.Label)
	assert.Equal(t, 4, c.Clusters)
	assert.Equal(t, []string{"ward"}, c.Methods)
	assert.Equal(t, "cityblock", c.Metric)
	require.Len(t, c.Encodings, 1)
	assert.Equal(t, dataset.Encoding{Column: "sex", Rule: dataset.RuleBinary, Positive: "F"}, c.Encodings[0])
	// untouched keys keep their defaults
	assert.Equal(t, 0.95, c.VarianceThreshold)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c := Default()
	c.Clusters = 3
	c.Methods = []string{"average"}
	require.NoError(t, Save(c, ""))
	assert.FileExists(t, filepath.Join(home, ".heartstat", "config.yaml"))

	got, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Clusters)
	assert.Equal(t, []string{"average"}, got.Methods)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Global){
		"policy":    func(c *Global) { c.DegeneratePolicy = "drop" },
		"method":    func(c *Global) { c.Methods = []string{"centroid"} },
		"metric":    func(c *Global) { c.Metric = "cosine" },
		"clusters":  func(c *Global) { c.Clusters = 0 },
		"threshold": func(c *Global) { c.VarianceThreshold = 1.5 },
		"component": func(c *Global) { c.Components = []int{-1} },
		"format":    func(c *Global) { c.Format = "latex" },
		"rule":      func(c *Global) { c.Encodings = []dataset.Encoding{{Column: "x", Rule: "ordinal"}} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

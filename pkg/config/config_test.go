package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "instlist.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
output_dir: out
csv_file: list.csv
word_wrap: 100
exclusions: |
  42 - Springfield
substitutions: |
  s/University/Univ./
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "list.csv", cfg.CSVFile)
	assert.Equal(t, defaultExclude, cfg.ExclusionsFile)
	assert.Equal(t, 100, cfg.WordWrap)
	assert.Equal(t, "42 - Springfield\n", cfg.Exclusions)
	assert.Equal(t, "s/University/Univ./\n", cfg.Substitutions)
	assert.Equal(t, path, cfg.File)
}

func TestLoadFileFromHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, ".instlist.yaml"), []byte("style: dark\n"), 0o644))

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "dark", cfg.Style)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.ErrorContains(t, err, "failed to read config")
}

func TestLoadPrecedence(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "csv_file: from-file.csv\noutput_dir: file-dir\nword_wrap: 60\n")
	t.Setenv("INSTLIST_OUTPUT_DIR", "env-dir")
	t.Setenv("INSTLIST_WORD_WRAP", "70")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output-dir", "", "")
	flags.Int("word-wrap", 0, "")
	require.NoError(t, flags.Parse([]string{"--word-wrap", "90"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "from-file.csv", cfg.CSVFile)
	assert.Equal(t, "env-dir", cfg.OutputDir)
	assert.Equal(t, 90, cfg.WordWrap)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty csv", mutate: func(c *Config) { c.CSVFile = " " }, want: ErrEmptyFileName},
		{name: "empty exclusions", mutate: func(c *Config) { c.ExclusionsFile = "" }, want: ErrEmptyFileName},
		{name: "zero wrap", mutate: func(c *Config) { c.WordWrap = 0 }, want: ErrInvalidWordWrap},
		{name: "ftp style", mutate: func(c *Config) { c.StyleURL = "ftp://example.org/s.json" }, want: ErrInvalidStyleURL},
		{name: "relative style", mutate: func(c *Config) { c.StyleURL = "style.json" }, want: ErrInvalidStyleURL},
		{name: "https style", mutate: func(c *Config) { c.StyleURL = "https://example.org/s.json" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
		})
	}
}

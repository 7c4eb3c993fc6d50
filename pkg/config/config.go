// Package config loads instlist settings from defaults, an optional YAML
// file, INSTLIST_* environment variables and command line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix      = "INSTLIST"
	configName     = ".instlist"
	configType     = "yaml"
	defaultWrap    = 80
	defaultCSV     = "institutions.csv"
	defaultExclude = "exclusions.txt"
)

// Config holds every setting instlist reads
type Config struct {
	OutputDir      string `mapstructure:"output_dir"`
	CSVFile        string `mapstructure:"csv_file"`
	ExclusionsFile string `mapstructure:"exclusions_file"`

	// Seed texts for a new session
	Exclusions    string `mapstructure:"exclusions"`
	Substitutions string `mapstructure:"substitutions"`

	Style    string `mapstructure:"style"`
	StyleURL string `mapstructure:"style_url"`
	WordWrap int    `mapstructure:"word_wrap"`

	LogFile string `mapstructure:"log_file"`
	Verbose bool   `mapstructure:"verbose"`

	// File is the config file that was read, if any
	File string `mapstructure:"-"`
}

// flagKeys maps command line flag names to config keys
var flagKeys = map[string]string{
	"output-dir":      "output_dir",
	"csv-file":        "csv_file",
	"exclusions-file": "exclusions_file",
	"style":           "style",
	"style-url":       "style_url",
	"word-wrap":       "word_wrap",
	"log-file":        "log_file",
	"verbose":         "verbose",
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		OutputDir:      ".",
		CSVFile:        defaultCSV,
		ExclusionsFile: defaultExclude,
		WordWrap:       defaultWrap,
	}
}

// Load reads the configuration. An explicit path must exist; otherwise
// .instlist.yaml is looked up in the working directory and then $HOME.
// flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("csv_file", d.CSVFile)
	v.SetDefault("exclusions_file", d.ExclusionsFile)
	v.SetDefault("exclusions", "")
	v.SetDefault("substitutions", "")
	v.SetDefault("style", "")
	v.SetDefault("style_url", "")
	v.SetDefault("word_wrap", d.WordWrap)
	v.SetDefault("log_file", "")
	v.SetDefault("verbose", false)
}

// Validate checks the settings
func (c *Config) Validate() error {
	if strings.TrimSpace(c.CSVFile) == "" {
		return fmt.Errorf("csv_file: %w", ErrEmptyFileName)
	}
	if strings.TrimSpace(c.ExclusionsFile) == "" {
		return fmt.Errorf("exclusions_file: %w", ErrEmptyFileName)
	}
	if c.WordWrap <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWordWrap, c.WordWrap)
	}
	if c.StyleURL != "" {
		u, err := url.Parse(c.StyleURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrInvalidStyleURL, c.StyleURL)
		}
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/tabreport/internal/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Default sheet selection for generated reports
	IncludeCharts  bool `mapstructure:"include_charts" yaml:"include_charts"`
	IncludeSummary bool `mapstructure:"include_summary" yaml:"include_summary"`
	IncludePivot   bool `mapstructure:"include_pivot" yaml:"include_pivot"`
	// Overwrite an existing output file instead of failing
	Overwrite bool `mapstructure:"overwrite" yaml:"overwrite"`

	// Input parsing
	Delimiter      string `mapstructure:"delimiter" yaml:"delimiter"`
	MaxPreviewRows int    `mapstructure:"max_preview_rows" yaml:"max_preview_rows"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Global {
	return Global{
		IncludeCharts:  true,
		IncludeSummary: true,
		IncludePivot:   true,
		Overwrite:      true,
		MaxPreviewRows: 100,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// DefaultPath returns ~/.tabreport/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tabreport", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tabreport/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
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

// DotEnvFile is read into the process environment by Load when present.
// Variables already set in the environment are not overridden.
var DotEnvFile = ".env"

// Load loads configuration from file, env, and defaults.
// Precedence: env (including .env) > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	if DotEnvFile != "" && utils.FileExists(DotEnvFile) {
		if err := godotenv.Load(DotEnvFile); err != nil {
			return nil, fmt.Errorf("read %s: %w", DotEnvFile, err)
		}
	}
	v := viper.New()
	v.SetEnvPrefix("TABREPORT")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("include_charts", d.IncludeCharts)
	v.SetDefault("include_summary", d.IncludeSummary)
	v.SetDefault("include_pivot", d.IncludePivot)
	v.SetDefault("overwrite", d.Overwrite)
	v.SetDefault("delimiter", d.Delimiter)
	v.SetDefault("max_preview_rows", d.MaxPreviewRows)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".tabreport"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.MaxPreviewRows < 0 {
		c.MaxPreviewRows = 0
	}
	return &c, nil
}

// Package config provides the runtime configuration for Quarry.
// Configuration is resolved in three layers: built-in defaults, an
// optional config file (YAML/JSON, loaded through viper), and QUARRY_*
// environment variables, with later layers winning.
package config

import (
	"runtime"
	"strings"

	"github.com/spf13/viper"

	qerrors "github.com/quarrydb/quarry/pkg/errors"
)

// Layout names accepted by the store factory.
const (
	LayoutLinked   = "linked"
	LayoutColumnar = "columnar"
	LayoutCompact  = "compact"
)

// Config holds all runtime settings.
type Config struct {
	// Workers is the fixed worker count used for parallel ingestion and
	// parallel query execution. 1 means fully sequential.
	Workers int `mapstructure:"workers" yaml:"workers" json:"workers"`

	// Layout selects the physical record-store layout.
	Layout string `mapstructure:"layout" yaml:"layout" json:"layout"`

	// LogLevel is the zap level (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`

	// MetricsEnabled toggles Prometheus instrumentation on query paths.
	MetricsEnabled bool `mapstructure:"metrics_enabled" yaml:"metrics_enabled" json:"metrics_enabled"`

	// Format selects CLI result output: csv or json.
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Workers:        runtime.NumCPU(),
		Layout:         LayoutColumnar,
		LogLevel:       "info",
		MetricsEnabled: true,
		Format:         "csv",
	}
}

// Load resolves configuration from an optional file path plus environment.
// An empty path skips the file layer entirely.
func Load(path string) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("workers", def.Workers)
	v.SetDefault("layout", def.Layout)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("metrics_enabled", def.MetricsEnabled)
	v.SetDefault("format", def.Format)

	v.SetEnvPrefix("QUARRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, qerrors.Wrap(err, qerrors.ErrorTypeConfig, "failed to read config file").
				WithDetail("path", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, qerrors.Wrap(err, qerrors.ErrorTypeConfig, "failed to unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for internally consistent values.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return qerrors.New(qerrors.ErrorTypeConfig, "workers must be at least 1").
			WithDetail("workers", c.Workers)
	}
	switch c.Layout {
	case LayoutLinked, LayoutColumnar, LayoutCompact:
	default:
		return qerrors.New(qerrors.ErrorTypeConfig, "unknown layout").
			WithDetail("layout", c.Layout)
	}
	switch c.Format {
	case "csv", "json":
	default:
		return qerrors.New(qerrors.ErrorTypeConfig, "unknown output format").
			WithDetail("format", c.Format)
	}
	return nil
}

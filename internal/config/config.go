package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// ErrInvalid is returned by Load when a configured value is out of range.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all runtime configuration for a pcs invocation.
// Values are populated from .pcs.yaml, PCS_* env vars, and CLI flags.
type Config struct {
	// CIBFile reads the CIB from a file instead of the live cluster.
	// "-" reads standard input.
	CIBFile       string        `mapstructure:"cib_file"`
	CibadminPath  string        `mapstructure:"cibadmin_path"`
	Full          bool          `mapstructure:"full"`
	Debug         bool          `mapstructure:"debug"`
	LogLevel      string        `mapstructure:"log_level"`
	// OutputFormat is validated by the printing command through ui.ParseFormat.
	OutputFormat  string        `mapstructure:"output_format"`
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("cib_file", "")
	viper.SetDefault("cibadmin_path", "cibadmin")
	viper.SetDefault("full", false)
	viper.SetDefault("debug", false)
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("output_format", "text")
	viper.SetDefault("watch_debounce", 200*time.Millisecond)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("%w: log_level %q", ErrInvalid, cfg.LogLevel)
	}
	if cfg.WatchDebounce < 0 {
		return Config{}, fmt.Errorf("%w: watch_debounce %s is negative", ErrInvalid, cfg.WatchDebounce)
	}
	return cfg, nil
}

// Package config loads the tool configuration with koanf, layering
// defaults, an optional YAML file, MNEMO_-prefixed environment
// variables, and command-line flags, in that order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds the settings for the mnemo tool. The engine packages
// take no configuration; everything here belongs to the shell.
type Config struct {
	// DB is the path to the SQLite database file.
	DB string `koanf:"db" validate:"required"`
	// ReposDir is where git deck sources are checked out.
	ReposDir string `koanf:"repos_dir" validate:"required"`
	// ForecastDays is the horizon of the forecast command.
	ForecastDays int `koanf:"forecast_days" validate:"gte=1,lte=365"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DB:           "mnemo.db",
		ReposDir:     "repos",
		ForecastDays: 7,
		LogLevel:     "info",
	}
}

// Load assembles the configuration. path may be empty (no config file);
// flags may be nil (no flag overrides).
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// MNEMO_FORECAST_DAYS=14 -> forecast_days
	if err := k.Load(env.Provider("MNEMO_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "MNEMO_"))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

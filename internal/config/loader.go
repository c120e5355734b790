package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment keys.
const (
	EnvPrefix     = "COURTSIDE_"
	EnvConfigPath = "COURTSIDE_CONFIG"
)

// Accepted advance duration range in minutes.
const (
	minAdvanceMinutes = 1.0
	maxAdvanceMinutes = 3.5
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if COURTSIDE_CONFIG is set
//  3. env (prefix COURTSIDE_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// COURTSIDE_ARCHIVE_WORKERS -> archive_workers. Underscores are kept to
	// match the flat koanf tags on the struct.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// The path itself is not a config key.
	k.Delete("config")

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	case c.AdvanceMinutes < minAdvanceMinutes || c.AdvanceMinutes > maxAdvanceMinutes:
		return fmt.Errorf("%w: advance_minutes %.2f outside %.1f..%.1f", ErrInvalidConfig, c.AdvanceMinutes, minAdvanceMinutes, maxAdvanceMinutes)
	case c.BiometricMode != BiometricManual && c.BiometricMode != BiometricDerived:
		return fmt.Errorf("%w: biometric_mode %q", ErrInvalidConfig, c.BiometricMode)
	case c.ActionIntervalMS < 0 || c.SurveyDelayMS < 0 || c.ResetDelayMS < 0:
		return fmt.Errorf("%w: pacing delays must not be negative", ErrInvalidConfig)
	case c.ArchiveQueueSize < 1:
		return fmt.Errorf("%w: archive_queue_size must be positive", ErrInvalidConfig)
	case c.ArchiveWorkers < 1:
		return fmt.Errorf("%w: archive_workers must be positive", ErrInvalidConfig)
	case c.PlayerAge < 0 || c.PlayerJersey < 0:
		return fmt.Errorf("%w: player fields must not be negative", ErrInvalidConfig)
	}
	d, err := time.ParseDuration(c.MetricsInterval)
	if err != nil || d <= 0 {
		return fmt.Errorf("%w: metrics_interval %q", ErrInvalidConfig, c.MetricsInterval)
	}
	return nil
}

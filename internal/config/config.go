// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers a YAML file and environment variables on top of the defaults.
// - Errors wrap this package's sentinels so callers can use errors.Is.
package config

import "time"

// Biometric capture modes.
const (
	BiometricManual  = "manual"
	BiometricDerived = "derived"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Player identity shown in session snapshots.
	PlayerName   string `koanf:"player_name"`
	PlayerAge    int    `koanf:"player_age"`
	PlayerJersey int    `koanf:"player_jersey"`

	// AdvanceMinutes is the game time consumed per checkpoint (1.0..3.5).
	AdvanceMinutes float64 `koanf:"advance_minutes"`

	// BiometricMode is the default capture mode offered to clients: manual or derived.
	BiometricMode string `koanf:"biometric_mode"`

	// Event block pacing.
	ActionIntervalMS int `koanf:"action_interval_ms"`
	SurveyDelayMS    int `koanf:"survey_delay_ms"`
	ResetDelayMS     int `koanf:"reset_delay_ms"`

	// RandomSeed seeds action draws and derived sAA perturbation. Zero picks a time-based seed.
	RandomSeed int64 `koanf:"random_seed"`

	// ArchiveQueueSize bounds the in-memory archive queue.
	ArchiveQueueSize int `koanf:"archive_queue_size"`

	// ArchiveWorkers sets the number of archive workers.
	ArchiveWorkers int `koanf:"archive_workers"`

	// SQLitePath enables the SQLite archive when non-empty.
	SQLitePath string `koanf:"sqlite_path"`

	// MetricsInterval is how often system and service gauges are refreshed, e.g. "10s".
	MetricsInterval string `koanf:"metrics_interval"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		PlayerName:       "Player",
		PlayerAge:        20,
		PlayerJersey:     23,
		AdvanceMinutes:   2.5,
		BiometricMode:    BiometricManual,
		ActionIntervalMS: 500,
		SurveyDelayMS:    1000,
		ResetDelayMS:     2000,
		ArchiveQueueSize: 64,
		ArchiveWorkers:   1,
		MetricsInterval:  "10s",
	}
}

// ActionInterval returns the pause between simulated actions.
func (c *Config) ActionInterval() time.Duration {
	return time.Duration(c.ActionIntervalMS) * time.Millisecond
}

// SurveyDelay returns the pause between the last action and the survey prompt.
func (c *Config) SurveyDelay() time.Duration {
	return time.Duration(c.SurveyDelayMS) * time.Millisecond
}

// ResetDelay returns how long a committed checkpoint stays visible.
func (c *Config) ResetDelay() time.Duration {
	return time.Duration(c.ResetDelayMS) * time.Millisecond
}

// MetricsSchedule returns the cron schedule for the metrics refresh job.
func (c *Config) MetricsSchedule() string {
	return "@every " + c.MetricsInterval
}

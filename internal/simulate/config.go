package simulate

import (
	"fmt"
	"time"
)

// Biometric capture modes.
const (
	ModeManual  = "manual"
	ModeDerived = "derived"
)

// Report formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL        string        // Service URL; empty runs an in-process session
	Seed           int64         // Seeds survey answers and manual readings
	Checkpoints    int           // Number of checkpoints to play (1..7)
	BiometricMode  string        // manual or derived
	AdvanceMinutes float64       // Clock advancement per checkpoint
	Timeout        time.Duration // Per-phase wait and HTTP request timeout
	Output         string        // Report path; empty writes to stdout
	Format         string        // yaml or json
	Verbose        bool          // Log every checkpoint
}

// Validate checks the run parameters.
func (c *Config) Validate() error {
	switch {
	case c.Checkpoints < 1 || c.Checkpoints > MaxCheckpoints:
		return fmt.Errorf("%w: checkpoints %d outside 1..%d", ErrInvalidConfig, c.Checkpoints, MaxCheckpoints)
	case c.BiometricMode != ModeManual && c.BiometricMode != ModeDerived:
		return fmt.Errorf("%w: biometric mode %q", ErrInvalidConfig, c.BiometricMode)
	case c.Format != FormatYAML && c.Format != FormatJSON:
		return fmt.Errorf("%w: format %q", ErrInvalidConfig, c.Format)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

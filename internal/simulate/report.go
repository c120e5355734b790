package simulate

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/okian/courtside/internal/domain/analytics"
	"github.com/okian/courtside/internal/domain/model"
)

const reportFilePermission = 0o600

// Stats holds run statistics.
type Stats struct {
	Committed int           `json:"committed" yaml:"committed"`
	Failed    int           `json:"failed" yaml:"failed"`
	StartTime time.Time     `json:"start_time" yaml:"start_time"`
	EndTime   time.Time     `json:"end_time" yaml:"end_time"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// Report is the outcome of a simulation run.
type Report struct {
	SessionID     string                 `json:"session_id" yaml:"session_id"`
	Seed          int64                  `json:"seed" yaml:"seed"`
	BiometricMode string                 `json:"biometric_mode" yaml:"biometric_mode"`
	Target        string                 `json:"target" yaml:"target"`
	Records       []model.TimelineRecord `json:"records" yaml:"records"`
	Dashboard     analytics.Dashboard    `json:"dashboard" yaml:"dashboard"`
	Stats         Stats                  `json:"stats" yaml:"stats"`
}

// Encode writes the report in the given format.
func (r *Report) Encode(w io.Writer, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: format %q", ErrInvalidConfig, format)
	}
}

// Save writes the report to path, or to stdout when path is empty.
func (r *Report) Save(path, format string) error {
	if path == "" {
		return r.Encode(os.Stdout, format)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, reportFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if err := r.Encode(f, format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

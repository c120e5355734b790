package service

import (
	"github.com/okian/courtside/internal/adapters/recorder"
	"github.com/okian/courtside/internal/domain/clock"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/timeline"
	"github.com/okian/courtside/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithPlayerProfile sets the tracked player's identity.
func WithPlayerProfile(p model.PlayerProfile) Option {
	return func(s *Service) {
		s.profile = p
	}
}

// WithAdvanceMinutes sets the initial game time consumed per checkpoint.
func WithAdvanceMinutes(minutes float64) Option {
	return func(s *Service) {
		if minutes >= timeline.MinAdvanceMinutes && minutes <= timeline.MaxAdvanceMinutes {
			s.advanceMinutes = minutes
		}
	}
}

// WithBiometricMode sets the default capture mode: manual or derived.
func WithBiometricMode(mode string) Option {
	return func(s *Service) {
		if mode == BiometricManual || mode == BiometricDerived {
			s.biometricMode = mode
		}
	}
}

// WithPacing sets the event block delays.
func WithPacing(p timeline.Pacing) Option {
	return func(s *Service) {
		s.pacing = p
	}
}

// WithRandomSeed makes action draws and derived readings reproducible.
func WithRandomSeed(seed int64) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithArchiveQueueSize bounds the archive queue.
func WithArchiveQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithArchiveWorkers sets the number of archive workers.
func WithArchiveWorkers(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithSQLitePath archives records into a SQLite database at path.
func WithSQLitePath(path string) Option {
	return func(s *Service) {
		s.sqlitePath = path
	}
}

// WithRecorder sets the archive directly. It takes precedence over WithSQLitePath.
func WithRecorder(r recorder.Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithClockOptions passes options through to the game clock.
func WithClockOptions(opts ...clock.Option) Option {
	return func(s *Service) {
		s.clockOpts = append(s.clockOpts, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

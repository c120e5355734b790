package timeline

import (
	"math/rand"
	"time"

	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/pkg/logger"
)

// Pacing holds the delays between visible steps of a cycle.
type Pacing struct {
	ActionInterval time.Duration
	SurveyDelay    time.Duration
	ResetDelay     time.Duration
}

// DefaultPacing returns the interactive delays.
func DefaultPacing() Pacing {
	return Pacing{
		ActionInterval: 500 * time.Millisecond,
		SurveyDelay:    time.Second,
		ResetDelay:     2 * time.Second,
	}
}

// Option applies a configuration option to the Orchestrator.
type Option func(*Orchestrator)

// WithPacing overrides the step delays. Zero delays run steps back to back.
func WithPacing(p Pacing) Option {
	return func(o *Orchestrator) {
		o.pacing = p
	}
}

// WithRand sets the random source for derived biometric perturbation.
func WithRand(rng *rand.Rand) Option {
	return func(o *Orchestrator) {
		if rng != nil {
			o.rng = rng
		}
	}
}

// WithAdvanceMinutes sets the initial clock advancement per checkpoint.
// Out-of-range values are ignored.
func WithAdvanceMinutes(minutes float64) Option {
	return func(o *Orchestrator) {
		if s, err := advanceSeconds(minutes); err == nil {
			o.advanceSeconds = s
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithPhaseListener registers a callback invoked after every phase change.
func WithPhaseListener(fn func(Snapshot)) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.phaseListeners = append(o.phaseListeners, fn)
		}
	}
}

// WithActionListener registers a callback invoked for every generated action.
func WithActionListener(fn func(point int, tag model.ActionTag)) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.actionListeners = append(o.actionListeners, fn)
		}
	}
}

// WithNow replaces the time source used for record timestamps.
func WithNow(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDFunc replaces the record ID generator.
func WithIDFunc(fn func() string) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.newID = fn
		}
	}
}

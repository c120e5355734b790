package clock

import (
	"time"

	"github.com/okian/courtside/pkg/logger"
)

// Ticker is the subset of time.Ticker the clock depends on.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

func newRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// Option applies a configuration option to the Clock.
type Option func(*Clock)

// WithTickerFunc replaces the ticker factory, mainly for tests.
func WithTickerFunc(f TickerFunc) Option {
	return func(c *Clock) {
		if f != nil {
			c.newTicker = f
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Clock) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithQuarterListener registers a callback for quarter changes.
func WithQuarterListener(fn func(from, to int)) Option {
	return func(c *Clock) {
		if fn != nil {
			c.quarterListeners = append(c.quarterListeners, fn)
		}
	}
}

// WithTickListener registers a callback invoked with the state after every decrement.
func WithTickListener(fn func(State)) Option {
	return func(c *Clock) {
		if fn != nil {
			c.tickListeners = append(c.tickListeners, fn)
		}
	}
}

// Package clock implements the countdown game clock with live, fast and manual modes.
package clock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

// Clock constants.
const (
	QuarterSeconds = 600
	MaxQuarter     = 4

	liveInterval = time.Second
	liveStep     = 1
	fastInterval = 200 * time.Millisecond
	fastStep     = 5
	manualStep   = 30
)

// Mode selects the playback speed.
type Mode string

// Playback modes.
const (
	ModeLive   Mode = "live"
	ModeFast   Mode = "fast"
	ModeManual Mode = "manual"
)

// ParseMode converts a wire string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeLive, ModeFast, ModeManual:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// State is a snapshot of the clock.
type State struct {
	Quarter   int  `json:"quarter"`
	Remaining int  `json:"remaining"`
	Running   bool `json:"running"`
	Mode      Mode `json:"mode"`
}

// Clock counts down each quarter. At most one ticker goroutine is live;
// ticks from a superseded ticker are dropped by generation.
type Clock struct {
	mu         sync.Mutex
	state      State
	generation uint64
	stopTicker func()

	newTicker        TickerFunc
	quarterListeners []func(from, to int)
	tickListeners    []func(State)
	logger           logger.Logger
}

// New creates a paused clock at the start of the first quarter in live mode.
func New(opts ...Option) *Clock {
	c := &Clock{
		state:     State{Quarter: 1, Remaining: QuarterSeconds, Mode: ModeLive},
		newTicker: newRealTicker,
		logger:    logger.Get().Named("clock"),
	}
	for _, opt := range opts {
		opt(c)
	}
	metrics.UpdateClockQuarter(c.state.Quarter)
	metrics.UpdateClockRemaining(c.state.Remaining)
	return c
}

// Snapshot returns the current state.
func (c *Clock) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Quarter returns the current quarter.
func (c *Clock) Quarter() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Quarter
}

// Start runs the periodic ticker for the current mode until paused or ctx ends.
func (c *Clock) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Mode == ModeManual {
		return ErrManualMode
	}
	if c.state.Remaining == 0 {
		return ErrQuarterOver
	}
	if c.state.Running {
		return nil
	}

	interval, step := liveInterval, liveStep
	if c.state.Mode == ModeFast {
		interval, step = fastInterval, fastStep
	}

	c.stopLocked()
	c.generation++
	gen := c.generation
	t := c.newTicker(interval)
	done := make(chan struct{})
	c.stopTicker = func() {
		t.Stop()
		close(done)
	}
	c.state.Running = true

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.pauseGeneration(gen)
				return
			case <-done:
				return
			case <-t.C():
				if !c.tick(gen, step) {
					return
				}
			}
		}
	}()

	c.logger.Debug(ctx, "clock started",
		logger.String("mode", string(c.state.Mode)),
		logger.Int("remaining", c.state.Remaining),
	)
	return nil
}

// Pause stops the ticker. Pausing a paused clock is a no-op.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// SetMode switches playback speed and always pauses.
func (c *Clock) SetMode(m Mode) error {
	if _, err := ParseMode(string(m)); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.state.Mode = m
	return nil
}

// Advance decrements by the manual step. Only valid in manual mode.
func (c *Clock) Advance() error {
	c.mu.Lock()
	if c.state.Mode != ModeManual {
		c.mu.Unlock()
		return ErrNotManual
	}
	st := c.decrementLocked(manualStep)
	c.mu.Unlock()

	c.notifyTick(st)
	return nil
}

// AdvanceTime fast-forwards by seconds regardless of mode.
func (c *Clock) AdvanceTime(seconds int) error {
	if seconds < 0 {
		return ErrNegativeDelta
	}
	c.mu.Lock()
	st := c.decrementLocked(seconds)
	c.mu.Unlock()

	c.notifyTick(st)
	return nil
}

// NextQuarter resets the countdown, pauses and moves to the next quarter,
// staying at the final quarter once reached.
func (c *Clock) NextQuarter() State {
	c.mu.Lock()
	c.stopLocked()
	from := c.state.Quarter
	if c.state.Quarter < MaxQuarter {
		c.state.Quarter++
	}
	c.state.Remaining = QuarterSeconds
	st := c.state
	listeners := c.quarterListeners
	c.mu.Unlock()

	metrics.UpdateClockQuarter(st.Quarter)
	metrics.UpdateClockRemaining(st.Remaining)
	if st.Quarter != from {
		c.logger.Info(context.Background(), "quarter changed", logger.Int("from", from), logger.Int("to", st.Quarter))
		for _, fn := range listeners {
			fn(from, st.Quarter)
		}
	}
	return st
}

// tick applies one periodic decrement. It reports whether the ticker should keep running.
func (c *Clock) tick(gen uint64, step int) bool {
	c.mu.Lock()
	if gen != c.generation || !c.state.Running {
		c.mu.Unlock()
		return false
	}
	st := c.decrementLocked(step)
	c.mu.Unlock()

	metrics.RecordClockTick(string(st.Mode))
	c.notifyTick(st)
	return st.Running
}

func (c *Clock) pauseGeneration(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.generation {
		c.stopLocked()
	}
}

// decrementLocked subtracts seconds, flooring at zero and auto-pausing there.
func (c *Clock) decrementLocked(seconds int) State {
	c.state.Remaining -= seconds
	if c.state.Remaining <= 0 {
		c.state.Remaining = 0
		c.stopLocked()
	}
	metrics.UpdateClockRemaining(c.state.Remaining)
	return c.state
}

func (c *Clock) stopLocked() {
	if c.stopTicker != nil {
		c.stopTicker()
		c.stopTicker = nil
	}
	c.generation++
	c.state.Running = false
}

func (c *Clock) notifyTick(st State) {
	for _, fn := range c.tickListeners {
		fn(st)
	}
}

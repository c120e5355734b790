// Package timeline drives the checkpoint cycle: action generation, survey and
// biometric capture, and commit of a TimelineRecord into the session history.
package timeline

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/courtside/internal/domain/actions"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/scoring"
	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

// Advance duration bounds in minutes.
const (
	MinAdvanceMinutes     = 1.0
	MaxAdvanceMinutes     = 3.5
	DefaultAdvanceMinutes = 2.5
)

// ActionLogger receives every generated action and clears a point's counters.
type ActionLogger interface {
	LogAction(point int, tag model.ActionTag)
	ResetCounts(point int)
}

// StatusSink receives on-court/bench transitions.
type StatusSink interface {
	SetStatus(status model.PlayerStatus)
}

// Clock is the part of the game clock the orchestrator drives.
type Clock interface {
	AdvanceTime(seconds int) error
	Quarter() int
}

// RecordSink is notified exactly once per committed checkpoint.
type RecordSink interface {
	OnTimelineRecordReady(ctx context.Context, rec model.TimelineRecord) error
}

// cycle is the draft of the active event block.
type cycle struct {
	point   int
	quarter int
	started time.Time
	actions []model.ActionTag
	survey  *model.SurveyResponses
	cancel  context.CancelFunc
}

// notice is one queued listener notification: a phase snapshot or a
// generated action of cycle.
type notice struct {
	phase *Snapshot
	cycle *cycle
	point int
	tag   model.ActionTag
}

// Orchestrator owns the phase machine. All state transitions happen under mu;
// listeners and sinks are invoked after it is released.
type Orchestrator struct {
	mu             sync.Mutex
	phase          Phase
	pointer        int
	completed      int
	advanceSeconds int
	active         *cycle
	commitGen      uint64
	changed        chan struct{}
	closed         bool

	// pending listener notices, delivered in order under notifyMu.
	pending  []notice
	notifyMu sync.Mutex

	root       context.Context
	rootCancel context.CancelFunc

	source actions.Source
	player ActionLogger
	status StatusSink
	clock  Clock
	sink   RecordSink

	pacing          Pacing
	rng             *rand.Rand
	now             func() time.Time
	newID           func() string
	phaseListeners  []func(Snapshot)
	actionListeners []func(point int, tag model.ActionTag)
	logger          logger.Logger
}

// New creates an idle orchestrator at timeline point 1.
func New(source actions.Source, player ActionLogger, status StatusSink, clock Clock, sink RecordSink, opts ...Option) *Orchestrator {
	root, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		phase:          PhaseIdle,
		pointer:        1,
		advanceSeconds: int(math.Round(DefaultAdvanceMinutes * 60)),
		changed:        make(chan struct{}),
		root:           root,
		rootCancel:     cancel,
		source:         source,
		player:         player,
		status:         status,
		clock:          clock,
		sink:           sink,
		pacing:         DefaultPacing(),
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // simulation randomness
		now:            time.Now,
		newID:          uuid.NewString,
		logger:         logger.Get().Named("timeline"),
	}
	for _, opt := range opts {
		opt(o)
	}
	metrics.UpdatePhase(int(o.phase))
	metrics.UpdateTimelinePointer(o.pointer)
	return o
}

// Start begins a new event block.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	switch {
	case o.closed:
		o.mu.Unlock()
		return ErrClosed
	case o.phase != PhaseIdle:
		o.mu.Unlock()
		return fmt.Errorf("%w: phase %s", ErrCycleActive, o.phase)
	case o.completed >= model.MaxTimelinePoints:
		o.mu.Unlock()
		return ErrTimelineComplete
	}

	cctx, cancel := context.WithCancel(o.root)
	c := &cycle{
		point:   o.pointer,
		quarter: o.clock.Quarter(),
		started: o.now(),
		cancel:  cancel,
	}
	o.active = c
	o.setPhaseLocked(PhaseGenerating)
	tags := o.source.Generate()
	o.mu.Unlock()

	metrics.RecordCycleStarted()
	o.logger.Info(ctx, "event block started",
		logger.Int("point", c.point),
		logger.Int("quarter", c.quarter),
		logger.Int("actions", len(tags)),
	)
	o.notify()

	go o.run(cctx, c, tags)
	return nil
}

// run paces the generated actions and hands over to survey capture.
// Every step re-checks that c is still the active cycle before writing.
func (o *Orchestrator) run(ctx context.Context, c *cycle, tags []model.ActionTag) {
	for i, tag := range tags {
		if i > 0 && !sleep(ctx, o.pacing.ActionInterval) {
			return
		}
		o.mu.Lock()
		if o.active != c {
			o.mu.Unlock()
			return
		}
		o.player.LogAction(c.point, tag)
		c.actions = append(c.actions, tag)
		if len(o.actionListeners) > 0 {
			o.pending = append(o.pending, notice{cycle: c, point: c.point, tag: tag})
		}
		o.mu.Unlock()
		o.notify()
	}

	o.mu.Lock()
	if o.active != c {
		o.mu.Unlock()
		return
	}
	o.status.SetStatus(model.StatusBench)
	o.mu.Unlock()

	if !sleep(ctx, o.pacing.SurveyDelay) {
		return
	}

	o.mu.Lock()
	if o.active != c {
		o.mu.Unlock()
		return
	}
	o.setPhaseLocked(PhaseAwaitingSurvey)
	o.mu.Unlock()
	o.notify()
}

// SubmitSurvey records the three ratings for the active block.
func (o *Orchestrator) SubmitSurvey(ctx context.Context, s model.SurveyResponses) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		metrics.RecordCaptureRejected("survey")
		return ErrClosed
	}
	if o.phase != PhaseAwaitingSurvey {
		phase := o.phase
		o.mu.Unlock()
		metrics.RecordCaptureRejected("survey")
		return fmt.Errorf("%w: survey in phase %s", ErrInvalidPhase, phase)
	}
	if err := s.Validate(); err != nil {
		o.mu.Unlock()
		metrics.RecordCaptureRejected("survey")
		return err
	}
	o.active.survey = &s
	o.setPhaseLocked(PhaseAwaitingBiometric)
	o.mu.Unlock()

	o.logger.Debug(ctx, "survey captured",
		logger.Int("arousal", s.Arousal),
		logger.Int("momentum", s.Momentum),
		logger.Int("flow", s.Flow),
	)
	o.notify()
	return nil
}

// SubmitBiometric records a manually entered sAA value and commits the block.
func (o *Orchestrator) SubmitBiometric(ctx context.Context, value int) (model.TimelineRecord, error) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		metrics.RecordCaptureRejected("biometric")
		return model.TimelineRecord{}, ErrClosed
	}
	if o.phase != PhaseAwaitingBiometric {
		phase := o.phase
		o.mu.Unlock()
		metrics.RecordCaptureRejected("biometric")
		return model.TimelineRecord{}, fmt.Errorf("%w: biometric in phase %s", ErrInvalidPhase, phase)
	}
	if err := model.ValidateBiometricEntry(value); err != nil {
		o.mu.Unlock()
		metrics.RecordCaptureRejected("biometric")
		return model.TimelineRecord{}, err
	}
	return o.commitLocked(ctx, value, scoring.BiometricLevelFor(value), model.SourceManual)
}

// SubmitDerivedBiometric computes the sAA value from the captured survey and commits the block.
func (o *Orchestrator) SubmitDerivedBiometric(ctx context.Context) (model.TimelineRecord, error) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		metrics.RecordCaptureRejected("biometric")
		return model.TimelineRecord{}, ErrClosed
	}
	if o.phase != PhaseAwaitingBiometric {
		phase := o.phase
		o.mu.Unlock()
		metrics.RecordCaptureRejected("biometric")
		return model.TimelineRecord{}, fmt.Errorf("%w: biometric in phase %s", ErrInvalidPhase, phase)
	}
	b := scoring.BiometricFromSurvey(o.rng, *o.active.survey)
	return o.commitLocked(ctx, b.Value, b.Level, model.SourceDerived)
}

// commitLocked assembles the record, releases mu and runs the commit side effects.
func (o *Orchestrator) commitLocked(ctx context.Context, value int, level model.BiometricLevel, src model.BiometricSource) (model.TimelineRecord, error) {
	c := o.active
	survey := *c.survey
	rec := model.TimelineRecord{
		ID:              o.newID(),
		TimelinePoint:   c.point,
		Quarter:         c.quarter,
		Timestamp:       c.started,
		Actions:         append([]model.ActionTag(nil), c.actions...),
		Survey:          &survey,
		BiometricValue:  &value,
		BiometricLevel:  &level,
		BiometricSource: src,
	}
	c.cancel()
	o.active = nil
	o.completed++
	if o.pointer < model.MaxTimelinePoints {
		o.pointer++
	}
	o.commitGen++
	gen := o.commitGen
	seconds := o.advanceSeconds
	o.setPhaseLocked(PhaseCommitting)
	o.mu.Unlock()

	var sinkErr error
	if o.sink != nil {
		if sinkErr = o.sink.OnTimelineRecordReady(ctx, rec.Clone()); sinkErr != nil {
			metrics.RecordErrorByComponent("timeline", "sink")
			o.logger.Error(ctx, "record sink failed", logger.Int("point", rec.TimelinePoint), logger.Error(sinkErr))
		}
	}
	o.player.ResetCounts(rec.TimelinePoint)
	if err := o.clock.AdvanceTime(seconds); err != nil {
		o.logger.Warn(ctx, "clock advance failed", logger.Error(err))
	}

	metrics.RecordCycleCompleted()
	metrics.RecordPerformanceScore(float64(scoring.PerformanceScore(rec.Actions)))
	metrics.RecordBiometricValue(string(src), float64(value))
	o.logger.Info(ctx, "checkpoint committed",
		logger.Int("point", rec.TimelinePoint),
		logger.Int("biometric", value),
		logger.String("level", string(level)),
		logger.String("source", string(src)),
	)
	o.notify()

	go o.finishCommit(gen)

	if sinkErr != nil {
		return rec, fmt.Errorf("commit point %d: %w", rec.TimelinePoint, sinkErr)
	}
	return rec, nil
}

// finishCommit returns the player to court and the machine to Idle after the reset delay.
func (o *Orchestrator) finishCommit(gen uint64) {
	if !sleep(o.root, o.pacing.ResetDelay) {
		return
	}
	o.mu.Lock()
	if o.phase != PhaseCommitting || o.commitGen != gen {
		o.mu.Unlock()
		return
	}
	o.status.SetStatus(model.StatusOnCourt)
	o.setPhaseLocked(PhaseIdle)
	o.mu.Unlock()
	o.notify()
}

// Cancel abandons the active block. Nothing is appended, the point's
// running counters are cleared and no further action notices of the block
// are delivered once Cancel returns.
func (o *Orchestrator) Cancel(ctx context.Context) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrClosed
	}
	switch o.phase {
	case PhaseGenerating, PhaseAwaitingSurvey, PhaseAwaitingBiometric:
	default:
		phase := o.phase
		o.mu.Unlock()
		return fmt.Errorf("%w: phase %s", ErrNothingToCancel, phase)
	}
	c := o.abandonLocked()
	o.setPhaseLocked(PhaseIdle)
	o.mu.Unlock()

	metrics.RecordCycleCancelled()
	o.logger.Info(ctx, "event block cancelled", logger.Int("point", c.point))
	o.notify()
	return nil
}

// abandonLocked drops the active cycle with its queued action notices and
// returns the player to court. It returns the abandoned cycle or nil.
func (o *Orchestrator) abandonLocked() *cycle {
	c := o.active
	if c == nil {
		return nil
	}
	c.cancel()
	o.active = nil
	kept := o.pending[:0]
	for _, n := range o.pending {
		if n.cycle != c {
			kept = append(kept, n)
		}
	}
	o.pending = kept
	o.player.ResetCounts(c.point)
	o.status.SetStatus(model.StatusOnCourt)
	return c
}

// SetAdvanceDuration sets the clock advancement per checkpoint in minutes.
func (o *Orchestrator) SetAdvanceDuration(minutes float64) error {
	s, err := advanceSeconds(minutes)
	if err != nil {
		return err
	}
	o.mu.Lock()
	o.advanceSeconds = s
	o.mu.Unlock()
	return nil
}

// AdvanceSeconds returns the configured clock advancement per checkpoint.
func (o *Orchestrator) AdvanceSeconds() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.advanceSeconds
}

// Snapshot returns the current phase, pointer and draft.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// Await blocks until the orchestrator reaches phase or ctx ends.
func (o *Orchestrator) Await(ctx context.Context, phase Phase) error {
	for {
		o.mu.Lock()
		if o.phase == phase {
			o.mu.Unlock()
			return nil
		}
		ch := o.changed
		o.mu.Unlock()

		select {
		case <-ctx.Done():
			return fmt.Errorf("await %s: %w", phase, ctx.Err())
		case <-ch:
		}
	}
}

// Close abandons any active block and returns the machine to Idle. Every
// later Start, capture or Cancel fails with ErrClosed.
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	if c := o.abandonLocked(); c != nil {
		metrics.RecordCycleCancelled()
	}
	if o.phase != PhaseIdle {
		o.setPhaseLocked(PhaseIdle)
	}
	o.mu.Unlock()

	o.rootCancel()
	o.notify()
	return nil
}

func (o *Orchestrator) setPhaseLocked(p Phase) {
	o.phase = p
	close(o.changed)
	o.changed = make(chan struct{})
	metrics.UpdatePhase(int(p))
	metrics.UpdateTimelinePointer(o.pointer)
	if len(o.phaseListeners) > 0 {
		snap := o.snapshotLocked()
		o.pending = append(o.pending, notice{phase: &snap})
	}
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	s := Snapshot{
		Phase:          o.phase,
		TimelinePoint:  o.pointer,
		Completed:      o.completed,
		CanStart:       !o.closed && o.phase == PhaseIdle && o.completed < model.MaxTimelinePoints,
		AdvanceSeconds: o.advanceSeconds,
	}
	if o.active != nil {
		s.DraftActions = append([]model.ActionTag(nil), o.active.actions...)
		if o.active.survey != nil {
			sv := *o.active.survey
			s.DraftSurvey = &sv
		}
	}
	return s
}

// notify delivers queued notices in order. Must be called without mu held.
func (o *Orchestrator) notify() {
	o.notifyMu.Lock()
	defer o.notifyMu.Unlock()

	o.mu.Lock()
	queued := o.pending
	o.pending = nil
	o.mu.Unlock()

	for _, n := range queued {
		if n.phase != nil {
			for _, fn := range o.phaseListeners {
				fn(*n.phase)
			}
			continue
		}
		for _, fn := range o.actionListeners {
			fn(n.point, n.tag)
		}
	}
}

func advanceSeconds(minutes float64) (int, error) {
	if math.IsNaN(minutes) || minutes < MinAdvanceMinutes || minutes > MaxAdvanceMinutes {
		return 0, fmt.Errorf("%w: %.2f minutes outside %.1f..%.1f", ErrInvalidDuration, minutes, MinAdvanceMinutes, MaxAdvanceMinutes)
	}
	return int(math.Round(minutes * 60)), nil
}

// sleep waits d or until ctx ends. It reports whether the wait completed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

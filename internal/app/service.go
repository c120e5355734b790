// Package service wires the session components together and implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/courtside/internal/adapters/http/stream"
	archivequeue "github.com/okian/courtside/internal/adapters/mq/queue"
	workerpool "github.com/okian/courtside/internal/adapters/mq/worker"
	"github.com/okian/courtside/internal/adapters/recorder"
	"github.com/okian/courtside/internal/adapters/repository"
	"github.com/okian/courtside/internal/domain/actions"
	"github.com/okian/courtside/internal/domain/analytics"
	"github.com/okian/courtside/internal/domain/clock"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/player"
	"github.com/okian/courtside/internal/domain/timeline"
	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

const stopTimeout = 10 * time.Second

// Biometric capture modes.
const (
	BiometricManual  = "manual"
	BiometricDerived = "derived"
)

// actionEvent is the stream payload for a generated action.
type actionEvent struct {
	Point  int             `json:"timeline_point"`
	Action model.ActionTag `json:"action"`
}

// quarterEvent is the stream payload for a quarter change.
type quarterEvent struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Service owns one session: the player, the game clock, the timeline
// orchestrator, the committed history and the archive pipeline.
type Service struct {
	mu sync.RWMutex

	id        string
	player    *player.Player
	clock     *clock.Clock
	generator *actions.Generator
	timeline  *timeline.Orchestrator
	history   *repository.HistoryStore
	queue     *archivequeue.InMemoryQueue
	pool      *workerpool.Pool
	recorder  recorder.Recorder
	hub       *stream.Hub

	// Configuration
	profile        model.PlayerProfile
	advanceMinutes float64
	biometricMode  string
	pacing         timeline.Pacing
	seed           int64
	queueSize      int
	workerCount    int
	sqlitePath     string
	clockOpts      []clock.Option

	// State
	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a Service. Components that need a context or may fail to
// open, such as the archive recorder, are created by Start.
func New(opts ...Option) *Service {
	s := &Service{
		id:             uuid.NewString(),
		profile:        model.PlayerProfile{Name: "Player", Age: 20, Jersey: 23},
		advanceMinutes: timeline.DefaultAdvanceMinutes,
		biometricMode:  BiometricManual,
		pacing:         timeline.DefaultPacing(),
		queueSize:      64,
		workerCount:    1,
		logger:         logger.Get().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.seed == 0 {
		s.seed = time.Now().UnixNano()
	}

	s.hub = stream.NewHub()
	s.player = player.New(player.WithProfile(s.profile))
	s.clock = clock.New(append([]clock.Option{
		clock.WithTickListener(func(st clock.State) {
			s.hub.Broadcast(stream.TypeClock, st)
		}),
		clock.WithQuarterListener(func(from, to int) {
			s.hub.Broadcast(stream.TypeQuarter, quarterEvent{From: from, To: to})
		}),
	}, s.clockOpts...)...)
	s.generator = actions.NewGenerator(actions.WithSeed(s.seed))
	s.history = repository.NewHistoryStore()
	s.queue = archivequeue.NewInMemoryQueue(archivequeue.WithCapacity(s.queueSize))
	s.timeline = timeline.New(s.generator, s.player, s.player, s.clock, s,
		timeline.WithPacing(s.pacing),
		timeline.WithAdvanceMinutes(s.advanceMinutes),
		timeline.WithRand(rand.New(rand.NewSource(s.seed+1))), //nolint:gosec // simulation randomness
		timeline.WithPhaseListener(func(snap timeline.Snapshot) {
			s.hub.Broadcast(stream.TypePhase, snap)
		}),
		timeline.WithActionListener(func(point int, tag model.ActionTag) {
			s.hub.Broadcast(stream.TypeAction, actionEvent{Point: point, Action: tag})
		}),
	)
	return s
}

// Start opens the archive, starts its workers and the stream hub.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting session service...", logger.String("session", s.id))

	if s.recorder == nil {
		if s.sqlitePath == "" {
			s.recorder = recorder.NewNoopRecorder()
		} else {
			rec, err := recorder.NewSQLiteRecorder(ctx, s.sqlitePath)
			if err != nil {
				return fmt.Errorf("open archive: %w", err)
			}
			s.recorder = rec
			s.logger.Info(ctx, "using sqlite archive", logger.String("path", s.sqlitePath))
		}
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.recorder)
	s.pool.Start(runCtx)
	go s.hub.Run(runCtx)

	s.started = true
	s.logger.Info(ctx, "session service started",
		logger.String("session", s.id),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Float64("advanceMinutes", s.advanceMinutes),
	)
	return nil
}

// Stop halts the session, drains the archive queue and closes the recorder.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping session service...")

	_ = s.timeline.Close()
	s.clock.Pause()

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "archive workers did not drain", logger.Error(err))
	}
	if err := s.recorder.Close(); err != nil {
		s.logger.Error(ctx, "closing archive failed", logger.Error(err))
	}
	s.hub.Stop()
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "session service stopped")
}

// OnTimelineRecordReady appends the committed record to the history, queues
// it for archiving and pushes it to stream clients. Only the history append
// can fail the commit; archive problems are logged.
func (s *Service) OnTimelineRecordReady(ctx context.Context, rec model.TimelineRecord) error {
	if err := s.history.Append(ctx, rec); err != nil {
		return fmt.Errorf("append history: %w", err)
	}

	job := archivequeue.Job{SessionID: s.id, Record: rec, EnqueuedAt: time.Now()}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		metrics.RecordErrorByComponent("service", "archive_enqueue")
		s.logger.Warn(ctx, "archive enqueue failed",
			logger.Int("point", rec.TimelinePoint),
			logger.Error(err),
		)
	}

	s.hub.Broadcast(stream.TypeRecord, rec)
	return nil
}

// SessionID returns the identifier records are archived under.
func (s *Service) SessionID() string { return s.id }

// BiometricMode returns the configured default capture mode.
func (s *Service) BiometricMode() string { return s.biometricMode }

// Snapshot returns the orchestrator state.
func (s *Service) Snapshot() timeline.Snapshot { return s.timeline.Snapshot() }

// Player returns the player state.
func (s *Service) Player() player.Snapshot { return s.player.Snapshot() }

// ClockState returns the clock state.
func (s *Service) ClockState() clock.State { return s.clock.Snapshot() }

// StartCycle begins the next event block.
func (s *Service) StartCycle(ctx context.Context) error {
	return s.timeline.Start(ctx)
}

// SubmitSurvey records the survey answers for the active block.
func (s *Service) SubmitSurvey(ctx context.Context, r model.SurveyResponses) error {
	return s.timeline.SubmitSurvey(ctx, r)
}

// SubmitBiometric commits the active block with a manual sAA reading.
func (s *Service) SubmitBiometric(ctx context.Context, value int) (model.TimelineRecord, error) {
	return s.timeline.SubmitBiometric(ctx, value)
}

// SubmitDerivedBiometric commits the active block with an sAA value derived from the survey.
func (s *Service) SubmitDerivedBiometric(ctx context.Context) (model.TimelineRecord, error) {
	return s.timeline.SubmitDerivedBiometric(ctx)
}

// CancelCycle abandons the active block.
func (s *Service) CancelCycle(ctx context.Context) error {
	return s.timeline.Cancel(ctx)
}

// SetAdvanceDuration sets the game time consumed per checkpoint.
func (s *Service) SetAdvanceDuration(minutes float64) error {
	return s.timeline.SetAdvanceDuration(minutes)
}

// AwaitPhase blocks until the orchestrator reaches phase or ctx ends.
func (s *Service) AwaitPhase(ctx context.Context, phase timeline.Phase) error {
	return s.timeline.Await(ctx, phase)
}

// StartClock runs the clock in its current mode.
func (s *Service) StartClock(ctx context.Context) error { return s.clock.Start(ctx) }

// PauseClock stops the clock.
func (s *Service) PauseClock() { s.clock.Pause() }

// AdvanceClock removes one manual step from the clock.
func (s *Service) AdvanceClock() error { return s.clock.Advance() }

// NextQuarter moves the clock to the next quarter.
func (s *Service) NextQuarter() clock.State { return s.clock.NextQuarter() }

// SetClockMode switches the clock speed.
func (s *Service) SetClockMode(m clock.Mode) error { return s.clock.SetMode(m) }

// Timeline returns the committed records in commit order.
func (s *Service) Timeline(ctx context.Context) []model.TimelineRecord {
	return s.history.List(ctx)
}

// Record returns the committed record for a timeline point.
func (s *Service) Record(ctx context.Context, point int) (model.TimelineRecord, error) {
	return s.history.Get(ctx, point)
}

// Dashboard computes the analytics views over the committed history.
func (s *Service) Dashboard(ctx context.Context) analytics.Dashboard {
	return analytics.Build(s.history.List(ctx))
}

// Hub returns the websocket event hub.
func (s *Service) Hub() *stream.Hub { return s.hub }

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	snap := s.timeline.Snapshot()
	clk := s.clock.Snapshot()
	stats := map[string]any{
		"sessionId":      s.id,
		"started":        s.started,
		"phase":          snap.Phase.String(),
		"timelinePoint":  snap.TimelinePoint,
		"completed":      snap.Completed,
		"records":        s.history.Count(ctx),
		"advanceSeconds": snap.AdvanceSeconds,
		"biometricMode":  s.biometricMode,
		"quarter":        clk.Quarter,
		"remaining":      clk.Remaining,
		"clockRunning":   clk.Running,
		"queueSize":      s.queueSize,
		"queueLength":    s.queue.Len(),
		"streamClients":  s.hub.Clients(),
	}
	if s.started {
		stats["workerCount"] = s.pool.Size()
		metrics.UpdateQueueSize(s.queue.Len())
		metrics.UpdateWorkerActiveCount(s.pool.Size())
	}
	return stats
}

package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/courtside/internal/adapters/recorder"
	service "github.com/okian/courtside/internal/app"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/timeline"
	"github.com/okian/courtside/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func newTestService(opts ...service.Option) *service.Service {
	base := []service.Option{
		service.WithPacing(timeline.Pacing{}),
		service.WithRandomSeed(7),
	}
	return service.New(append(base, opts...)...)
}

// playToBiometric runs one event block up to the biometric prompt.
func playToBiometric(ctx context.Context, svc *service.Service, survey model.SurveyResponses) {
	So(svc.AwaitPhase(ctx, timeline.PhaseIdle), ShouldBeNil)
	So(svc.StartCycle(ctx), ShouldBeNil)
	So(svc.AwaitPhase(ctx, timeline.PhaseAwaitingSurvey), ShouldBeNil)
	So(svc.SubmitSurvey(ctx, survey), ShouldBeNil)
	So(svc.Snapshot().Phase, ShouldEqual, timeline.PhaseAwaitingBiometric)
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			_, err := uuid.Parse(svc.SessionID())
			So(err, ShouldBeNil)
			So(svc.BiometricMode(), ShouldEqual, service.BiometricManual)

			snap := svc.Snapshot()
			So(snap.Phase, ShouldEqual, timeline.PhaseIdle)
			So(snap.TimelinePoint, ShouldEqual, 1)
			So(snap.AdvanceSeconds, ShouldEqual, 150)

			So(svc.ClockState().Remaining, ShouldEqual, 600)
			So(svc.Player().Status, ShouldEqual, model.StatusOnCourt)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithPlayerProfile(model.PlayerProfile{Name: "Kim", Age: 24, Jersey: 7}),
			service.WithAdvanceMinutes(1.5),
			service.WithBiometricMode(service.BiometricDerived),
			service.WithArchiveQueueSize(8),
			service.WithArchiveWorkers(2),
		)

		Convey("Then the options should be applied", func() {
			So(svc.Player().Profile.Name, ShouldEqual, "Kim")
			So(svc.Snapshot().AdvanceSeconds, ShouldEqual, 90)
			So(svc.BiometricMode(), ShouldEqual, service.BiometricDerived)
			So(svc.GetStats()["queueSize"], ShouldEqual, 8)
		})
	})

	Convey("Given out of range options", t, func() {
		svc := service.New(
			service.WithAdvanceMinutes(9),
			service.WithBiometricMode("auto"),
		)

		Convey("Then the defaults are kept", func() {
			So(svc.Snapshot().AdvanceSeconds, ShouldEqual, 150)
			So(svc.BiometricMode(), ShouldEqual, service.BiometricManual)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := newTestService(service.WithArchiveWorkers(3))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		Convey("When starting the service", func() {
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			Convey("Then it should be marked as started", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["workerCount"], ShouldEqual, 3)
			})

			Convey("Then starting again is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})

		Convey("When stopping the service", func() {
			So(svc.Start(ctx), ShouldBeNil)
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
			})

			Convey("Then new blocks are refused", func() {
				So(errors.Is(svc.StartCycle(ctx), timeline.ErrClosed), ShouldBeTrue)
			})
		})

		Convey("When stopping mid-block", func() {
			So(svc.Start(ctx), ShouldBeNil)
			playToBiometric(ctx, svc, model.DefaultSurvey())
			svc.Stop()

			Convey("Then the block is abandoned and later calls fail cleanly", func() {
				_, err := svc.SubmitBiometric(ctx, 70)
				So(errors.Is(err, timeline.ErrClosed), ShouldBeTrue)
				So(errors.Is(svc.CancelCycle(ctx), timeline.ErrClosed), ShouldBeTrue)
				So(svc.Snapshot().Phase, ShouldEqual, timeline.PhaseIdle)
				So(svc.GetStats()["records"], ShouldEqual, 0)
			})
		})
	})
}

func TestService_Checkpoint(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newTestService()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a block is played to the survey", func() {
			So(svc.StartCycle(ctx), ShouldBeNil)
			So(svc.AwaitPhase(ctx, timeline.PhaseAwaitingSurvey), ShouldBeNil)

			Convey("Then the player is benched with 3 to 5 actions drafted", func() {
				snap := svc.Snapshot()
				So(len(snap.DraftActions), ShouldBeBetweenOrEqual, 3, 5)
				So(svc.Player().Status, ShouldEqual, model.StatusBench)

				counts := svc.Player().Counts[1]
				So(counts.Total(), ShouldEqual, len(snap.DraftActions))
			})

			Convey("Then a second start is refused", func() {
				So(errors.Is(svc.StartCycle(ctx), timeline.ErrCycleActive), ShouldBeTrue)
			})

			Convey("Then cancelling returns to idle without a record", func() {
				So(svc.CancelCycle(ctx), ShouldBeNil)
				So(svc.Snapshot().Phase, ShouldEqual, timeline.PhaseIdle)
				So(svc.Timeline(ctx), ShouldBeEmpty)
				So(svc.Player().Status, ShouldEqual, model.StatusOnCourt)
			})
		})

		Convey("When a block is committed with a manual reading", func() {
			playToBiometric(ctx, svc, model.SurveyResponses{Arousal: 8, Momentum: 2, Flow: 9})
			rec, err := svc.SubmitBiometric(ctx, 95)
			So(err, ShouldBeNil)

			Convey("Then the record is stored and the clock advanced", func() {
				So(rec.TimelinePoint, ShouldEqual, 1)
				So(*rec.BiometricLevel, ShouldEqual, model.LevelHigh)
				So(rec.BiometricSource, ShouldEqual, model.SourceManual)

				stored, err := svc.Record(ctx, 1)
				So(err, ShouldBeNil)
				So(stored.ID, ShouldEqual, rec.ID)
				So(svc.Timeline(ctx), ShouldHaveLength, 1)
				So(svc.ClockState().Remaining, ShouldEqual, 450)
				So(svc.Snapshot().TimelinePoint, ShouldEqual, 2)
			})

			Convey("Then the session returns to idle with the player on court", func() {
				So(svc.AwaitPhase(ctx, timeline.PhaseIdle), ShouldBeNil)
				So(svc.Player().Status, ShouldEqual, model.StatusOnCourt)
				So(svc.Player().Counts, ShouldBeEmpty)
			})

			Convey("Then the dashboard summarizes it", func() {
				dash := svc.Dashboard(ctx)
				So(dash.Records, ShouldEqual, 1)
				So(dash.Summaries, ShouldHaveLength, 1)
				So(dash.Summaries[0].TimelinePoint, ShouldEqual, 1)
			})
		})

		Convey("When a block is committed with a derived reading", func() {
			playToBiometric(ctx, svc, model.SurveyResponses{Arousal: 5, Momentum: 5, Flow: 5})
			rec, err := svc.SubmitDerivedBiometric(ctx)

			Convey("Then the value is within the derived range", func() {
				So(err, ShouldBeNil)
				So(*rec.BiometricValue, ShouldBeBetweenOrEqual, 30, 160)
				So(rec.BiometricSource, ShouldEqual, model.SourceDerived)
			})
		})

		Convey("When an unknown point is requested", func() {
			_, err := svc.Record(ctx, 3)

			Convey("Then it is not found", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When the advance duration changes", func() {
			So(svc.SetAdvanceDuration(1.0), ShouldBeNil)
			So(errors.Is(svc.SetAdvanceDuration(0.5), timeline.ErrInvalidDuration), ShouldBeTrue)

			Convey("Then the next commit uses it", func() {
				playToBiometric(ctx, svc, model.DefaultSurvey())
				_, err := svc.SubmitBiometric(ctx, 60)
				So(err, ShouldBeNil)
				So(svc.ClockState().Remaining, ShouldEqual, 540)
			})
		})
	})
}

func TestService_FullTimeline(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newTestService()
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When all seven checkpoints are committed", func() {
			for i := 0; i < model.MaxTimelinePoints; i++ {
				playToBiometric(ctx, svc, model.SurveyResponses{Arousal: 1 + i, Momentum: 9 - i, Flow: 5})
				_, err := svc.SubmitBiometric(ctx, 40+10*i)
				So(err, ShouldBeNil)
			}
			So(svc.AwaitPhase(ctx, timeline.PhaseIdle), ShouldBeNil)

			Convey("Then the history is full and no eighth block starts", func() {
				So(svc.Timeline(ctx), ShouldHaveLength, model.MaxTimelinePoints)
				snap := svc.Snapshot()
				So(snap.TimelinePoint, ShouldEqual, model.MaxTimelinePoints)
				So(snap.CanStart, ShouldBeFalse)
				So(errors.Is(svc.StartCycle(ctx), timeline.ErrTimelineComplete), ShouldBeTrue)
			})

			Convey("Then four correlations are reported", func() {
				dash := svc.Dashboard(ctx)
				So(dash.Records, ShouldEqual, model.MaxTimelinePoints)
				So(dash.Correlations, ShouldHaveLength, 4)
			})
		})
	})
}

func TestService_Archive(t *testing.T) {
	Convey("Given a service archiving to sqlite", t, func() {
		path := filepath.Join(t.TempDir(), "archive.db")
		svc := newTestService(service.WithSQLitePath(path))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When two checkpoints are committed and the service stops", func() {
			for i := 0; i < 2; i++ {
				playToBiometric(ctx, svc, model.DefaultSurvey())
				_, err := svc.SubmitBiometric(ctx, 70)
				So(err, ShouldBeNil)
			}
			svc.Stop()

			Convey("Then both records were drained into the archive", func() {
				rec, err := recorder.NewSQLiteRecorder(ctx, path)
				So(err, ShouldBeNil)
				defer rec.Close()

				archived, err := rec.Records(ctx, svc.SessionID())
				So(err, ShouldBeNil)
				So(archived, ShouldHaveLength, 2)
				So(archived[0].TimelinePoint, ShouldEqual, 1)
				So(archived[1].TimelinePoint, ShouldEqual, 2)
			})
		})
	})

	Convey("Given an unopenable sqlite path", t, func() {
		svc := newTestService(service.WithSQLitePath(filepath.Join(t.TempDir(), "missing", "archive.db")))

		Convey("Then Start fails", func() {
			So(svc.Start(context.Background()), ShouldNotBeNil)
		})
	})
}

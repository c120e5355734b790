package simulate

import (
	"context"

	service "github.com/okian/courtside/internal/app"
	"github.com/okian/courtside/internal/domain/analytics"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/timeline"
)

// Driver plays checkpoints against a session.
type Driver interface {
	SessionID() string
	SetAdvanceDuration(ctx context.Context, minutes float64) error
	Start(ctx context.Context) error
	AwaitPhase(ctx context.Context, phase timeline.Phase) error
	SubmitSurvey(ctx context.Context, s model.SurveyResponses) error
	SubmitBiometric(ctx context.Context, value int) (model.TimelineRecord, error)
	SubmitDerivedBiometric(ctx context.Context) (model.TimelineRecord, error)
	Dashboard(ctx context.Context) (analytics.Dashboard, error)
	Close() error
}

// localDriver runs an in-process session with no pacing delays.
type localDriver struct {
	svc *service.Service
}

func newLocalDriver(ctx context.Context, seed int64) (*localDriver, error) {
	svc := service.New(
		service.WithPacing(timeline.Pacing{}),
		service.WithRandomSeed(seed),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, err
	}
	return &localDriver{svc: svc}, nil
}

func (d *localDriver) SessionID() string { return d.svc.SessionID() }

func (d *localDriver) SetAdvanceDuration(_ context.Context, minutes float64) error {
	return d.svc.SetAdvanceDuration(minutes)
}

func (d *localDriver) Start(ctx context.Context) error { return d.svc.StartCycle(ctx) }

func (d *localDriver) AwaitPhase(ctx context.Context, phase timeline.Phase) error {
	return d.svc.AwaitPhase(ctx, phase)
}

func (d *localDriver) SubmitSurvey(ctx context.Context, s model.SurveyResponses) error {
	return d.svc.SubmitSurvey(ctx, s)
}

func (d *localDriver) SubmitBiometric(ctx context.Context, value int) (model.TimelineRecord, error) {
	return d.svc.SubmitBiometric(ctx, value)
}

func (d *localDriver) SubmitDerivedBiometric(ctx context.Context) (model.TimelineRecord, error) {
	return d.svc.SubmitDerivedBiometric(ctx)
}

func (d *localDriver) Dashboard(ctx context.Context) (analytics.Dashboard, error) {
	return d.svc.Dashboard(ctx), nil
}

func (d *localDriver) Close() error {
	d.svc.Stop()
	return nil
}

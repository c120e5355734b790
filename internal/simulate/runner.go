package simulate

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/timeline"
	"github.com/okian/courtside/pkg/logger"
)

// Run plays the configured number of checkpoints and returns the report.
func Run(ctx context.Context, config *Config) (*Report, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	log := logger.Get().Named("simulate")
	target := config.BaseURL
	if target == "" {
		target = "in-process"
	}
	log.Info(ctx, "starting simulation",
		logger.String("target", target),
		logger.Int("checkpoints", config.Checkpoints),
		logger.String("biometricMode", config.BiometricMode),
		logger.Any("seed", config.Seed),
	)

	driver, err := newDriver(ctx, config)
	if err != nil {
		return nil, err
	}
	defer func() { _ = driver.Close() }()

	report := &Report{
		SessionID:     driver.SessionID(),
		Seed:          config.Seed,
		BiometricMode: config.BiometricMode,
		Target:        target,
		Stats:         Stats{StartTime: time.Now()},
	}

	if err := driver.SetAdvanceDuration(ctx, config.AdvanceMinutes); err != nil {
		return nil, fmt.Errorf("set advance duration: %w", err)
	}

	rng := rand.New(rand.NewSource(config.Seed)) //nolint:gosec // reproducible answers
	for i := 0; i < config.Checkpoints; i++ {
		rec, err := playCheckpoint(ctx, driver, config, rng)
		if err != nil {
			report.Stats.Failed++
			return nil, fmt.Errorf("checkpoint %d: %w", i+1, err)
		}
		report.Records = append(report.Records, rec)
		report.Stats.Committed++
		if config.Verbose {
			log.Info(ctx, "checkpoint committed",
				logger.Int("point", rec.TimelinePoint),
				logger.Int("actions", len(rec.Actions)),
				logger.Int("biometric", *rec.BiometricValue),
			)
		}
	}

	report.Dashboard, err = driver.Dashboard(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard retrieval failed: %w", err)
	}

	report.Stats.EndTime = time.Now()
	report.Stats.Duration = report.Stats.EndTime.Sub(report.Stats.StartTime)
	log.Info(ctx, "simulation completed",
		logger.Int("committed", report.Stats.Committed),
		logger.Duration("duration", report.Stats.Duration),
	)
	return report, nil
}

func newDriver(ctx context.Context, config *Config) (Driver, error) {
	if config.BaseURL == "" {
		return newLocalDriver(ctx, config.Seed)
	}
	return newHTTPDriver(ctx, config.BaseURL, config.Timeout)
}

// playCheckpoint runs one event block from Idle to commit.
func playCheckpoint(ctx context.Context, d Driver, config *Config, rng *rand.Rand) (model.TimelineRecord, error) {
	if err := await(ctx, d, timeline.PhaseIdle, config.Timeout); err != nil {
		return model.TimelineRecord{}, err
	}
	if err := d.Start(ctx); err != nil {
		return model.TimelineRecord{}, fmt.Errorf("start: %w", err)
	}
	if err := await(ctx, d, timeline.PhaseAwaitingSurvey, config.Timeout); err != nil {
		return model.TimelineRecord{}, err
	}
	if err := d.SubmitSurvey(ctx, randomSurvey(rng)); err != nil {
		return model.TimelineRecord{}, fmt.Errorf("survey: %w", err)
	}
	if config.BiometricMode == ModeDerived {
		return d.SubmitDerivedBiometric(ctx)
	}
	return d.SubmitBiometric(ctx, model.BiometricEntryMin+rng.Intn(model.BiometricEntryMax-model.BiometricEntryMin+1))
}

func await(ctx context.Context, d Driver, phase timeline.Phase, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return d.AwaitPhase(ctx, phase)
}

// randomSurvey draws each rating uniformly from 1..9.
func randomSurvey(rng *rand.Rand) model.SurveyResponses {
	span := model.SurveyMax - model.SurveyMin + 1
	return model.SurveyResponses{
		Arousal:  model.SurveyMin + rng.Intn(span),
		Momentum: model.SurveyMin + rng.Intn(span),
		Flow:     model.SurveyMin + rng.Intn(span),
	}
}

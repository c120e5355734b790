package recorder

import (
	"context"

	"github.com/okian/courtside/internal/domain/model"
)

// NoopRecorder is used when no archive path is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) Archive(_ context.Context, _ string, _ model.TimelineRecord) error {
	return nil
}

func (n *NoopRecorder) Close() error { return nil }

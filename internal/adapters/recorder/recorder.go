// Package recorder archives committed checkpoints outside the session.
package recorder

import (
	"context"
	"errors"

	"github.com/okian/courtside/internal/domain/model"
)

// Sentinel kinds for recorder errors.
var (
	ErrClosed     = errors.New("recorder closed")
	ErrIncomplete = errors.New("record is incomplete")
)

// Recorder persists committed timeline records for later analysis.
// It is write-only from the session's point of view.
type Recorder interface {
	Archive(ctx context.Context, sessionID string, rec model.TimelineRecord) error
	Close() error
}

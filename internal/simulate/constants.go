package simulate

import (
	"errors"
	"time"

	"github.com/okian/courtside/internal/domain/model"
)

// Run limits.
const (
	MaxCheckpoints = model.MaxTimelinePoints
	pollInterval   = 25 * time.Millisecond
)

// Sentinel errors.
var (
	ErrInvalidConfig = errors.New("invalid simulation config")
	ErrUnexpected    = errors.New("unexpected service response")
)

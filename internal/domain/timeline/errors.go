package timeline

import "errors"

// Sentinel kinds for orchestrator errors.
var (
	ErrCycleActive      = errors.New("an event block is already in progress")
	ErrTimelineComplete = errors.New("all timeline points are recorded")
	ErrInvalidPhase     = errors.New("operation not allowed in current phase")
	ErrNothingToCancel  = errors.New("no event block to cancel")
	ErrInvalidDuration  = errors.New("advance duration out of range")
	ErrClosed           = errors.New("orchestrator closed")
)

package clock

import "errors"

// Sentinel kinds for clock errors.
var (
	ErrManualMode    = errors.New("clock does not tick in manual mode")
	ErrNotManual     = errors.New("manual advance requires manual mode")
	ErrQuarterOver   = errors.New("no time remaining in quarter")
	ErrUnknownMode   = errors.New("unknown clock mode")
	ErrNegativeDelta = errors.New("time delta must not be negative")
)

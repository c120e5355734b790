package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrClosed = errors.New("archive queue closed")
	ErrFull   = errors.New("archive queue full")
)

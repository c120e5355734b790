package repository

import "errors"

// Sentinel kinds for history errors.
var (
	ErrNotFound         = errors.New("timeline point not found")
	ErrIncompleteRecord = errors.New("timeline record is incomplete")
	ErrDuplicatePoint   = errors.New("timeline point already recorded")
	ErrInvalidPoint     = errors.New("timeline point out of range")
	ErrHistoryFull      = errors.New("session history is full")
)

package model

import "errors"

// Sentinel kinds for model validation errors.
var (
	ErrUnknownAction    = errors.New("unknown action tag")
	ErrInvalidSurvey    = errors.New("invalid survey responses")
	ErrInvalidBiometric = errors.New("invalid biometric value")
	ErrUnknownStatus    = errors.New("unknown player status")
)

package api

import (
	"errors"
	"net/http"

	"github.com/okian/courtside/internal/adapters/repository"
	"github.com/okian/courtside/internal/domain/clock"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/timeline"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrInternal   = errors.New("internal error")
)

// Error carries the failing operation, its kind and the underlying cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewKind returns an error of the given kind with no further cause.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind attaches op and kind to err.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Wrap attaches op to err and derives the kind from domain sentinels.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kindOf(err), Err: err}
}

func kindOf(err error) error {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, model.ErrInvalidSurvey),
		errors.Is(err, model.ErrInvalidBiometric),
		errors.Is(err, timeline.ErrInvalidDuration),
		errors.Is(err, clock.ErrUnknownMode),
		errors.Is(err, clock.ErrNegativeDelta):
		return ErrBadRequest
	case errors.Is(err, ErrConflict),
		errors.Is(err, timeline.ErrCycleActive),
		errors.Is(err, timeline.ErrTimelineComplete),
		errors.Is(err, timeline.ErrInvalidPhase),
		errors.Is(err, timeline.ErrNothingToCancel),
		errors.Is(err, timeline.ErrClosed),
		errors.Is(err, clock.ErrManualMode),
		errors.Is(err, clock.ErrNotManual),
		errors.Is(err, clock.ErrQuarterOver):
		return ErrConflict
	case errors.Is(err, ErrNotFound),
		errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	default:
		return ErrInternal
	}
}

// statusFor maps an error to its HTTP status and wire code.
func statusFor(err error) (int, string) {
	switch kindOf(err) {
	case ErrBadRequest:
		return http.StatusBadRequest, "bad_request"
	case ErrConflict:
		return http.StatusConflict, "conflict"
	case ErrNotFound:
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

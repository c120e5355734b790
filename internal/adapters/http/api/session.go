package api

import (
	"context"
	"net/http"

	"github.com/okian/courtside/internal/domain/clock"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/player"
	"github.com/okian/courtside/internal/domain/timeline"
)

// BiometricDerived is the capture mode in which a biometric request without
// a value derives the sAA reading from the survey.
const BiometricDerived = "derived"

// SessionDependencies drives the checkpoint cycle.
type SessionDependencies interface {
	SessionID() string
	BiometricMode() string
	Snapshot() timeline.Snapshot
	Player() player.Snapshot
	ClockState() clock.State

	StartCycle(ctx context.Context) error
	SubmitSurvey(ctx context.Context, s model.SurveyResponses) error
	SubmitBiometric(ctx context.Context, value int) (model.TimelineRecord, error)
	SubmitDerivedBiometric(ctx context.Context) (model.TimelineRecord, error)
	CancelCycle(ctx context.Context) error
	SetAdvanceDuration(minutes float64) error
}

// SessionHandler serves /session routes.
type SessionHandler struct {
	deps SessionDependencies
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps SessionDependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

type sessionResponse struct {
	SessionID     string            `json:"session_id"`
	BiometricMode string            `json:"biometric_mode"`
	Timeline      timeline.Snapshot `json:"timeline"`
	Player        player.Snapshot   `json:"player"`
	Clock         clock.State       `json:"clock"`
}

func (h *SessionHandler) session() sessionResponse {
	return sessionResponse{
		SessionID:     h.deps.SessionID(),
		BiometricMode: h.deps.BiometricMode(),
		Timeline:      h.deps.Snapshot(),
		Player:        h.deps.Player(),
		Clock:         h.deps.ClockState(),
	}
}

// HandleGetSession handles GET /session.
func (h *SessionHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.session())
}

// HandleStart handles POST /session/start.
func (h *SessionHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	const op = "api.session_start"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := h.deps.StartCycle(r.Context()); err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusAccepted, h.session())
}

// HandleSurvey handles POST /session/survey.
func (h *SessionHandler) HandleSurvey(w http.ResponseWriter, r *http.Request) {
	const op = "api.session_survey"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req model.SurveyResponses
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.SubmitSurvey(r.Context(), req); err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, h.session())
}

// biometricRequest carries either a manual value or the derived flag. In
// derived mode a request with neither is treated as derived.
type biometricRequest struct {
	Value   *int `json:"value"`
	Derived bool `json:"derived"`
}

// HandleBiometric handles POST /session/biometric.
func (h *SessionHandler) HandleBiometric(w http.ResponseWriter, r *http.Request) {
	const op = "api.session_biometric"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req biometricRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	var (
		rec model.TimelineRecord
		err error
	)
	switch {
	case req.Derived && req.Value != nil:
		writeError(w, NewKind(op, ErrBadRequest))
		return
	case req.Derived, req.Value == nil && h.deps.BiometricMode() == BiometricDerived:
		rec, err = h.deps.SubmitDerivedBiometric(r.Context())
	case req.Value != nil:
		rec, err = h.deps.SubmitBiometric(r.Context(), *req.Value)
	default:
		writeError(w, NewKind(op, ErrBadRequest))
		return
	}
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// HandleCancel handles POST /session/cancel.
func (h *SessionHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	const op = "api.session_cancel"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := h.deps.CancelCycle(r.Context()); err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, h.session())
}

type durationRequest struct {
	Minutes *float64 `json:"minutes"`
}

// HandleDuration handles PUT /session/duration.
func (h *SessionHandler) HandleDuration(w http.ResponseWriter, r *http.Request) {
	const op = "api.session_duration"
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}
	var req durationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Minutes == nil {
		writeError(w, NewKind(op, ErrBadRequest))
		return
	}
	if err := h.deps.SetAdvanceDuration(*req.Minutes); err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, h.session())
}

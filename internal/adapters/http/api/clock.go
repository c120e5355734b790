package api

import (
	"context"
	"net/http"

	"github.com/okian/courtside/internal/domain/clock"
)

// ClockDependencies controls the game clock.
type ClockDependencies interface {
	ClockState() clock.State
	StartClock(ctx context.Context) error
	PauseClock()
	AdvanceClock() error
	NextQuarter() clock.State
	SetClockMode(m clock.Mode) error
}

// ClockHandler serves /clock routes.
type ClockHandler struct {
	deps ClockDependencies
}

// NewClockHandler creates a new clock handler.
func NewClockHandler(deps ClockDependencies) *ClockHandler {
	return &ClockHandler{deps: deps}
}

// HandleGet handles GET /clock.
func (h *ClockHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.ClockState())
}

// HandleStart handles POST /clock/start.
func (h *ClockHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	const op = "api.clock_start"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	// The clock outlives the request.
	if err := h.deps.StartClock(context.WithoutCancel(r.Context())); err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.ClockState())
}

// HandlePause handles POST /clock/pause.
func (h *ClockHandler) HandlePause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	h.deps.PauseClock()
	writeJSON(w, http.StatusOK, h.deps.ClockState())
}

// HandleAdvance handles POST /clock/advance.
func (h *ClockHandler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	const op = "api.clock_advance"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := h.deps.AdvanceClock(); err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.ClockState())
}

// HandleNextQuarter handles POST /clock/next-quarter.
func (h *ClockHandler) HandleNextQuarter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.NextQuarter())
}

type modeRequest struct {
	Mode string `json:"mode"`
}

// HandleMode handles PUT /clock/mode.
func (h *ClockHandler) HandleMode(w http.ResponseWriter, r *http.Request) {
	const op = "api.clock_mode"
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}
	var req modeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	mode, err := clock.ParseMode(req.Mode)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	if err := h.deps.SetClockMode(mode); err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.ClockState())
}

// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/courtside/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SessionDependencies
	TimelineDependencies
	ClockDependencies
}

// Server wires HTTP routes for the session API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	sessionHandler  *SessionHandler
	timelineHandler *TimelineHandler
	clockHandler    *ClockHandler
	stream          http.HandlerFunc
}

// NewServer creates a new API server with all handlers. stream serves the
// websocket endpoint and may be nil.
func NewServer(deps Dependencies, statsProvider StatsProvider, stream http.HandlerFunc) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		sessionHandler:  NewSessionHandler(deps),
		timelineHandler: NewTimelineHandler(deps),
		clockHandler:    NewClockHandler(deps),
		stream:          stream,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("/session", MetricsMiddleware(s.sessionHandler.HandleGetSession, "session"))
	mux.HandleFunc("/session/start", MetricsMiddleware(s.sessionHandler.HandleStart, "session_start"))
	mux.HandleFunc("/session/survey", MetricsMiddleware(s.sessionHandler.HandleSurvey, "session_survey"))
	mux.HandleFunc("/session/biometric", MetricsMiddleware(s.sessionHandler.HandleBiometric, "session_biometric"))
	mux.HandleFunc("/session/cancel", MetricsMiddleware(s.sessionHandler.HandleCancel, "session_cancel"))
	mux.HandleFunc("/session/duration", MetricsMiddleware(s.sessionHandler.HandleDuration, "session_duration"))

	mux.HandleFunc("/timeline", MetricsMiddleware(s.timelineHandler.HandleList, "timeline"))
	mux.HandleFunc("/timeline/", MetricsMiddleware(s.timelineHandler.HandleGet, "timeline_point"))
	mux.HandleFunc("/dashboard", MetricsMiddleware(s.timelineHandler.HandleDashboard, "dashboard"))

	mux.HandleFunc("/clock", MetricsMiddleware(s.clockHandler.HandleGet, "clock"))
	mux.HandleFunc("/clock/start", MetricsMiddleware(s.clockHandler.HandleStart, "clock_start"))
	mux.HandleFunc("/clock/pause", MetricsMiddleware(s.clockHandler.HandlePause, "clock_pause"))
	mux.HandleFunc("/clock/advance", MetricsMiddleware(s.clockHandler.HandleAdvance, "clock_advance"))
	mux.HandleFunc("/clock/next-quarter", MetricsMiddleware(s.clockHandler.HandleNextQuarter, "clock_next_quarter"))
	mux.HandleFunc("/clock/mode", MetricsMiddleware(s.clockHandler.HandleMode, "clock_mode"))

	if s.stream != nil {
		mux.HandleFunc("/ws", s.stream)
	}
	logger.Get().Named("api").Debug(ctx, "routes registered")
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

const maxBodyBytes = 1 << 16

package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/courtside/internal/domain/analytics"
	"github.com/okian/courtside/internal/domain/model"
)

// TimelineDependencies exposes committed history and its views.
type TimelineDependencies interface {
	Timeline(ctx context.Context) []model.TimelineRecord
	Record(ctx context.Context, point int) (model.TimelineRecord, error)
	Dashboard(ctx context.Context) analytics.Dashboard
}

// TimelineHandler serves /timeline and /dashboard.
type TimelineHandler struct {
	deps TimelineDependencies
}

// NewTimelineHandler creates a new timeline handler.
func NewTimelineHandler(deps TimelineDependencies) *TimelineHandler {
	return &TimelineHandler{deps: deps}
}

type timelineResponse struct {
	Count   int                    `json:"count"`
	Records []model.TimelineRecord `json:"records"`
}

// HandleList handles GET /timeline.
func (h *TimelineHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	recs := h.deps.Timeline(r.Context())
	if recs == nil {
		recs = []model.TimelineRecord{}
	}
	writeJSON(w, http.StatusOK, timelineResponse{Count: len(recs), Records: recs})
}

// HandleGet handles GET /timeline/{point}.
func (h *TimelineHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.timeline_point"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/timeline/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, NewKind(op, ErrBadRequest))
		return
	}
	point, err := strconv.Atoi(path)
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	rec, err := h.deps.Record(r.Context(), point)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleDashboard handles GET /dashboard.
func (h *TimelineHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Dashboard(r.Context()))
}

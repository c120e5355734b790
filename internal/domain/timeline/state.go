package timeline

import "github.com/okian/courtside/internal/domain/model"

// Phase is the orchestrator's single source of truth for the event block lifecycle.
type Phase int

// Phases in cycle order.
const (
	PhaseIdle Phase = iota
	PhaseGenerating
	PhaseAwaitingSurvey
	PhaseAwaitingBiometric
	PhaseCommitting
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseGenerating:
		return "generating"
	case PhaseAwaitingSurvey:
		return "awaitingSurvey"
	case PhaseAwaitingBiometric:
		return "awaitingBiometric"
	case PhaseCommitting:
		return "committing"
	default:
		return "unknown"
	}
}

// MarshalText renders the phase by name in JSON and YAML.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Snapshot is a read-only view of the orchestrator.
type Snapshot struct {
	Phase          Phase                  `json:"phase"`
	TimelinePoint  int                    `json:"timeline_point"`
	Completed      int                    `json:"completed"`
	CanStart       bool                   `json:"can_start"`
	AdvanceSeconds int                    `json:"advance_seconds"`
	DraftActions   []model.ActionTag      `json:"draft_actions,omitempty"`
	DraftSurvey    *model.SurveyResponses `json:"draft_survey,omitempty"`
}

// Package model contains domain models passed between layers.
package model

import "fmt"

// ActionTag identifies a single logged player action.
type ActionTag string

// Closed set of action tags.
const (
	ActionScorePoint   ActionTag = "scorePoint"
	ActionAssist       ActionTag = "assist"
	ActionRebound      ActionTag = "rebound"
	ActionTurnover     ActionTag = "turnover"
	ActionGoodDecision ActionTag = "goodDecision"
	ActionBadDecision  ActionTag = "badDecision"
)

// AllActions returns every action tag in display order.
func AllActions() []ActionTag {
	return []ActionTag{
		ActionScorePoint,
		ActionAssist,
		ActionRebound,
		ActionTurnover,
		ActionGoodDecision,
		ActionBadDecision,
	}
}

// Valid reports whether a is a member of the closed tag set.
func (a ActionTag) Valid() bool {
	switch a {
	case ActionScorePoint, ActionAssist, ActionRebound, ActionTurnover, ActionGoodDecision, ActionBadDecision:
		return true
	}
	return false
}

// Positive reports whether the action counts in the player's favour.
func (a ActionTag) Positive() bool {
	switch a {
	case ActionScorePoint, ActionAssist, ActionRebound, ActionGoodDecision:
		return true
	}
	return false
}

// ParseActionTag converts a wire string into an ActionTag.
func ParseActionTag(s string) (ActionTag, error) {
	a := ActionTag(s)
	if !a.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
	return a, nil
}

// ActionCounts holds running per-tag counters for one timeline point.
type ActionCounts struct {
	Points        int `json:"points" yaml:"points"`
	Assists       int `json:"assists" yaml:"assists"`
	Rebounds      int `json:"rebounds" yaml:"rebounds"`
	Turnovers     int `json:"turnovers" yaml:"turnovers"`
	GoodDecisions int `json:"good_decisions" yaml:"good_decisions"`
	BadDecisions  int `json:"bad_decisions" yaml:"bad_decisions"`
}

// Add increments the counter matching tag. Unknown tags are ignored.
func (c *ActionCounts) Add(tag ActionTag) {
	switch tag {
	case ActionScorePoint:
		c.Points++
	case ActionAssist:
		c.Assists++
	case ActionRebound:
		c.Rebounds++
	case ActionTurnover:
		c.Turnovers++
	case ActionGoodDecision:
		c.GoodDecisions++
	case ActionBadDecision:
		c.BadDecisions++
	}
}

// Total returns the number of actions counted.
func (c ActionCounts) Total() int {
	return c.Points + c.Assists + c.Rebounds + c.Turnovers + c.GoodDecisions + c.BadDecisions
}

// Positives returns the number of positive actions counted.
func (c ActionCounts) Positives() int {
	return c.Points + c.Assists + c.Rebounds + c.GoodDecisions
}

// CountActions tallies a sequence of tags.
func CountActions(actions []ActionTag) ActionCounts {
	var c ActionCounts
	for _, a := range actions {
		c.Add(a)
	}
	return c
}

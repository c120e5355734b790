package model

import "fmt"

// PlayerStatus is the on-court/bench state of the tracked player.
type PlayerStatus string

// Player statuses.
const (
	StatusOnCourt PlayerStatus = "onCourt"
	StatusBench   PlayerStatus = "bench"
)

// ParsePlayerStatus converts a wire string into a PlayerStatus.
func ParsePlayerStatus(s string) (PlayerStatus, error) {
	switch PlayerStatus(s) {
	case StatusOnCourt, StatusBench:
		return PlayerStatus(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// PlayerProfile is the static identity of the tracked player.
type PlayerProfile struct {
	Name   string `json:"name" yaml:"name"`
	Age    int    `json:"age" yaml:"age"`
	Jersey int    `json:"jersey" yaml:"jersey"`
}

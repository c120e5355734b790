package scoring

import (
	"math"

	"github.com/okian/courtside/internal/domain/model"
)

// Efficiency constants for the game-score percentage.
const (
	reboundFactor      = 0.7
	assistFactor       = 0.7
	goodDecisionFactor = 0.3
	badDecisionFactor  = 0.7

	negativeOnlyCeiling = 30.0
	neutralPercent      = 40.0
	goodPercent         = 80.0
	maxPercent          = 100.0
	gameScoreStep       = 10.0
	goodGameScore       = 4.0
	fullSampleActions   = 8.0
	excellentSlope      = 4.0
)

// Efficiency converts per-point action counts into a 0..100 percentage.
// It returns false when no actions were logged.
func Efficiency(c model.ActionCounts) (float64, bool) {
	total := c.Total()
	if total == 0 {
		return 0, false
	}

	positive := float64(c.Points) +
		reboundFactor*float64(c.Rebounds) +
		assistFactor*float64(c.Assists) +
		goodDecisionFactor*float64(c.GoodDecisions)
	negative := float64(c.Turnovers) + badDecisionFactor*float64(c.BadDecisions)

	if positive == 0 && negative > 0 {
		return round1(math.Max(0, math.Min(negativeOnlyCeiling, negativeOnlyCeiling-gameScoreStep*negative))), true
	}

	gameScore := positive - negative
	var pct float64
	switch {
	case gameScore <= 0:
		pct = math.Max(0, neutralPercent+gameScoreStep*gameScore)
	case gameScore < goodGameScore:
		sample := math.Min(1, float64(total)/fullSampleActions)
		pct = neutralPercent + (goodPercent-neutralPercent)*(gameScore/goodGameScore)*sample
	default:
		pct = math.Min(maxPercent, goodPercent+excellentSlope*(gameScore-goodGameScore))
	}

	// A single positive action is not enough evidence for an excellent rating.
	if total == 1 && c.Positives() == 1 {
		pct = math.Min(pct, goodPercent)
	}
	return round1(pct), true
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

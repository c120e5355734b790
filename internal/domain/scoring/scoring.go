// Package scoring maps logged actions and survey answers to numeric scores.
package scoring

import (
	"math"

	"github.com/okian/courtside/internal/domain/model"
)

// Performance score constants.
const (
	performanceOffset = 50
	minScoreValue     = 0
	maxScoreValue     = 100
)

// actionWeights are the per-tag contributions to the performance score.
var actionWeights = map[model.ActionTag]int{ //nolint:gochecknoglobals // fixed scoring table
	model.ActionScorePoint:   10,
	model.ActionAssist:       8,
	model.ActionRebound:      6,
	model.ActionTurnover:     -5,
	model.ActionGoodDecision: 7,
	model.ActionBadDecision:  -6,
}

// ActionWeight returns the performance weight of a single tag.
func ActionWeight(tag model.ActionTag) int {
	return actionWeights[tag]
}

// PerformanceScore returns 50 plus the weighted sum of actions, clamped to [0,100].
func PerformanceScore(actions []model.ActionTag) int {
	score := performanceOffset
	for _, a := range actions {
		score += actionWeights[a]
	}
	return int(math.Max(minScoreValue, math.Min(maxScoreValue, float64(score))))
}

// NormalizeValue linearly rescales v from [fromMin,fromMax] to [toMin,toMax].
// The result is not clamped. A degenerate source range maps to toMin.
func NormalizeValue(v, fromMin, fromMax, toMin, toMax float64) float64 {
	if fromMax == fromMin {
		return toMin
	}
	return toMin + (v-fromMin)*(toMax-toMin)/(fromMax-fromMin)
}

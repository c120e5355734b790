package scoring

import (
	"math"

	"github.com/okian/courtside/internal/domain/model"
)

// sAA derivation constants (U/mL).
const (
	BiometricMin = 30
	BiometricMax = 160

	lowLevelBelow  = 50
	highLevelAbove = 80

	biometricBase      = 32
	arousalSlope       = 7
	momentumSlope      = 4
	momentumBound      = 12
	momentumNeutral    = 5
	flowLowEdge        = 4
	flowHighEdge       = 7
	flowLowPenalty     = 8
	flowHighPenalty    = 6
	flowOptimalReward  = 5
	perturbationRadius = 4
)

// Perturber supplies the bounded random term. *rand.Rand satisfies it.
type Perturber interface {
	Intn(n int) int
}

// Biometric is a derived sAA reading.
type Biometric struct {
	Value int                  `json:"value"`
	Level model.BiometricLevel `json:"level"`
}

// BiometricLevelFor buckets an sAA value: <50 low, >80 high, otherwise moderate.
func BiometricLevelFor(value int) model.BiometricLevel {
	switch {
	case value < lowLevelBelow:
		return model.LevelLow
	case value > highLevelAbove:
		return model.LevelHigh
	default:
		return model.LevelModerate
	}
}

// BiometricBase is the deterministic part of the survey-derived sAA model:
// linear in arousal, bounded in momentum, U-shaped in flow.
func BiometricBase(s model.SurveyResponses) int {
	v := biometricBase
	v += arousalSlope * (s.Arousal - 1)

	m := momentumSlope * (momentumNeutral - s.Momentum)
	if m > momentumBound {
		m = momentumBound
	} else if m < -momentumBound {
		m = -momentumBound
	}
	v += m

	switch {
	case s.Flow < flowLowEdge:
		v += flowLowPenalty * (flowLowEdge - s.Flow)
	case s.Flow > flowHighEdge:
		v += flowHighPenalty * (s.Flow - flowHighEdge)
	default:
		v -= flowOptimalReward
	}
	return v
}

// BiometricFromSurvey derives an sAA reading from survey answers. A nil
// perturber yields the unperturbed value.
func BiometricFromSurvey(p Perturber, s model.SurveyResponses) Biometric {
	v := BiometricBase(s)
	if p != nil {
		v += p.Intn(2*perturbationRadius+1) - perturbationRadius
	}
	v = int(math.Max(BiometricMin, math.Min(BiometricMax, float64(v))))
	return Biometric{Value: v, Level: BiometricLevelFor(v)}
}

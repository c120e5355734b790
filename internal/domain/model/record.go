package model

import (
	"fmt"
	"time"
)

// Timeline and capture bounds.
const (
	MaxTimelinePoints = 7
	MaxQuarter        = 4

	SurveyMin     = 1
	SurveyMax     = 9
	SurveyDefault = 5

	BiometricEntryMin = 35
	BiometricEntryMax = 160
)

// SurveyResponses holds the three subjective 1..9 ratings captured at a checkpoint.
type SurveyResponses struct {
	Arousal  int `json:"arousal" yaml:"arousal"`   // IZOF emotional arousal
	Momentum int `json:"momentum" yaml:"momentum"` // psychological momentum
	Flow     int `json:"flow" yaml:"flow"`         // flow state
}

// DefaultSurvey returns the neutral rating triple shown before user input.
func DefaultSurvey() SurveyResponses {
	return SurveyResponses{Arousal: SurveyDefault, Momentum: SurveyDefault, Flow: SurveyDefault}
}

// Validate checks every rating is within [SurveyMin, SurveyMax].
func (s SurveyResponses) Validate() error {
	for _, f := range []struct {
		name string
		v    int
	}{{"arousal", s.Arousal}, {"momentum", s.Momentum}, {"flow", s.Flow}} {
		if f.v < SurveyMin || f.v > SurveyMax {
			return fmt.Errorf("%w: %s=%d outside %d..%d", ErrInvalidSurvey, f.name, f.v, SurveyMin, SurveyMax)
		}
	}
	return nil
}

// ValidateBiometricEntry checks a manually entered sAA reading.
func ValidateBiometricEntry(v int) error {
	if v < BiometricEntryMin || v > BiometricEntryMax {
		return fmt.Errorf("%w: %d outside %d..%d", ErrInvalidBiometric, v, BiometricEntryMin, BiometricEntryMax)
	}
	return nil
}

// BiometricLevel categorizes an sAA reading.
type BiometricLevel string

// Biometric levels.
const (
	LevelLow      BiometricLevel = "low"
	LevelModerate BiometricLevel = "moderate"
	LevelHigh     BiometricLevel = "high"
)

// BiometricSource records how a biometric value was obtained.
type BiometricSource string

// Biometric sources.
const (
	SourceManual  BiometricSource = "manual"
	SourceDerived BiometricSource = "derived"
)

// TimelineRecord is one committed checkpoint of the session history.
type TimelineRecord struct {
	ID              string           `json:"id" yaml:"id"`
	TimelinePoint   int              `json:"timeline_point" yaml:"timeline_point"`
	Quarter         int              `json:"quarter" yaml:"quarter"`
	Timestamp       time.Time        `json:"timestamp" yaml:"timestamp"`
	Actions         []ActionTag      `json:"actions" yaml:"actions"`
	Survey          *SurveyResponses `json:"survey_responses,omitempty" yaml:"survey_responses,omitempty"`
	BiometricValue  *int             `json:"biometric_value,omitempty" yaml:"biometric_value,omitempty"`
	BiometricLevel  *BiometricLevel  `json:"biometric_level,omitempty" yaml:"biometric_level,omitempty"`
	BiometricSource BiometricSource  `json:"biometric_source,omitempty" yaml:"biometric_source,omitempty"`
}

// Complete reports whether every capture group is populated.
func (r *TimelineRecord) Complete() bool {
	return len(r.Actions) > 0 && r.Survey != nil && r.BiometricValue != nil && r.BiometricLevel != nil
}

// Clone returns a deep copy so callers cannot mutate stored history.
func (r *TimelineRecord) Clone() TimelineRecord {
	out := *r
	out.Actions = append([]ActionTag(nil), r.Actions...)
	if r.Survey != nil {
		s := *r.Survey
		out.Survey = &s
	}
	if r.BiometricValue != nil {
		v := *r.BiometricValue
		out.BiometricValue = &v
	}
	if r.BiometricLevel != nil {
		l := *r.BiometricLevel
		out.BiometricLevel = &l
	}
	return out
}

// Counts tallies the record's actions.
func (r *TimelineRecord) Counts() ActionCounts {
	return CountActions(r.Actions)
}

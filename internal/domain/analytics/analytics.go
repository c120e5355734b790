// Package analytics derives per-checkpoint performance views and
// correlations from the committed timeline.
package analytics

import (
	"math"
	"sort"

	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/scoring"
)

// Summary is the per-point view of one committed record.
type Summary struct {
	TimelinePoint    int                   `json:"timeline_point" yaml:"timeline_point"`
	Quarter          int                   `json:"quarter" yaml:"quarter"`
	PerformanceScore int                   `json:"performance_score" yaml:"performance_score"`
	Efficiency       float64               `json:"efficiency" yaml:"efficiency"`
	HasEfficiency    bool                  `json:"has_efficiency" yaml:"has_efficiency"`
	Survey           model.SurveyResponses `json:"survey" yaml:"survey"`
	BiometricValue   int                   `json:"biometric_value" yaml:"biometric_value"`
	BiometricLevel   model.BiometricLevel  `json:"biometric_level" yaml:"biometric_level"`
	Counts           model.ActionCounts    `json:"counts" yaml:"counts"`
}

// Point is one chart sample normalized to 0..100.
type Point struct {
	TimelinePoint int     `json:"timeline_point" yaml:"timeline_point"`
	Value         float64 `json:"value" yaml:"value"`
}

// SeriesSet holds chart-ready series keyed by metric.
type SeriesSet struct {
	Performance []Point `json:"performance" yaml:"performance"`
	Arousal     []Point `json:"arousal" yaml:"arousal"`
	Momentum    []Point `json:"momentum" yaml:"momentum"`
	Flow        []Point `json:"flow" yaml:"flow"`
	Biometric   []Point `json:"biometric" yaml:"biometric"`
}

// Correlation is Pearson's r between performance score and one other metric.
// Defined is false with fewer than two records or a zero-variance series.
type Correlation struct {
	Metric  string  `json:"metric" yaml:"metric"`
	R       float64 `json:"r" yaml:"r"`
	Defined bool    `json:"defined" yaml:"defined"`
}

// Averages are simple means over the committed records.
type Averages struct {
	PerformanceScore float64 `json:"performance_score" yaml:"performance_score"`
	Efficiency       float64 `json:"efficiency" yaml:"efficiency"`
	Arousal          float64 `json:"arousal" yaml:"arousal"`
	Momentum         float64 `json:"momentum" yaml:"momentum"`
	Flow             float64 `json:"flow" yaml:"flow"`
	BiometricValue   float64 `json:"biometric_value" yaml:"biometric_value"`
}

// Dashboard bundles every view.
type Dashboard struct {
	Records      int           `json:"records" yaml:"records"`
	Summaries    []Summary     `json:"summaries" yaml:"summaries"`
	Series       SeriesSet     `json:"series" yaml:"series"`
	Correlations []Correlation `json:"correlations" yaml:"correlations"`
	Averages     Averages      `json:"averages" yaml:"averages"`
}

// Metric names used in correlations.
const (
	MetricArousal   = "arousal"
	MetricMomentum  = "momentum"
	MetricFlow      = "flow"
	MetricBiometric = "biometric"
)

// Summarize builds per-point summaries ordered by timeline point.
// Incomplete records are skipped.
func Summarize(records []model.TimelineRecord) []Summary {
	out := make([]Summary, 0, len(records))
	for i := range records {
		r := &records[i]
		if !r.Complete() {
			continue
		}
		counts := r.Counts()
		eff, ok := scoring.Efficiency(counts)
		out = append(out, Summary{
			TimelinePoint:    r.TimelinePoint,
			Quarter:          r.Quarter,
			PerformanceScore: scoring.PerformanceScore(r.Actions),
			Efficiency:       eff,
			HasEfficiency:    ok,
			Survey:           *r.Survey,
			BiometricValue:   *r.BiometricValue,
			BiometricLevel:   *r.BiometricLevel,
			Counts:           counts,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TimelinePoint < out[j].TimelinePoint })
	return out
}

// Series normalizes each metric onto 0..100 for charting.
func Series(records []model.TimelineRecord) SeriesSet {
	return seriesOf(Summarize(records))
}

func seriesOf(sums []Summary) SeriesSet {
	var set SeriesSet
	survey := func(v int) float64 {
		return scoring.NormalizeValue(float64(v), model.SurveyMin, model.SurveyMax, 0, 100)
	}
	for _, s := range sums {
		p := s.TimelinePoint
		set.Performance = append(set.Performance, Point{p, float64(s.PerformanceScore)})
		set.Arousal = append(set.Arousal, Point{p, survey(s.Survey.Arousal)})
		set.Momentum = append(set.Momentum, Point{p, survey(s.Survey.Momentum)})
		set.Flow = append(set.Flow, Point{p, survey(s.Survey.Flow)})
		set.Biometric = append(set.Biometric, Point{p, scoring.NormalizeValue(
			float64(s.BiometricValue), scoring.BiometricMin, scoring.BiometricMax, 0, 100)})
	}
	return set
}

// Correlate computes Pearson's r of performance against arousal, momentum, flow and biometric value.
func Correlate(records []model.TimelineRecord) []Correlation {
	return correlationsOf(Summarize(records))
}

func correlationsOf(sums []Summary) []Correlation {
	perf := make([]float64, len(sums))
	cols := map[string][]float64{}
	for i, s := range sums {
		perf[i] = float64(s.PerformanceScore)
		cols[MetricArousal] = append(cols[MetricArousal], float64(s.Survey.Arousal))
		cols[MetricMomentum] = append(cols[MetricMomentum], float64(s.Survey.Momentum))
		cols[MetricFlow] = append(cols[MetricFlow], float64(s.Survey.Flow))
		cols[MetricBiometric] = append(cols[MetricBiometric], float64(s.BiometricValue))
	}
	out := make([]Correlation, 0, 4)
	for _, m := range []string{MetricArousal, MetricMomentum, MetricFlow, MetricBiometric} {
		r, ok := Pearson(perf, cols[m])
		out = append(out, Correlation{Metric: m, R: r, Defined: ok})
	}
	return out
}

// Pearson returns the correlation coefficient of xs and ys. It reports false
// for mismatched lengths, fewer than two samples or zero variance.
func Pearson(xs, ys []float64) (float64, bool) {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return 0, false
	}
	mx, my := mean(xs), mean(ys)
	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}
	r := sxy / math.Sqrt(sxx*syy)
	return math.Max(-1, math.Min(1, r)), true
}

// Build assembles the complete dashboard.
func Build(records []model.TimelineRecord) Dashboard {
	sums := Summarize(records)
	return Dashboard{
		Records:      len(sums),
		Summaries:    sums,
		Series:       seriesOf(sums),
		Correlations: correlationsOf(sums),
		Averages:     averagesOf(sums),
	}
}

func averagesOf(sums []Summary) Averages {
	if len(sums) == 0 {
		return Averages{}
	}
	var a Averages
	effN := 0
	for _, s := range sums {
		a.PerformanceScore += float64(s.PerformanceScore)
		a.Arousal += float64(s.Survey.Arousal)
		a.Momentum += float64(s.Survey.Momentum)
		a.Flow += float64(s.Survey.Flow)
		a.BiometricValue += float64(s.BiometricValue)
		if s.HasEfficiency {
			a.Efficiency += s.Efficiency
			effN++
		}
	}
	n := float64(len(sums))
	a.PerformanceScore /= n
	a.Arousal /= n
	a.Momentum /= n
	a.Flow /= n
	a.BiometricValue /= n
	if effN > 0 {
		a.Efficiency /= float64(effN)
	}
	return a
}

func mean(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x
	}
	return s / float64(len(v))
}

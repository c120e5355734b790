// Package actions draws simulated player actions for an event block.
package actions

import (
	"math/rand"
	"sync"

	"github.com/okian/courtside/internal/domain/model"
)

// Default generator configuration constants.
const (
	defaultMinDraws   = 3
	defaultMaxDraws   = 5
	defaultRandomSeed = 42
)

// Weighted pairs a tag with its selection probability.
type Weighted struct {
	Tag    model.ActionTag
	Weight float64
}

// DefaultDistribution is the categorical distribution used for every draw.
func DefaultDistribution() []Weighted {
	return []Weighted{
		{Tag: model.ActionScorePoint, Weight: 0.30},
		{Tag: model.ActionAssist, Weight: 0.20},
		{Tag: model.ActionRebound, Weight: 0.20},
		{Tag: model.ActionTurnover, Weight: 0.10},
		{Tag: model.ActionGoodDecision, Weight: 0.10},
		{Tag: model.ActionBadDecision, Weight: 0.10},
	}
}

// Source produces the actions for one event block.
type Source interface {
	Generate() []model.ActionTag
}

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithRand sets the random source. Useful for reproducible sessions.
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) {
		if rng != nil {
			g.rng = rng
		}
	}
}

// WithSeed seeds a private random source.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // simulation, not crypto
	}
}

// WithDrawRange sets the inclusive number of draws per block.
func WithDrawRange(minDraws, maxDraws int) Option {
	return func(g *Generator) {
		if minDraws > 0 && maxDraws >= minDraws {
			g.minDraws = minDraws
			g.maxDraws = maxDraws
		}
	}
}

// WithDistribution replaces the categorical distribution.
func WithDistribution(dist []Weighted) Option {
	return func(g *Generator) {
		if len(dist) > 0 {
			g.dist = append([]Weighted(nil), dist...)
		}
	}
}

// Generator draws 3–5 tags by cumulative-weight sampling. Draws are
// independent, so a tag may repeat within a block.
type Generator struct {
	mu       sync.Mutex
	rng      *rand.Rand
	dist     []Weighted
	total    float64
	minDraws int
	maxDraws int
}

// NewGenerator creates a generator with configuration options.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		rng:      rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // deterministic default seed
		dist:     DefaultDistribution(),
		minDraws: defaultMinDraws,
		maxDraws: defaultMaxDraws,
	}
	for _, opt := range opts {
		opt(g)
	}
	for _, w := range g.dist {
		g.total += w.Weight
	}
	return g
}

// Generate returns a fresh block of actions.
func (g *Generator) Generate() []model.ActionTag {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.minDraws + g.rng.Intn(g.maxDraws-g.minDraws+1)
	out := make([]model.ActionTag, n)
	for i := range out {
		out[i] = g.pick(g.rng.Float64() * g.total)
	}
	return out
}

// Pick maps a uniform sample r in [0,1) onto the distribution.
func (g *Generator) Pick(r float64) model.ActionTag {
	return g.pick(r * g.total)
}

func (g *Generator) pick(r float64) model.ActionTag {
	cumulative := 0.0
	for _, w := range g.dist {
		cumulative += w.Weight
		if r < cumulative {
			return w.Tag
		}
	}
	// Floating point residue lands on the last bucket.
	return g.dist[len(g.dist)-1].Tag
}

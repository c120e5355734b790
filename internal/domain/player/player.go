// Package player holds the tracked player's status and in-progress action counters.
package player

import (
	"context"
	"sync"

	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

// Snapshot is a read-only view of the player.
type Snapshot struct {
	Profile model.PlayerProfile        `json:"profile"`
	Status  model.PlayerStatus         `json:"status"`
	Counts  map[int]model.ActionCounts `json:"counts"`
}

// Option applies a configuration option to the Player.
type Option func(*Player)

// WithProfile sets the static player identity.
func WithProfile(p model.PlayerProfile) Option {
	return func(pl *Player) {
		pl.profile = p
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(pl *Player) {
		if l != nil {
			pl.logger = l
		}
	}
}

// Player owns on-court status and the running counters of the checkpoint
// being recorded. Counters are keyed by timeline point and cleared on reset.
type Player struct {
	mu      sync.RWMutex
	profile model.PlayerProfile
	status  model.PlayerStatus
	counts  map[int]model.ActionCounts
	logger  logger.Logger
}

// New creates a player that starts on court.
func New(opts ...Option) *Player {
	p := &Player{
		profile: model.PlayerProfile{Name: "Player", Age: 20, Jersey: 23},
		status:  model.StatusOnCourt,
		counts:  make(map[int]model.ActionCounts),
		logger:  logger.Get().Named("player"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// LogAction increments the counter for tag at the given timeline point.
func (p *Player) LogAction(point int, tag model.ActionTag) {
	p.mu.Lock()
	c := p.counts[point]
	c.Add(tag)
	p.counts[point] = c
	p.mu.Unlock()

	metrics.RecordActionLogged(string(tag))
	p.logger.Debug(context.Background(), "action logged",
		logger.Int("point", point),
		logger.String("action", string(tag)),
	)
}

// SetStatus moves the player on court or to the bench.
func (p *Player) SetStatus(status model.PlayerStatus) {
	p.mu.Lock()
	p.status = status
	p.mu.Unlock()
}

// Status returns the current on-court/bench state.
func (p *Player) Status() model.PlayerStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// Counts returns the running counters for a timeline point.
func (p *Player) Counts(point int) model.ActionCounts {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.counts[point]
}

// ResetCounts zeroes the counters for a timeline point.
func (p *Player) ResetCounts(point int) {
	p.mu.Lock()
	delete(p.counts, point)
	p.mu.Unlock()
}

// Profile returns the static identity.
func (p *Player) Profile() model.PlayerProfile {
	return p.profile
}

// Snapshot returns a copy of the player state.
func (p *Player) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	counts := make(map[int]model.ActionCounts, len(p.counts))
	for k, v := range p.counts {
		counts[k] = v
	}
	return Snapshot{Profile: p.profile, Status: p.status, Counts: counts}
}

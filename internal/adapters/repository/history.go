package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

// snapshot is an immutable view of the history published after every append.
type snapshot struct {
	records []model.TimelineRecord
	byPoint map[int]int // point -> index into records
}

// HistoryStore is an in-memory Store. Writers serialize on mu; readers load
// the latest published snapshot without locking.
type HistoryStore struct {
	mu       sync.Mutex
	capacity int
	snap     atomic.Pointer[snapshot]
	logger   logger.Logger
}

// NewHistoryStore constructs an empty history.
func NewHistoryStore(opts ...Option) *HistoryStore {
	s := &HistoryStore{
		capacity: model.MaxTimelinePoints,
		logger:   logger.Get().Named("history"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.snap.Store(&snapshot{byPoint: map[int]int{}})
	metrics.UpdateRecordsTotal(0)
	return s
}

// Append validates and stores a deep copy of rec.
func (s *HistoryStore) Append(ctx context.Context, rec model.TimelineRecord) error {
	if !rec.Complete() {
		return fmt.Errorf("%w: point %d", ErrIncompleteRecord, rec.TimelinePoint)
	}
	if rec.TimelinePoint < 1 || rec.TimelinePoint > s.capacity {
		return fmt.Errorf("%w: %d outside 1..%d", ErrInvalidPoint, rec.TimelinePoint, s.capacity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	if len(cur.records) >= s.capacity {
		return ErrHistoryFull
	}
	if _, ok := cur.byPoint[rec.TimelinePoint]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicatePoint, rec.TimelinePoint)
	}

	next := &snapshot{
		records: make([]model.TimelineRecord, len(cur.records), len(cur.records)+1),
		byPoint: make(map[int]int, len(cur.byPoint)+1),
	}
	copy(next.records, cur.records)
	for k, v := range cur.byPoint {
		next.byPoint[k] = v
	}
	next.records = append(next.records, rec.Clone())
	next.byPoint[rec.TimelinePoint] = len(next.records) - 1
	s.snap.Store(next)

	metrics.UpdateRecordsTotal(len(next.records))
	s.logger.Debug(ctx, "record appended",
		logger.Int("point", rec.TimelinePoint),
		logger.String("id", rec.ID),
		logger.Int("total", len(next.records)),
	)
	return nil
}

// List returns copies of every record in commit order.
func (s *HistoryStore) List(_ context.Context) []model.TimelineRecord {
	cur := s.snap.Load()
	out := make([]model.TimelineRecord, len(cur.records))
	for i := range cur.records {
		out[i] = cur.records[i].Clone()
	}
	return out
}

// Get returns a copy of the record at point.
func (s *HistoryStore) Get(_ context.Context, point int) (model.TimelineRecord, error) {
	cur := s.snap.Load()
	i, ok := cur.byPoint[point]
	if !ok {
		return model.TimelineRecord{}, fmt.Errorf("%w: %d", ErrNotFound, point)
	}
	return cur.records[i].Clone(), nil
}

// Count returns the number of records.
func (s *HistoryStore) Count(_ context.Context) int {
	return len(s.snap.Load().records)
}

// Package repository holds the append-only session history.
package repository

import (
	"context"

	"github.com/okian/courtside/internal/domain/model"
)

// Store is the ordered, append-only history of committed checkpoints.
type Store interface {
	// Append adds a complete record. Points must be unique and within 1..capacity.
	Append(ctx context.Context, rec model.TimelineRecord) error

	// List returns every record in commit order.
	List(ctx context.Context) []model.TimelineRecord

	// Get returns the record for a timeline point.
	// Returns ErrNotFound if the point has not been committed.
	Get(ctx context.Context, point int) (model.TimelineRecord, error)

	// Count returns the number of committed records.
	Count(ctx context.Context) int
}

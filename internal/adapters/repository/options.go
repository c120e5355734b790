package repository

import "github.com/okian/courtside/pkg/logger"

// Option applies a configuration option to the HistoryStore.
type Option func(*HistoryStore)

// WithCapacity sets the maximum number of records. Defaults to the timeline length.
func WithCapacity(n int) Option {
	return func(s *HistoryStore) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *HistoryStore) {
		if l != nil {
			s.logger = l
		}
	}
}

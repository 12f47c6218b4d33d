package repository

import (
	"io/fs"

	"github.com/okian/trustgraph/pkg/logger"
)

// Option applies a configuration option to the CSVStore.
type Option func(*CSVStore)

// WithFileMode sets the permission bits of written tables.
func WithFileMode(mode fs.FileMode) Option {
	return func(s *CSVStore) {
		if mode != 0 {
			s.mode = mode
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *CSVStore) {
		if l != nil {
			s.logger = l
		}
	}
}

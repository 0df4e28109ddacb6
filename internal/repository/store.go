package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when an id does not resolve to a row.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a guarded update finds the row already changed.
	ErrConflict = errors.New("record changed concurrently")
)

// MaxInFilter is the largest id list accepted by a single membership query.
const MaxInFilter = 30

// Store is the gorm-backed persistence layer for profiles, workflows and tasks.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Transaction runs fn against a Store bound to a single database transaction.
// Every write made through tx commits together or not at all.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func wrap(what string, err error) error {
	return fmt.Errorf("%s: %w", what, err)
}

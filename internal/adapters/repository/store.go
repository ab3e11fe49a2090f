// Package repository keeps in-flight rounds.
package repository

import (
	"context"

	"github.com/okian/babellm/internal/domain/model"
)

// Store provides read/write access to rounds. Implementations return copies
// so callers never share state with the store.
type Store interface {
	// Create inserts a new round. Returns ErrExists on id collision.
	Create(ctx context.Context, r model.Round) error

	// Get returns the round with id or ErrNotFound.
	Get(ctx context.Context, id string) (model.Round, error)

	// Update applies fn to the round atomically. If fn fails the round is
	// left untouched and fn's error is returned.
	Update(ctx context.Context, id string, fn func(*model.Round) error) (model.Round, error)

	Delete(ctx context.Context, id string) error

	// Count returns the number of rounds held.
	Count(ctx context.Context) int
}

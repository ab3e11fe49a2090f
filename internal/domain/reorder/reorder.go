// Package reorder implements drag-and-drop reordering of an ordering.
package reorder

import (
	"fmt"

	"github.com/okian/babellm/internal/domain/model"
)

// MoveItem removes the id at from and reinserts it at to. All other ids keep
// their relative order. The input is never modified; a fresh ordering is
// returned. Out-of-range indices yield ErrInvalidIndex.
func MoveItem(order model.Ordering, from, to int) (model.Ordering, error) {
	n := len(order)
	if from < 0 || from >= n {
		return nil, fmt.Errorf("from=%d with %d items: %w", from, n, ErrInvalidIndex)
	}
	if to < 0 || to >= n {
		return nil, fmt.Errorf("to=%d with %d items: %w", to, n, ErrInvalidIndex)
	}

	out := make(model.Ordering, 0, n)
	moved := order[from]
	for i, id := range order {
		if i == from {
			continue
		}
		if len(out) == to {
			out = append(out, moved)
		}
		out = append(out, id)
	}
	if len(out) == to {
		out = append(out, moved)
	}
	return out, nil
}

// MoveID moves the item identified by id to position to.
func MoveID(order model.Ordering, id string, to int) (model.Ordering, error) {
	from := IndexOf(order, id)
	if from < 0 {
		return nil, fmt.Errorf("%q: %w", id, ErrUnknownID)
	}
	return MoveItem(order, from, to)
}

// IndexOf returns the position of id in order, or -1.
func IndexOf(order model.Ordering, id string) int {
	for i, v := range order {
		if v == id {
			return i
		}
	}
	return -1
}

// Validate checks that order is a permutation of canonical.
func Validate(order, canonical model.Ordering) error {
	if len(order) != len(canonical) {
		return fmt.Errorf("got %d ids, want %d: %w", len(order), len(canonical), ErrNotPermutation)
	}
	want := make(map[string]bool, len(canonical))
	for _, id := range canonical {
		want[id] = true
	}
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if !want[id] {
			return fmt.Errorf("%q: %w", id, ErrUnknownID)
		}
		if seen[id] {
			return fmt.Errorf("duplicate %q: %w", id, ErrNotPermutation)
		}
		seen[id] = true
	}
	return nil
}

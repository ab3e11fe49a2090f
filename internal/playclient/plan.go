package playclient

import (
	"github.com/okian/babellm/internal/domain/model"
	"github.com/okian/babellm/internal/domain/reorder"
	"github.com/okian/babellm/internal/domain/types"
)

// targetOrder resolves the desired ranking against the round's languages.
// Codes the round does not contain are dropped and languages the caller did
// not mention keep their current relative order after the named ones.
func targetOrder(current model.Ordering, desired []string) model.Ordering {
	out := make(model.Ordering, 0, len(current))
	used := make(map[string]bool, len(current))
	for _, id := range desired {
		if used[id] || reorder.IndexOf(current, id) < 0 {
			continue
		}
		used[id] = true
		out = append(out, id)
	}
	for _, id := range current {
		if !used[id] {
			out = append(out, id)
		}
	}
	return out
}

// planMoves returns the id-addressed moves that turn current into target.
func planMoves(current, target model.Ordering) ([]types.MoveRequest, error) {
	cur := current.Clone()
	var moves []types.MoveRequest
	for i, id := range target {
		if cur[i] == id {
			continue
		}
		next, err := reorder.MoveID(cur, id, i)
		if err != nil {
			return nil, err
		}
		cur = next
		moves = append(moves, types.MoveRequest{ID: id, To: i})
	}
	return moves, nil
}

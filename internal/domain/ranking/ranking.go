// Package ranking derives the truth order of a round and compares it with the
// player's prediction.
//
// Ordering: score DESC; equal scores keep their fixture order. Fixture order
// is the position of the id in the canonical language table, so the result
// does not depend on the order in which scored items are passed in.
package ranking

import (
	"sort"

	"github.com/okian/babellm/internal/domain/model"
)

// Result is the outcome of a comparison.
type Result struct {
	TruthOrder   model.Ordering
	IsExactMatch bool
}

// Comparator compares submitted orderings against fixture scores.
type Comparator struct {
	fixtureRank map[string]int
}

// NewComparator creates a comparator whose ties are broken by the position of
// each id in fixtureOrder. Ids missing from fixtureOrder sort after known ids,
// by id.
func NewComparator(fixtureOrder []string) *Comparator {
	rank := make(map[string]int, len(fixtureOrder))
	for i, id := range fixtureOrder {
		if _, dup := rank[id]; !dup {
			rank[id] = i
		}
	}
	return &Comparator{fixtureRank: rank}
}

// TruthOrder sorts scored by score descending with fixture-order tie-breaks.
func (c *Comparator) TruthOrder(scored []model.ScoredID) model.Ordering {
	sorted := make([]model.ScoredID, len(scored))
	copy(sorted, scored)
	sort.SliceStable(sorted, func(i, j int) bool {
		return c.less(sorted[i], sorted[j])
	})
	return scoredIDs(sorted)
}

// Compare returns the truth order and whether submitted matches it exactly.
func (c *Comparator) Compare(submitted model.Ordering, scored []model.ScoredID) Result {
	truth := c.TruthOrder(scored)
	return Result{TruthOrder: truth, IsExactMatch: submitted.Equal(truth)}
}

// less reports whether a ranks before b.
func (c *Comparator) less(a, b model.ScoredID) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	ra, aok := c.fixtureRank[a.ID]
	rb, bok := c.fixtureRank[b.ID]
	switch {
	case aok && bok:
		return ra < rb
	case aok != bok:
		return aok
	default:
		return a.ID < b.ID
	}
}

// Compare is the package-level form used when scored is already in fixture
// order: ties keep the order of scored itself.
func Compare(submitted model.Ordering, scored []model.ScoredID) Result {
	return NewComparator(scoredIDs(scored)).Compare(submitted, scored)
}

// Position describes where an id was predicted and where it actually ranked.
type Position struct {
	ID        string
	Predicted int
	Actual    int
}

// Correct reports whether the prediction placed the id at its actual rank.
func (p Position) Correct() bool { return p.Predicted == p.Actual }

// Positions lists, in truth order, the predicted and actual rank of each id.
// Ids absent from submitted get Predicted == -1.
func Positions(submitted, truth model.Ordering) []Position {
	predicted := make(map[string]int, len(submitted))
	for i, id := range submitted {
		predicted[id] = i
	}
	out := make([]Position, len(truth))
	for i, id := range truth {
		p, ok := predicted[id]
		if !ok {
			p = -1
		}
		out[i] = Position{ID: id, Predicted: p, Actual: i}
	}
	return out
}

func scoredIDs(scored []model.ScoredID) model.Ordering {
	out := make(model.Ordering, len(scored))
	for i, s := range scored {
		out[i] = s.ID
	}
	return out
}

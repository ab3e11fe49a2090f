package model

import "time"

// Round is one translate-to-results play-through.
type Round struct {
	ID         string
	QuestionID string
	Question   string
	// Items holds the round's translations in the order they were dealt.
	Items []Item
	// Order is the player's current ranking, best first.
	Order     Ordering
	Submitted bool
	// Scored caches the analysis result once the round has been scored.
	Scored    []ScoredID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy of r.
func (r Round) Clone() Round { //nolint:gocritic // hugeParam: value receiver keeps copies cheap to reason about
	out := r
	out.Items = append([]Item(nil), r.Items...)
	out.Order = r.Order.Clone()
	if r.Scored != nil {
		out.Scored = append([]ScoredID(nil), r.Scored...)
	}
	return out
}

// Item returns the item with id.
func (r Round) Item(id string) (Item, bool) { //nolint:gocritic // hugeParam
	for _, it := range r.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Package model contains domain models passed between layers.
package model

// MaxScore is the top of the model's answer scale.
const MaxScore = 10.0

// Item is one translated answer in a round. Identity is the language code.
type Item struct {
	ID       string  // language code, unique within a round
	Text     string  // translated question text shown to the player
	Score    float64 // ground-truth model score, 0..MaxScore
	FlagCode string  // country code used for the flag badge
}

// ScoredID pairs an item id with its ground-truth score.
type ScoredID struct {
	ID    string
	Score float64
}

// Ordering is a permutation of item ids representing ranked positions.
type Ordering []string

// Clone returns a copy that shares no backing array with o.
func (o Ordering) Clone() Ordering {
	if o == nil {
		return nil
	}
	out := make(Ordering, len(o))
	copy(out, o)
	return out
}

// Equal reports whether both orderings hold the same ids in the same sequence.
func (o Ordering) Equal(other Ordering) bool {
	if len(o) != len(other) {
		return false
	}
	for i := range o {
		if o[i] != other[i] {
			return false
		}
	}
	return true
}

// IDs returns the ids of items in slice order.
func IDs(items []Item) Ordering {
	out := make(Ordering, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

// Language describes one entry of the language table.
type Language struct {
	Code        string `json:"-"`
	Name        string `json:"name"`
	NativeName  string `json:"nativeName"`
	CountryCode string `json:"countryCode"`
	Direction   string `json:"direction"`
	Prompt      string `json:"prompt"`
}

// Question is one entry of the question table.
type Question struct {
	ID     string `json:"id"`
	TextEn string `json:"textEn"`
}

// Translation is the translated text of a question in one language.
type Translation struct {
	Text            string `json:"text"`
	BackTranslation string `json:"backTranslation,omitempty"`
}

// ScoreParameters records the sampling parameters used to obtain a score.
type ScoreParameters struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// ScoreMetadata describes how a fixture score was produced.
type ScoreMetadata struct {
	Timestamp    string          `json:"timestamp"`
	Model        string          `json:"model"`
	Prompt       string          `json:"prompt"`
	Parameters   ScoreParameters `json:"parameters"`
	LanguageCode string          `json:"language_code"`
}

// Score is one row of the score table.
type Score struct {
	Score    float64       `json:"score"`
	Metadata ScoreMetadata `json:"metadata"`
}

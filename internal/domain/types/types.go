// Package types contains the wire shapes shared by the HTTP API, the session
// handoff and the play client.
package types

// QuestionEntry is one question offered on the start screen.
type QuestionEntry struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// RoundItem is one draggable translation card.
type RoundItem struct {
	LanguageCode string `json:"language_code"`
	LanguageName string `json:"language_name"`
	FlagCode     string `json:"flag_code"`
	Text         string `json:"text"`
}

// Round is the translate-flow view of a round.
type Round struct {
	RoundID    string      `json:"round_id"`
	QuestionID string      `json:"question_id"`
	Question   string      `json:"question"`
	Items      []RoundItem `json:"items"`
	Order      []string    `json:"order"`
	Submitted  bool        `json:"submitted"`
}

// HandoffResult is one element of the results-as-JSON handoff value. Field
// names match what the translate flow has always written.
type HandoffResult struct {
	LanguageCode string  `json:"languageCode"`
	Text         string  `json:"text"`
	Position     float64 `json:"position"`
	Score        float64 `json:"score"`
	FlagCode     string  `json:"flagCode"`
}

// ResultItem is one scored item in truth order.
type ResultItem struct {
	LanguageCode      string  `json:"language_code"`
	LanguageName      string  `json:"language_name"`
	FlagCode          string  `json:"flag_code"`
	Text              string  `json:"text"`
	Score             float64 `json:"score"`
	PredictedPosition int     `json:"predicted_position"`
	ActualPosition    int     `json:"actual_position"`
	Correct           bool    `json:"correct"`
}

// Results is the results-flow payload.
type Results struct {
	RoundID        string       `json:"round_id"`
	QuestionID     string       `json:"question_id"`
	Question       string       `json:"question"`
	SubmittedOrder []string     `json:"submitted_order"`
	TruthOrder     []string     `json:"truth_order"`
	IsExactMatch   bool         `json:"is_exact_match"`
	Items          []ResultItem `json:"items"`
}

// RevealFrame is one progress update of a reveal session.
type RevealFrame struct {
	Index           int     `json:"index"`
	LanguageCode    string  `json:"language_code"`
	Revealed        bool    `json:"revealed"`
	Progress        float64 `json:"progress"`
	BarWidth        float64 `json:"bar_width"`
	FinalValueShown bool    `json:"final_value_shown"`
	Score           float64 `json:"score,omitempty"`
}

// Burst is one celebratory particle burst.
type Burst struct {
	ParticleCount int     `json:"particle_count"`
	StartVelocity float64 `json:"start_velocity"`
	Spread        float64 `json:"spread"`
	OriginX       float64 `json:"origin_x"`
	OriginY       float64 `json:"origin_y"`
}

// ShareText is the share endpoint payload.
type ShareText struct {
	Text   string `json:"text"`
	Invite string `json:"invite"`
}

// Reveal stream event types.
const (
	RevealEventStart       = "start"
	RevealEventFrame       = "frame"
	RevealEventAllRevealed = "all_revealed"
	RevealEventBurst       = "burst"
	RevealEventEnd         = "end"
)

// RevealEvent is one message of the reveal stream. Exactly one payload
// field is set, matching Type; "end" carries none.
type RevealEvent struct {
	Type    string       `json:"type"`
	Results *Results     `json:"results,omitempty"`
	Frame   *RevealFrame `json:"frame,omitempty"`
	Burst   *Burst       `json:"burst,omitempty"`
	// IsExactMatch accompanies all_revealed.
	IsExactMatch bool `json:"is_exact_match,omitempty"`
}

// MoveRequest moves one card. Either From (a gesture index) or ID selects
// the card; To is the destination index.
type MoveRequest struct {
	From *int   `json:"from,omitempty"`
	ID   string `json:"id,omitempty"`
	To   int    `json:"to"`
}

// SubmitResponse acknowledges a submission.
type SubmitResponse struct {
	RoundID string `json:"round_id"`
	Status  string `json:"status"`
}

// Stats is the /stats payload.
type Stats struct {
	Started          bool   `json:"started"`
	ActiveRounds     int    `json:"active_rounds"`
	ActiveReveals    int64  `json:"active_reveals"`
	SubmittedRounds  int    `json:"submitted_rounds"`
	RenderQueueDepth int    `json:"render_queue_depth"`
	RenderQueueCap   int    `json:"render_queue_capacity"`
	RenderWorkers    int    `json:"render_workers"`
	Languages        int    `json:"languages"`
	Questions        int    `json:"questions"`
	Translations     int    `json:"translations"`
	Scores           int    `json:"scores"`
	SessionBackend   string `json:"session_backend"`
}

package websocket

import (
	"encoding/json"

	"github.com/quizhive/quizhive-backend/internal/model"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAutosave  Action = "autosave"
	ActionTelemetry Action = "telemetry"
	ActionSubmit    Action = "submit"
	ActionPing      Action = "ping"
)

// RequestPayload is the single request shape; unused fields stay empty
// depending on the action.
type RequestPayload struct {
	Action Action `json:"action"`

	// Autosave
	QuestionID string          `json:"q_id,omitempty"`
	Answer     json.RawMessage `json:"ans,omitempty"`

	// Telemetry: cumulative typing data captured by the quiz client.
	Typing *model.TypingTelemetry `json:"typing,omitempty"`

	// Submit
	CompletionSeconds *float64   `json:"completion_seconds,omitempty"`
	QuestionSeconds   []*float64 `json:"question_seconds,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError     Event = "error"
	EventSaved     Event = "saved"
	EventSubmitted Event = "submitted"
	EventPong      Event = "pong"
)

type SavedResponse struct {
	Event  Event  `json:"event"`
	Status string `json:"status"`
}

type SubmittedResponse struct {
	Event Event   `json:"event"`
	Score float64 `json:"score"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Participant represents one person taking a quiz. Participants are scoped
// to a single quiz and identified by the token handed out at join time.
type Participant struct {
	ID       uuid.UUID `json:"id"`
	QuizID   uuid.UUID `json:"quiz_id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joined_at"`
}

// JoinQuizRequest is the payload for a participant joining a quiz.
type JoinQuizRequest struct {
	EntryCode string `json:"entry_code" binding:"required,min=4,max=20"`
	Name      string `json:"name" binding:"required,min=2,max=100"`
}

// JoinQuizResponse is returned after a successful join.
type JoinQuizResponse struct {
	Token       string      `json:"token"`
	Participant Participant `json:"participant"`
	Quiz        Quiz        `json:"quiz"`
}

package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// QuizStatus enumerates the possible states of a quiz.
type QuizStatus string

const (
	QuizStatusDraft     QuizStatus = "DRAFT"
	QuizStatusPublished QuizStatus = "PUBLISHED"
	QuizStatusLive      QuizStatus = "LIVE"
	QuizStatusClosed    QuizStatus = "CLOSED"
)

// Quiz represents a hosted quiz.
type Quiz struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	HostID          int        `json:"host_id"`
	EntryCode       string     `json:"entry_code,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	QuestionCount   int        `json:"question_count"`
	Status          QuizStatus `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CreateQuizRequest is the payload for creating a new quiz.
type CreateQuizRequest struct {
	Title           string `json:"title" binding:"required,min=3,max=255"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=1,max=480"`
}

// UpdateQuizRequest is the payload for updating a draft quiz.
type UpdateQuizRequest struct {
	Title           string `json:"title" binding:"omitempty,min=3,max=255"`
	DurationMinutes int    `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
}

// QuizPaper is the Redis-cached payload sent to participants
// (no correct answers).
type QuizPaper struct {
	QuizID    uuid.UUID                `json:"quiz_id"`
	Title     string                   `json:"title"`
	Duration  int                      `json:"duration_minutes"`
	Questions []QuestionForParticipant `json:"questions"`
}

// QuestionForParticipant is a question stripped of its correct answer.
type QuestionForParticipant struct {
	ID       uuid.UUID       `json:"id"`
	Text     string          `json:"text"`
	Type     QuestionType    `json:"type"`
	Options  json.RawMessage `json:"options,omitempty"`
	OrderNum int             `json:"order_num"`
	Points   int             `json:"points"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Submission is a participant's finished answer sheet for a quiz.
// It is the immutable input to the integrity engine: analyzers read it but
// never write it.
type Submission struct {
	ID                uuid.UUID        `json:"id"`
	QuizID            uuid.UUID        `json:"quiz_id"`
	ParticipantID     uuid.UUID        `json:"participant_id"`
	ParticipantName   string           `json:"participant_name"`
	Answers           []Answer         `json:"answers"`
	CompletionSeconds *float64         `json:"completion_seconds,omitempty"`
	SubmittedAt       time.Time        `json:"submitted_at"`
	Typing            *TypingTelemetry `json:"typing_data,omitempty"`
	QuestionSeconds   []*float64       `json:"question_seconds,omitempty"`
	Score             *float64         `json:"score,omitempty"`
}

// TypingTelemetry is optional keystroke/pause/edit telemetry captured by the
// quiz client. Absence disables the typing-pattern signal for a submission.
type TypingTelemetry struct {
	QuestionSpeeds []float64    `json:"question_typing_speeds"` // WPM per question
	Pauses         PausePattern `json:"pause_patterns"`
	AnswerChanges  []int        `json:"answer_changes"` // revision count per question
	TotalSeconds   float64      `json:"total_time"`
	TotalQuestions int          `json:"total_questions"`
}

// PausePattern summarizes typing pauses over the whole attempt.
type PausePattern struct {
	LongPauses      int     `json:"long_pauses"`
	AvgPauseSeconds float64 `json:"avg_pause"`
}

// SubmitRequest is the payload for submitting a finished quiz attempt.
type SubmitRequest struct {
	Answers           []Answer         `json:"answers" binding:"required"`
	CompletionSeconds *float64         `json:"completion_seconds" binding:"omitempty,gte=0"`
	Typing            *TypingTelemetry `json:"typing_data"`
	QuestionSeconds   []*float64       `json:"question_seconds"`
}

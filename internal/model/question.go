package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Question represents a single quiz question.
type Question struct {
	ID            uuid.UUID       `json:"id"`
	QuizID        uuid.UUID       `json:"quiz_id"`
	Text          string          `json:"text"`
	Type          QuestionType    `json:"type"`
	Options       json.RawMessage `json:"options,omitempty"`
	CorrectAnswer Answer          `json:"correct_answer"`
	OrderNum      int             `json:"order_num"`
	Points        int             `json:"points"`
}

// QuestionType enumerates supported question shapes.
type QuestionType string

const (
	QuestionTypeText           QuestionType = "TEXT"
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeMultiSelect    QuestionType = "MULTI_SELECT"
	QuestionTypeBoolean        QuestionType = "BOOLEAN"
	QuestionTypeNumber         QuestionType = "NUMBER"
)

// AddQuestionRequest is the payload for adding a question to a quiz.
type AddQuestionRequest struct {
	Text          string          `json:"text" binding:"required,min=1,max=2000"`
	Type          QuestionType    `json:"type" binding:"required,oneof=TEXT MULTIPLE_CHOICE MULTI_SELECT BOOLEAN NUMBER"`
	Options       json.RawMessage `json:"options"`
	CorrectAnswer Answer          `json:"correct_answer"`
	OrderNum      int             `json:"order_num" binding:"min=0"`
	Points        int             `json:"points" binding:"min=0,max=1000"`
}

// ReplaceQuestionsRequest is the payload for bulk replacing a quiz's questions.
type ReplaceQuestionsRequest struct {
	Questions []AddQuestionRequest `json:"questions" binding:"dive"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// FlagType identifies which integrity signal raised a flag.
type FlagType string

const (
	FlagAnswerSimilarity FlagType = "ANSWER_SIMILARITY"
	FlagTypingPattern    FlagType = "TYPING_PATTERN"
	FlagTimeAnomaly      FlagType = "TIME_ANOMALY"
)

// Severity classifies a flag by its signal score.
type Severity string

const (
	SeverityInfo   Severity = "INFO"
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// SimilarityMatch records one suspiciously similar submission pair.
// Similarity is a percentage (0–100); MatchingAnswers lists the question
// indices where both sides gave structurally equal answers.
type SimilarityMatch struct {
	ParticipantID   uuid.UUID `json:"participant_id"`
	ParticipantName string    `json:"participant_name"`
	Similarity      float64   `json:"similarity"`
	MatchingAnswers []int     `json:"matching_answers"`
}

// SignalIssue is one named anomaly raised by the typing or timing analyzer,
// with the observed value and a human-readable expected range.
type SignalIssue struct {
	Issue    string  `json:"issue"`
	Observed float64 `json:"observed"`
	Expected string  `json:"expected"`
}

// Flag is one integrity finding attached to an analysis result.
type Flag struct {
	Type        FlagType          `json:"type"`
	Severity    Severity          `json:"severity"`
	Description string            `json:"description"`
	Matches     []SimilarityMatch `json:"matches,omitempty"`
	Issues      []SignalIssue     `json:"issues,omitempty"`
}

// SignalScores holds the three per-signal scores, each clamped to [0,100].
type SignalScores struct {
	AnswerSimilarity float64 `json:"answer_similarity"`
	TypingPattern    float64 `json:"typing_pattern"`
	TimeAnomaly      float64 `json:"time_anomaly"`
}

// AnalysisResult is the integrity engine's verdict for one submission.
// Created fresh per analysis and never mutated afterward.
type AnalysisResult struct {
	ParticipantID   uuid.UUID    `json:"participant_id"`
	ParticipantName string       `json:"participant_name"`
	IsSuspicious    bool         `json:"is_suspicious"`
	SuspicionScore  float64      `json:"suspicion_score"`
	Scores          SignalScores `json:"scores"`
	Flags           []Flag       `json:"flags"`
	GeneratedAt     time.Time    `json:"generated_at"`
}

// BatchReport ranks every submission of a quiz by suspicion score.
type BatchReport struct {
	TotalSubmissions   int               `json:"total_submissions"`
	FlaggedSubmissions int               `json:"flagged_submissions"`
	Reports            []*AnalysisResult `json:"reports"`
	GeneratedAt        time.Time         `json:"generated_at"`
}

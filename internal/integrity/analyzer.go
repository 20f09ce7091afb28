// Package integrity implements the heuristic submission-risk engine:
// answer-similarity comparison, typing-pattern anomaly detection and
// time-based anomaly detection, aggregated into one 0-100 suspicion score.
//
// The package is pure: analyzers read submissions, never mutate them, share
// no state, and are safe to run fully in parallel across submissions. The
// scores are weighted heuristics, not probabilities, and make no claim of
// statistical rigor.
package integrity

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/quizhive/quizhive-backend/internal/model"
)

// ErrMissingInput is returned when the submission set or question list is
// absent entirely. Every lesser shape irregularity (missing telemetry,
// missing completion time, mismatched answer lengths) degrades the affected
// signal to zero instead of erroring.
var ErrMissingInput = errors.New("integrity: submissions and questions are required")

// Signal weights and the overall suspicion policy.
const (
	similarityWeight = 0.5
	typingWeight     = 0.3
	timingWeight     = 0.2

	// SuspiciousScoreThreshold is the overall score at or above which a
	// submission is marked suspicious.
	SuspiciousScoreThreshold = 60
)

// Severity cutoffs for individual flag categories.
const (
	severityHighScore   = 80
	severityMediumScore = 60
	severityLowScore    = 40
)

// AnalyzeSubmission runs all three analyzers over one submission and merges
// their scores into a single AnalysisResult. The submission is compared
// against allSubmissions (self-comparison is excluded internally); questions
// is used only for its length.
func AnalyzeSubmission(sub *model.Submission, allSubmissions []*model.Submission, questions []model.Question) (*model.AnalysisResult, error) {
	if sub == nil {
		return nil, fmt.Errorf("%w: submission is nil", ErrMissingInput)
	}
	if allSubmissions == nil || questions == nil {
		return nil, ErrMissingInput
	}

	simScore, matches := analyzeSimilarity(sub, allSubmissions)
	typingScore, typingIssues := analyzeTyping(sub.Typing)
	timingScore, timingIssues := analyzeTiming(sub, allSubmissions, len(questions))

	scores := model.SignalScores{
		AnswerSimilarity: clampScore(simScore),
		TypingPattern:    clampScore(typingScore),
		TimeAnomaly:      clampScore(timingScore),
	}

	overall := math.Round(scores.AnswerSimilarity*similarityWeight +
		scores.TypingPattern*typingWeight +
		scores.TimeAnomaly*timingWeight)
	overall = clampScore(overall)

	// Always an array, never nil: the verdict is persisted as jsonb and
	// monitor queries take jsonb_array_length of the flags field.
	flags := []model.Flag{}
	if len(matches) > 0 {
		flags = append(flags, model.Flag{
			Type:        model.FlagAnswerSimilarity,
			Severity:    severityFor(scores.AnswerSimilarity),
			Description: fmt.Sprintf("answers closely match %d other participant(s)", len(matches)),
			Matches:     matches,
		})
	}
	if len(typingIssues) > 0 {
		flags = append(flags, model.Flag{
			Type:        model.FlagTypingPattern,
			Severity:    severityFor(scores.TypingPattern),
			Description: fmt.Sprintf("typing telemetry raised %d issue(s)", len(typingIssues)),
			Issues:      typingIssues,
		})
	}
	if len(timingIssues) > 0 {
		flags = append(flags, model.Flag{
			Type:        model.FlagTimeAnomaly,
			Severity:    severityFor(scores.TimeAnomaly),
			Description: fmt.Sprintf("submission timing raised %d issue(s)", len(timingIssues)),
			Issues:      timingIssues,
		})
	}

	return &model.AnalysisResult{
		ParticipantID:   sub.ParticipantID,
		ParticipantName: sub.ParticipantName,
		IsSuspicious:    overall >= SuspiciousScoreThreshold,
		SuspicionScore:  overall,
		Scores:          scores,
		Flags:           flags,
		GeneratedAt:     time.Now().UTC(),
	}, nil
}

// severityFor maps a 0-100 signal score to a flag severity.
func severityFor(score float64) model.Severity {
	switch {
	case score >= severityHighScore:
		return model.SeverityHigh
	case score >= severityMediumScore:
		return model.SeverityMedium
	case score >= severityLowScore:
		return model.SeverityLow
	default:
		return model.SeverityInfo
	}
}

package integrity

import (
	"fmt"

	"github.com/quizhive/quizhive-backend/internal/model"
)

// Typing-pattern thresholds. Rules are evaluated independently and their
// contributions added, then clamped to 100.
const (
	minTypingWPM              = 10.0
	maxTypingWPM              = 500.0
	uniformSpeedRatio         = 0.10 // stddev below 10% of mean is suspiciously uniform
	uniformSpeedMinWPM        = 100.0
	minLongPauses             = 2
	minPausedSeconds          = 60.0 // attempts longer than this should show pauses
	maxAvgPauseSeconds        = 30.0
	minRevisionSeconds        = 30.0 // attempts longer than this should show edits
	revisionsPerQuestionLimit = 5
)

// analyzeTyping scores one submission's typing telemetry. A nil telemetry
// disables the signal: score 0, no issues.
func analyzeTyping(t *model.TypingTelemetry) (float64, []model.SignalIssue) {
	if t == nil {
		return 0, nil
	}

	var (
		score  float64
		issues []model.SignalIssue
	)

	if len(t.QuestionSpeeds) > 0 {
		avg := mean(t.QuestionSpeeds)

		if avg < minTypingWPM {
			score += 30
			issues = append(issues, model.SignalIssue{
				Issue:    "typing speed suspiciously slow",
				Observed: avg,
				Expected: fmt.Sprintf("at least %.0f WPM", minTypingWPM),
			})
		} else if avg > maxTypingWPM {
			score += 40
			issues = append(issues, model.SignalIssue{
				Issue:    "typing speed beyond human range",
				Observed: avg,
				Expected: fmt.Sprintf("at most %.0f WPM", maxTypingWPM),
			})
		}

		stdDev := populationStdDev(t.QuestionSpeeds)
		if stdDev < uniformSpeedRatio*avg && avg > uniformSpeedMinWPM {
			score += 35
			issues = append(issues, model.SignalIssue{
				Issue:    "typing speed suspiciously uniform, suggests pasted input",
				Observed: stdDev,
				Expected: fmt.Sprintf("stddev of at least 10%% of the %.0f WPM mean", avg),
			})
		}
	}

	if t.Pauses.LongPauses < minLongPauses && t.TotalSeconds > minPausedSeconds {
		score += 25
		issues = append(issues, model.SignalIssue{
			Issue:    "too few thinking pauses for the attempt length",
			Observed: float64(t.Pauses.LongPauses),
			Expected: fmt.Sprintf("at least %d long pauses over %.0fs", minLongPauses, t.TotalSeconds),
		})
	}

	if t.Pauses.AvgPauseSeconds > maxAvgPauseSeconds {
		score += 20
		issues = append(issues, model.SignalIssue{
			Issue:    "long pauses suggest external lookups",
			Observed: t.Pauses.AvgPauseSeconds,
			Expected: fmt.Sprintf("average pause under %.0fs", maxAvgPauseSeconds),
		})
	}

	revisions := 0
	for _, c := range t.AnswerChanges {
		revisions += c
	}

	if revisions == 0 && t.TotalSeconds > minRevisionSeconds {
		score += 30
		issues = append(issues, model.SignalIssue{
			Issue:    "no answer revisions, suggests pre-written answers",
			Observed: 0,
			Expected: "at least one revision on a non-trivial attempt",
		})
	}

	if revisions > t.TotalQuestions*revisionsPerQuestionLimit {
		score += 15
		issues = append(issues, model.SignalIssue{
			Issue:    "excessive answer revisions",
			Observed: float64(revisions),
			Expected: fmt.Sprintf("at most %d revisions for %d questions", t.TotalQuestions*revisionsPerQuestionLimit, t.TotalQuestions),
		})
	}

	return clampScore(score), issues
}

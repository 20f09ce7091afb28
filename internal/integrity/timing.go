package integrity

import (
	"fmt"
	"math"

	"github.com/quizhive/quizhive-backend/internal/model"
)

// Time-anomaly thresholds.
const (
	minSecondsPerQuestion  = 2.0
	cohortMinSize          = 3    // outlier rule needs at least this many peers
	outlierSigmas          = 2.0  // deviation beyond 2 sigma is an outlier
	minQuestionTimeEntries = 5    // pacing rules need more entries than this
	uniformPacingRatio     = 0.10 // variance below 10% of mean question time
	instantAnswerSeconds   = 1.0
	instantAnswerShare     = 0.30 // more than 30% instant answers is anomalous
	simultaneousWindowMs   = 5000
	simultaneousMinPeers   = 2
)

// analyzeTiming scores completion-time and per-question timing anomalies for
// one submission against its cohort. Missing completion times degrade the
// affected rules to zero contribution rather than erroring.
func analyzeTiming(sub *model.Submission, all []*model.Submission, questionCount int) (float64, []model.SignalIssue) {
	var (
		score  float64
		issues []model.SignalIssue
	)

	// Peers: completed submissions from other participants.
	var peers []*model.Submission
	for _, other := range all {
		if other == nil || other.ParticipantID == sub.ParticipantID {
			continue
		}
		if other.CompletionSeconds == nil {
			continue
		}
		peers = append(peers, other)
	}

	if sub.CompletionSeconds != nil {
		completion := *sub.CompletionSeconds

		if completion < minSecondsPerQuestion*float64(questionCount) {
			score += 40
			issues = append(issues, model.SignalIssue{
				Issue:    "suspiciously fast completion",
				Observed: completion,
				Expected: fmt.Sprintf("at least %.0fs for %d questions", minSecondsPerQuestion*float64(questionCount), questionCount),
			})
		}

		if len(peers) >= cohortMinSize {
			times := make([]float64, 0, len(peers))
			for _, p := range peers {
				times = append(times, *p.CompletionSeconds)
			}
			cohortMean := mean(times)
			cohortStdDev := populationStdDev(times)

			if math.Abs(completion-cohortMean) > outlierSigmas*cohortStdDev {
				if completion < cohortMean {
					score += 30
					issues = append(issues, model.SignalIssue{
						Issue:    "completion time far faster than cohort",
						Observed: completion,
						Expected: fmt.Sprintf("within 2 standard deviations of the %.0fs cohort mean", cohortMean),
					})
				} else {
					score += 15
					issues = append(issues, model.SignalIssue{
						Issue:    "completion time far slower than cohort",
						Observed: completion,
						Expected: fmt.Sprintf("within 2 standard deviations of the %.0fs cohort mean", cohortMean),
					})
				}
			}
		}
	}

	// Per-question pacing rules apply only with enough recorded times.
	questionTimes := make([]float64, 0, len(sub.QuestionSeconds))
	for _, t := range sub.QuestionSeconds {
		if t != nil {
			questionTimes = append(questionTimes, *t)
		}
	}

	if len(questionTimes) > minQuestionTimeEntries {
		avg := mean(questionTimes)
		if populationVariance(questionTimes) < uniformPacingRatio*avg {
			score += 25
			issues = append(issues, model.SignalIssue{
				Issue:    "unnaturally uniform pacing across questions",
				Observed: populationVariance(questionTimes),
				Expected: fmt.Sprintf("variance of at least 10%% of the %.1fs mean question time", avg),
			})
		}

		instant := 0
		for _, t := range questionTimes {
			if t < instantAnswerSeconds {
				instant++
			}
		}
		if float64(instant) > instantAnswerShare*float64(len(questionTimes)) {
			score += 35
			issues = append(issues, model.SignalIssue{
				Issue:    "too many instant answers",
				Observed: float64(instant),
				Expected: fmt.Sprintf("at most 30%% of %d question times under %.0fs", len(questionTimes), instantAnswerSeconds),
			})
		}
	}

	// Coordinated submission: several peers landing within the same window.
	simultaneous := 0
	for _, p := range peers {
		deltaMs := math.Abs(float64(sub.SubmittedAt.Sub(p.SubmittedAt).Milliseconds()))
		if deltaMs < simultaneousWindowMs {
			simultaneous++
		}
	}
	if simultaneous >= simultaneousMinPeers {
		score += 20
		issues = append(issues, model.SignalIssue{
			Issue:    "submitted simultaneously with multiple participants",
			Observed: float64(simultaneous),
			Expected: fmt.Sprintf("fewer than %d peers within %dms", simultaneousMinPeers, simultaneousWindowMs),
		})
	}

	return clampScore(score), issues
}

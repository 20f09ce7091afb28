package integrity

import (
	"github.com/quizhive/quizhive-backend/internal/model"
)

const (
	// SimilarityThreshold is the pairwise similarity above which a pair of
	// submissions is recorded as suspicious.
	SimilarityThreshold = 0.85

	// LongTextRuneCount is the string length beyond which answers are
	// compared fuzzily (Jaccard + Levenshtein) instead of exactly.
	LongTextRuneCount = 20
)

// analyzeSimilarity compares one submission's answers against every other
// submission in the cohort. It returns the maximum pairwise similarity as a
// 0-100 score plus the list of pairs at or above SimilarityThreshold.
//
// Self-comparison and submissions with absent or length-mismatched answer
// sequences are skipped entirely; they never contribute to the score.
func analyzeSimilarity(sub *model.Submission, all []*model.Submission) (float64, []model.SimilarityMatch) {
	if sub.Answers == nil {
		return 0, nil
	}

	var (
		maxSimilarity float64
		matches       []model.SimilarityMatch
	)

	for _, other := range all {
		if other == nil || other.ParticipantID == sub.ParticipantID {
			continue
		}
		if other.Answers == nil || len(other.Answers) != len(sub.Answers) {
			continue
		}

		similarity := compareAnswerSets(sub.Answers, other.Answers)
		if similarity > maxSimilarity {
			maxSimilarity = similarity
		}

		if similarity >= SimilarityThreshold {
			matches = append(matches, model.SimilarityMatch{
				ParticipantID:   other.ParticipantID,
				ParticipantName: other.ParticipantName,
				Similarity:      similarity * 100,
				MatchingAnswers: matchingIndices(sub.Answers, other.Answers),
			})
		}
	}

	return clampScore(maxSimilarity * 100), matches
}

// compareAnswerSets returns the mean per-position similarity of two
// index-aligned answer sequences in [0,1]. Positions where either side is
// absent are excluded from both numerator and denominator; if nothing is
// comparable the result is 0.
func compareAnswerSets(a, b []model.Answer) float64 {
	comparable := 0
	var total float64

	for i := range a {
		na := a[i].Normalized()
		nb := b[i].Normalized()
		if !na.Present() || !nb.Present() {
			continue
		}
		comparable++
		total += answerSimilarity(na, nb)
	}

	if comparable == 0 {
		return 0
	}
	return total / float64(comparable)
}

// answerSimilarity scores one pair of normalized, present answers.
//
// Text pairs with either side longer than LongTextRuneCount get the average
// of Jaccard and Levenshtein similarity; short text pairs and every other
// kind combination score 1 on structural equality, else 0.
func answerSimilarity(a, b model.Answer) float64 {
	if a.Kind == model.KindText && b.Kind == model.KindText {
		if len([]rune(a.Text)) > LongTextRuneCount || len([]rune(b.Text)) > LongTextRuneCount {
			return (JaccardSimilarity(a.Text, b.Text) + LevenshteinSimilarity(a.Text, b.Text)) / 2
		}
		if a.Text == b.Text {
			return 1
		}
		return 0
	}

	if a.Canonical() == b.Canonical() {
		return 1
	}
	return 0
}

// matchingIndices lists every position where both sides are present and
// structurally equal after normalization. Equality here is strict even for
// long text, independent of the fuzzy path used for the numeric score.
func matchingIndices(a, b []model.Answer) []int {
	indices := make([]int, 0, len(a))
	for i := range a {
		if !a[i].Present() || !b[i].Present() {
			continue
		}
		if a[i].Equal(b[i]) {
			indices = append(indices, i)
		}
	}
	return indices
}

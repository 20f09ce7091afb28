package integrity

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quizhive/quizhive-backend/internal/model"
)

func newSubmission(name string, answers []model.Answer) *model.Submission {
	return &model.Submission{
		ID:              uuid.New(),
		ParticipantID:   uuid.New(),
		ParticipantName: name,
		Answers:         answers,
		SubmittedAt:     time.Now(),
	}
}

func shortAnswers(texts ...string) []model.Answer {
	answers := make([]model.Answer, len(texts))
	for i, s := range texts {
		answers[i] = model.TextAnswer(s)
	}
	return answers
}

func TestAnalyzeSimilarityIdenticalShortAnswers(t *testing.T) {
	a := newSubmission("alice", shortAnswers("paris", "blue", "42"))
	b := newSubmission("bob", shortAnswers("paris", "blue", "42"))
	all := []*model.Submission{a, b}

	scoreA, matchesA := analyzeSimilarity(a, all)
	scoreB, matchesB := analyzeSimilarity(b, all)

	if scoreA != 100 || scoreB != 100 {
		t.Fatalf("identical answers: scores = %f, %f, want 100, 100", scoreA, scoreB)
	}
	if len(matchesA) != 1 || len(matchesB) != 1 {
		t.Fatalf("identical answers: matches = %d, %d, want 1, 1", len(matchesA), len(matchesB))
	}
	if matchesA[0].ParticipantID != b.ParticipantID {
		t.Error("alice's match should point at bob")
	}
	if matchesB[0].ParticipantID != a.ParticipantID {
		t.Error("bob's match should point at alice")
	}
}

func TestAnalyzeSimilarityNormalization(t *testing.T) {
	// Case folding and trimming make all three positions equal.
	a := newSubmission("alice", shortAnswers("paris", "paris", "4"))
	b := newSubmission("bob", shortAnswers("Paris", " paris", "4"))
	all := []*model.Submission{a, b}

	score, matches := analyzeSimilarity(a, all)
	if score != 100 {
		t.Fatalf("score = %f, want 100", score)
	}
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(matches))
	}
	if got := matches[0].MatchingAnswers; len(got) != 3 || got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Errorf("matching answers = %v, want [0 1 2]", got)
	}
	if matches[0].Similarity != 100 {
		t.Errorf("match similarity = %f, want 100", matches[0].Similarity)
	}
}

func TestAnalyzeSimilaritySkipsAbsentAndMismatched(t *testing.T) {
	target := newSubmission("alice", shortAnswers("a", "b"))
	nilAnswers := newSubmission("bob", nil)
	mismatched := newSubmission("carol", shortAnswers("a", "b", "c"))
	all := []*model.Submission{target, nilAnswers, mismatched}

	score, matches := analyzeSimilarity(target, all)
	if score != 0 {
		t.Errorf("score = %f, want 0 (nothing comparable)", score)
	}
	if len(matches) != 0 {
		t.Errorf("matches = %d, want 0", len(matches))
	}

	// A target with absent answers never scores either.
	score, matches = analyzeSimilarity(nilAnswers, all)
	if score != 0 || len(matches) != 0 {
		t.Errorf("nil-answer target: score = %f, matches = %d, want 0, 0", score, len(matches))
	}
}

func TestAnalyzeSimilaritySkipsSelf(t *testing.T) {
	a := newSubmission("alice", shortAnswers("x", "y"))
	// The collection includes the submission itself; it must not match itself.
	score, matches := analyzeSimilarity(a, []*model.Submission{a})
	if score != 0 || len(matches) != 0 {
		t.Errorf("self comparison leaked: score = %f, matches = %d", score, len(matches))
	}
}

func TestCompareAnswerSetsSkipsEmptyPositions(t *testing.T) {
	a := []model.Answer{model.TextAnswer("same"), model.EmptyAnswer(), model.TextAnswer("differs")}
	b := []model.Answer{model.TextAnswer("same"), model.TextAnswer("ignored"), model.TextAnswer("other")}

	// Position 1 is skipped; positions 0 and 2 score 1 and 0.
	if got := compareAnswerSets(a, b); got != 0.5 {
		t.Errorf("compareAnswerSets = %f, want 0.5", got)
	}

	// Nothing comparable at all.
	empty := []model.Answer{model.EmptyAnswer()}
	if got := compareAnswerSets(empty, empty); got != 0 {
		t.Errorf("all-empty compareAnswerSets = %f, want 0", got)
	}
}

func TestAnswerSimilarityLongText(t *testing.T) {
	// Over 20 characters: score is the Jaccard/Levenshtein average.
	a := model.TextAnswer("the mitochondria is the powerhouse of the cell").Normalized()
	b := model.TextAnswer("mitochondria is the powerhouse of a cell").Normalized()

	want := (JaccardSimilarity(a.Text, b.Text) + LevenshteinSimilarity(a.Text, b.Text)) / 2
	if got := answerSimilarity(a, b); math.Abs(got-want) > 1e-9 {
		t.Errorf("long text similarity = %f, want %f", got, want)
	}
	if want <= 0.5 {
		t.Fatalf("test fixture too dissimilar: %f", want)
	}
}

func TestAnswerSimilarityShortTextExact(t *testing.T) {
	if got := answerSimilarity(model.TextAnswer("paris"), model.TextAnswer("lyon")); got != 0 {
		t.Errorf("short text mismatch = %f, want 0", got)
	}
	if got := answerSimilarity(model.TextAnswer("paris"), model.TextAnswer("paris")); got != 1 {
		t.Errorf("short text match = %f, want 1", got)
	}
}

func TestAnswerSimilarityStructural(t *testing.T) {
	a := model.ListAnswer("a", "b")
	b := model.ListAnswer("a", "b")
	c := model.ListAnswer("b", "a") // order matters for lists

	if got := answerSimilarity(a, b); got != 1 {
		t.Errorf("equal lists = %f, want 1", got)
	}
	if got := answerSimilarity(a, c); got != 0 {
		t.Errorf("reordered lists = %f, want 0", got)
	}
	if got := answerSimilarity(model.NumberAnswer(4), model.NumberAnswer(4)); got != 1 {
		t.Errorf("equal numbers = %f, want 1", got)
	}
	if got := answerSimilarity(model.NumberAnswer(4), model.TextAnswer("4")); got != 0 {
		t.Errorf("number vs text = %f, want 0", got)
	}
}

// A long paraphrased answer can push the numeric similarity over the
// threshold while the strict-equality evidence list stays empty. That
// discrepancy is intentional and load-bearing for report consumers.
func TestMatchingAnswersUseStrictEquality(t *testing.T) {
	a := newSubmission("alice", []model.Answer{
		model.TextAnswer("the quick brown fox jumps over the lazy dog today"),
	})
	b := newSubmission("bob", []model.Answer{
		model.TextAnswer("the quick brown fox jumps over the lazy dog topay"),
	})
	all := []*model.Submission{a, b}

	score, matches := analyzeSimilarity(a, all)
	if score < SimilarityThreshold*100 {
		t.Fatalf("fixture should exceed threshold, got %f", score)
	}
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(matches))
	}
	if len(matches[0].MatchingAnswers) != 0 {
		t.Errorf("paraphrased long text reported as strict match: %v", matches[0].MatchingAnswers)
	}
}

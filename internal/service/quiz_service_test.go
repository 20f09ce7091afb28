package service

import (
	"context"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/quizhive/quizhive-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func newTestQuizService(t *testing.T) (*QuizService, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewQuizService(nil, nil, client, zerolog.Nop()), mr
}

func testQuizFixture() (*model.Quiz, []model.Question) {
	quiz := &model.Quiz{
		ID:              uuid.New(),
		Title:           "Capitals of Europe",
		DurationMinutes: 30,
		Status:          model.QuizStatusPublished,
	}
	questions := []model.Question{
		{
			ID:            uuid.New(),
			QuizID:        quiz.ID,
			Text:          "Capital of France?",
			Type:          model.QuestionTypeText,
			CorrectAnswer: model.TextAnswer("Paris"),
			OrderNum:      1,
			Points:        10,
		},
		{
			ID:            uuid.New(),
			QuizID:        quiz.ID,
			Text:          "Berlin is in Germany.",
			Type:          model.QuestionTypeBoolean,
			CorrectAnswer: model.BoolAnswer(true),
			OrderNum:      2,
			Points:        5,
		},
	}
	return quiz, questions
}

func TestWarmQuizCacheRoundTrip(t *testing.T) {
	svc, _ := newTestQuizService(t)
	ctx := context.Background()

	quiz, questions := testQuizFixture()
	if err := svc.warmQuizCache(ctx, quiz, questions); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	paper, err := svc.GetPaper(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("get paper: %v", err)
	}
	if paper.Title != quiz.Title {
		t.Errorf("paper title = %q, want %q", paper.Title, quiz.Title)
	}
	if paper.Duration != quiz.DurationMinutes {
		t.Errorf("paper duration = %d, want %d", paper.Duration, quiz.DurationMinutes)
	}
	if len(paper.Questions) != len(questions) {
		t.Fatalf("paper questions = %d, want %d", len(paper.Questions), len(questions))
	}

	key, err := svc.GetAnswerKey(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("get answer key: %v", err)
	}
	if len(key) != len(questions) {
		t.Fatalf("answer key entries = %d, want %d", len(key), len(questions))
	}
	for _, q := range questions {
		entry, ok := key[q.ID.String()]
		if !ok {
			t.Fatalf("answer key missing question %s", q.ID)
		}
		if !entry.Answer.Equal(q.CorrectAnswer) {
			t.Errorf("question %s: cached answer %v does not match", q.ID, entry.Answer)
		}
		if entry.Points != q.Points {
			t.Errorf("question %s: points = %d, want %d", q.ID, entry.Points, q.Points)
		}
	}
}

func TestPaperNeverExposesCorrectAnswers(t *testing.T) {
	svc, mr := newTestQuizService(t)
	ctx := context.Background()

	quiz, questions := testQuizFixture()
	if err := svc.warmQuizCache(ctx, quiz, questions); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	paperJSON, err := mr.Get("quiz:" + quiz.ID.String() + ":paper")
	if err != nil {
		t.Fatalf("read cached paper: %v", err)
	}
	if strings.Contains(paperJSON, "Paris") || strings.Contains(paperJSON, "correct_answer") {
		t.Error("cached paper leaks correct answers")
	}
}

func TestGetPaperMissReturnsError(t *testing.T) {
	svc, _ := newTestQuizService(t)

	if _, err := svc.GetPaper(context.Background(), uuid.New()); err == nil {
		t.Error("expected error for unpublished quiz")
	}
	if _, err := svc.GetAnswerKey(context.Background(), uuid.New()); err == nil {
		t.Error("expected error for missing answer key")
	}
}

func TestGenerateEntryCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := generateEntryCode()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != entryCodeLength {
			t.Fatalf("code length = %d, want %d", len(code), entryCodeLength)
		}
		for _, c := range code {
			if !strings.ContainsRune(entryCodeAlphabet, c) {
				t.Fatalf("code %q contains %q outside alphabet", code, c)
			}
		}
		seen[code] = true
	}
	if len(seen) < 95 {
		t.Errorf("only %d distinct codes out of 100", len(seen))
	}
}

package service

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/quizhive/quizhive-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func newTestSubmissionService(t *testing.T) (*SubmissionService, *QuizService) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	quizService := NewQuizService(nil, nil, client, zerolog.Nop())
	return NewSubmissionService(nil, nil, quizService, client, zerolog.Nop()), quizService
}

func TestGradeAgainstCachedKey(t *testing.T) {
	svc, quizService := newTestSubmissionService(t)
	ctx := context.Background()

	quiz, questions := testQuizFixture()
	if err := quizService.warmQuizCache(ctx, quiz, questions); err != nil {
		t.Fatalf("warm cache: %v", err)
	}
	paper, err := quizService.GetPaper(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("get paper: %v", err)
	}

	tests := []struct {
		name    string
		answers []model.Answer
		want    float64
	}{
		{
			name:    "all correct",
			answers: []model.Answer{model.TextAnswer("Paris"), model.BoolAnswer(true)},
			want:    100,
		},
		{
			name:    "text matching is case and space insensitive",
			answers: []model.Answer{model.TextAnswer("  pArIs "), model.BoolAnswer(true)},
			want:    100,
		},
		{
			name:    "partial credit by points",
			answers: []model.Answer{model.TextAnswer("Lyon"), model.BoolAnswer(true)},
			want:    float64(5) / float64(15) * 100,
		},
		{
			name:    "unanswered questions score zero",
			answers: []model.Answer{model.EmptyAnswer(), model.EmptyAnswer()},
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.grade(ctx, quiz.ID, paper, tt.answers)
			if err != nil {
				t.Fatalf("grade: %v", err)
			}
			if got != tt.want {
				t.Errorf("score = %.2f, want %.2f", got, tt.want)
			}
		})
	}
}

func TestGradeMissingAnswerKey(t *testing.T) {
	svc, _ := newTestSubmissionService(t)

	quiz, questions := testQuizFixture()
	paper := &model.QuizPaper{QuizID: quiz.ID, Questions: make([]model.QuestionForParticipant, len(questions))}

	if _, err := svc.grade(context.Background(), quiz.ID, paper, make([]model.Answer, len(questions))); err == nil {
		t.Error("expected error when answer key is not cached")
	}
}

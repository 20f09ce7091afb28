package service

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/quizhive/quizhive-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func newTestParticipantService(t *testing.T) (*ParticipantService, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	// Repositories stay nil: these tests only exercise the Redis fast path.
	return NewParticipantService(nil, nil, nil, client, zerolog.Nop()), mr
}

func TestAutosaveAnswerWritesHashAndQueue(t *testing.T) {
	svc, mr := newTestParticipantService(t)
	ctx := context.Background()

	quizID := uuid.New()
	participantID := uuid.New()
	questionID := uuid.New()
	answer := json.RawMessage(`{"type":"choice","index":2}`)

	if err := svc.AutosaveAnswer(ctx, quizID, participantID, questionID, answer); err != nil {
		t.Fatalf("autosave: %v", err)
	}

	answersKey := config.CacheKey.ParticipantAnswersKey(quizID.String(), participantID.String())
	got := mr.HGet(answersKey, questionID.String())
	if got != string(answer) {
		t.Errorf("hash value = %q, want %q", got, answer)
	}

	queued, err := mr.List(config.WorkerKey.PersistAnswersQueue)
	if err != nil {
		t.Fatalf("read queue: %v", err)
	}
	if len(queued) != 1 {
		t.Fatalf("queue length = %d, want 1", len(queued))
	}

	var payload AutosavePayload
	if err := json.Unmarshal([]byte(queued[0]), &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.QuizID != quizID.String() {
		t.Errorf("payload quiz id = %q, want %q", payload.QuizID, quizID)
	}
	if payload.QuestionID != questionID.String() {
		t.Errorf("payload question id = %q, want %q", payload.QuestionID, questionID)
	}
	if string(payload.Answer) != string(answer) {
		t.Errorf("payload answer = %s, want %s", payload.Answer, answer)
	}
}

func TestAutosaveAnswerOverwritesPreviousValue(t *testing.T) {
	svc, mr := newTestParticipantService(t)
	ctx := context.Background()

	quizID := uuid.New()
	participantID := uuid.New()
	questionID := uuid.New()

	first := json.RawMessage(`{"type":"text","text":"draft"}`)
	second := json.RawMessage(`{"type":"text","text":"final"}`)

	if err := svc.AutosaveAnswer(ctx, quizID, participantID, questionID, first); err != nil {
		t.Fatalf("first autosave: %v", err)
	}
	if err := svc.AutosaveAnswer(ctx, quizID, participantID, questionID, second); err != nil {
		t.Fatalf("second autosave: %v", err)
	}

	answersKey := config.CacheKey.ParticipantAnswersKey(quizID.String(), participantID.String())
	if got := mr.HGet(answersKey, questionID.String()); got != string(second) {
		t.Errorf("hash value = %q, want latest %q", got, second)
	}

	// Both writes stay on the persistence queue; the worker upserts in order.
	queued, err := mr.List(config.WorkerKey.PersistAnswersQueue)
	if err != nil {
		t.Fatalf("read queue: %v", err)
	}
	if len(queued) != 2 {
		t.Errorf("queue length = %d, want 2", len(queued))
	}
}

func TestGetAttemptStateFromCache(t *testing.T) {
	svc, mr := newTestParticipantService(t)
	ctx := context.Background()

	quizID := uuid.New()
	participantID := uuid.New()

	// Quiz published 30 minutes long, participant joined 10 minutes ago.
	start := time.Now().Add(-10 * time.Minute).Unix()
	mr.Set(config.CacheKey.QuizDurationKey(quizID.String()), "30")
	mr.Set(config.CacheKey.ParticipantStartKey(quizID.String(), participantID.String()), strconv.FormatInt(start, 10))

	answersKey := config.CacheKey.ParticipantAnswersKey(quizID.String(), participantID.String())
	mr.HSet(answersKey, "q1", `{"type":"choice","index":0}`)

	state, err := svc.GetAttemptState(ctx, quizID, participantID)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}

	if len(state.AutosavedAnswers) != 1 {
		t.Errorf("autosaved answers = %d, want 1", len(state.AutosavedAnswers))
	}
	// Roughly 20 minutes should remain.
	if state.RemainingSeconds < 19*60 || state.RemainingSeconds > 20*60 {
		t.Errorf("remaining = %.0fs, want ~1200s", state.RemainingSeconds)
	}
}

func TestGetAttemptStateClampsExpiredClock(t *testing.T) {
	svc, mr := newTestParticipantService(t)
	ctx := context.Background()

	quizID := uuid.New()
	participantID := uuid.New()

	start := time.Now().Add(-2 * time.Hour).Unix()
	mr.Set(config.CacheKey.QuizDurationKey(quizID.String()), "30")
	mr.Set(config.CacheKey.ParticipantStartKey(quizID.String(), participantID.String()), strconv.FormatInt(start, 10))

	state, err := svc.GetAttemptState(ctx, quizID, participantID)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if state.RemainingSeconds != 0 {
		t.Errorf("remaining = %.0fs, want 0", state.RemainingSeconds)
	}
}

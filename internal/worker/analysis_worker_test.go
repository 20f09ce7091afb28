package worker

import (
	"context"
	"encoding/json"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/quizhive/quizhive-backend/internal/config"
	"github.com/quizhive/quizhive-backend/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func newTestAnalysisWorker(t *testing.T) (*AnalysisWorker, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	// The integrity service stays nil: these tests only cover payloads that
	// are discarded before the engine runs.
	return NewAnalysisWorker(nil, client, zerolog.Nop()), mr
}

func TestAnalysisWorkerDiscardsMalformedPayload(t *testing.T) {
	w, mr := newTestAnalysisWorker(t)
	ctx := context.Background()

	if _, err := mr.RPush(config.WorkerKey.AnalyzeQueue, "{not json"); err != nil {
		t.Fatalf("seed queue: %v", err)
	}

	w.processNext(ctx)

	if queued, _ := mr.List(config.WorkerKey.AnalyzeQueue); len(queued) != 0 {
		t.Errorf("queue length = %d, want 0 (malformed payload must not be requeued)", len(queued))
	}
}

func TestAnalysisWorkerDiscardsInvalidIDs(t *testing.T) {
	w, mr := newTestAnalysisWorker(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		payload service.AnalyzePayload
	}{
		{"bad quiz id", service.AnalyzePayload{QuizID: "not-a-uuid", SubmissionID: uuid.NewString()}},
		{"bad submission id", service.AnalyzePayload{QuizID: uuid.NewString(), SubmissionID: "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.payload)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if _, err := mr.RPush(config.WorkerKey.AnalyzeQueue, string(data)); err != nil {
				t.Fatalf("seed queue: %v", err)
			}

			w.processNext(ctx)

			if queued, _ := mr.List(config.WorkerKey.AnalyzeQueue); len(queued) != 0 {
				t.Errorf("queue length = %d, want 0", len(queued))
			}
		})
	}
}

package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/quizhive/quizhive-backend/internal/config"
	"github.com/quizhive/quizhive-backend/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const analysisPollTimeout = 1 * time.Second // Must be >= 1s to satisfy Redis

// AnalysisWorker consumes the integrity queue and runs the engine for each
// submitted attempt. Verdicts land in PostgreSQL; suspicious ones also fan
// out to the live monitor.
type AnalysisWorker struct {
	integrityService *service.IntegrityService
	rdb              *redis.Client
	log              zerolog.Logger
}

// NewAnalysisWorker creates a new AnalysisWorker.
func NewAnalysisWorker(integrityService *service.IntegrityService, rdb *redis.Client, log zerolog.Logger) *AnalysisWorker {
	return &AnalysisWorker{
		integrityService: integrityService,
		rdb:              rdb,
		log:              log.With().Str("component", "analysis_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *AnalysisWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AnalysisWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("AnalysisWorker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *AnalysisWorker) processNext(ctx context.Context) {
	result, err := w.rdb.BLPop(ctx, analysisPollTimeout, config.WorkerKey.AnalyzeQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error, sleeping 3s")
			time.Sleep(3 * time.Second)
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var payload service.AnalyzePayload
	if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
		// Malformed JSON cannot be retried. Log and discard.
		w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed payload")
		return
	}

	quizID, err := uuid.Parse(payload.QuizID)
	if err != nil {
		w.log.Error().Str("quiz_id", payload.QuizID).Msg("Discarding payload with invalid quiz ID")
		return
	}
	submissionID, err := uuid.Parse(payload.SubmissionID)
	if err != nil {
		w.log.Error().Str("submission_id", payload.SubmissionID).Msg("Discarding payload with invalid submission ID")
		return
	}

	verdict, err := w.integrityService.AnalyzeSubmission(ctx, quizID, submissionID)
	if err != nil {
		w.log.Error().Err(err).
			Str("submission_id", payload.SubmissionID).
			Msg("Analysis failed, requeueing in 5s")
		w.rdb.RPush(ctx, config.WorkerKey.AnalyzeQueue, result[1])
		time.Sleep(5 * time.Second)
		return
	}

	if verdict.IsSuspicious {
		w.publishFlagged(ctx, quizID, verdict.ParticipantID, verdict.ParticipantName, verdict.SuspicionScore)
	}
}

// publishFlagged notifies attached monitors that a verdict crossed the
// suspicion threshold.
func (w *AnalysisWorker) publishFlagged(ctx context.Context, quizID, participantID uuid.UUID, name string, score float64) {
	event, err := json.Marshal(service.MonitorEvent{
		Type:            "flagged",
		QuizID:          quizID.String(),
		ParticipantID:   participantID.String(),
		ParticipantName: name,
		SuspicionScore:  &score,
	})
	if err != nil {
		return
	}
	if err := w.rdb.Publish(ctx, config.CacheKey.QuizMonitorChannel(quizID.String()), event).Err(); err != nil {
		w.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("Failed to publish flagged event")
	}
}

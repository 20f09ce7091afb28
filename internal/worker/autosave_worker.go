package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quizhive/quizhive-backend/internal/config"
	"github.com/quizhive/quizhive-backend/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	AnswerBatchSize    = 50
	AnswerBatchTimeout = 2 * time.Second
	AnswerPollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

// AutosaveWorker drains the autosave queue into participant_answers so a
// Redis flush never loses an in-progress attempt.
type AutosaveWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewAutosaveWorker creates a new AutosaveWorker.
func NewAutosaveWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *AutosaveWorker {
	return &AutosaveWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "autosave_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *AutosaveWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AutosaveWorker started")

	buffer := make([]*service.AutosavePayload, 0, AnswerBatchSize)
	lastFlush := time.Now()

	for {
		if len(buffer) > 0 {
			if len(buffer) >= AnswerBatchSize || time.Since(lastFlush) >= AnswerBatchTimeout {
				w.flushSafe(ctx, buffer)
				buffer = buffer[:0]
				lastFlush = time.Now()
			}
		}

		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		result, err := w.rdb.BLPop(ctx, AnswerPollTimeout, config.WorkerKey.PersistAnswersQueue).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			time.Sleep(3 * time.Second)
			continue
		}

		if len(result) < 2 {
			continue
		}

		var payload service.AutosavePayload
		if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
			w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed JSON")
			continue
		}

		buffer = append(buffer, &payload)
	}
}

// flushSafe attempts a bulk upsert, falling back to row-by-row with requeue.
func (w *AutosaveWorker) flushSafe(ctx context.Context, batch []*service.AutosavePayload) {
	if len(batch) == 0 {
		return
	}
	if err := w.bulkUpsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk upsert failed, attempting row-by-row recovery")
		w.fallbackUpsert(ctx, batch)
	}
}

// bulkUpsert writes the whole batch in one round trip. CopyFrom cannot
// upsert, so this unnests arrays instead: the same answer autosaved twice
// must update, not duplicate.
func (w *AutosaveWorker) bulkUpsert(ctx context.Context, batch []*service.AutosavePayload) error {
	n := len(batch)

	quizIDs := make([]uuid.UUID, 0, n)
	participantIDs := make([]uuid.UUID, 0, n)
	questionIDs := make([]uuid.UUID, 0, n)
	answers := make([]string, 0, n)
	savedAts := make([]time.Time, 0, n)

	for _, p := range batch {
		quizID, err := uuid.Parse(p.QuizID)
		if err != nil {
			return err
		}
		participantID, err := uuid.Parse(p.ParticipantID)
		if err != nil {
			return err
		}
		questionID, err := uuid.Parse(p.QuestionID)
		if err != nil {
			return err
		}
		quizIDs = append(quizIDs, quizID)
		participantIDs = append(participantIDs, participantID)
		questionIDs = append(questionIDs, questionID)
		answers = append(answers, string(p.Answer))
		savedAts = append(savedAts, time.Unix(p.SavedAt, 0))
	}

	_, err := w.pool.Exec(ctx, `
		INSERT INTO participant_answers (quiz_id, participant_id, question_id, answer, saved_at)
		SELECT u.quiz_id, u.participant_id, u.question_id, u.answer::jsonb, u.saved_at
		FROM UNNEST(
			$1::uuid[],
			$2::uuid[],
			$3::uuid[],
			$4::text[],
			$5::timestamptz[]
		) AS u (quiz_id, participant_id, question_id, answer, saved_at)
		ON CONFLICT (participant_id, question_id) DO UPDATE
		SET answer = EXCLUDED.answer, saved_at = EXCLUDED.saved_at`,
		quizIDs, participantIDs, questionIDs, answers, savedAts,
	)
	return err
}

func (w *AutosaveWorker) fallbackUpsert(ctx context.Context, batch []*service.AutosavePayload) {
	requeueList := make([]*service.AutosavePayload, 0)

	for _, p := range batch {
		quizID, err := uuid.Parse(p.QuizID)
		if err != nil {
			w.log.Error().Str("quiz_id", p.QuizID).Msg("Dropping autosave with invalid quiz ID")
			continue
		}
		participantID, err := uuid.Parse(p.ParticipantID)
		if err != nil {
			w.log.Error().Str("participant_id", p.ParticipantID).Msg("Dropping autosave with invalid participant ID")
			continue
		}
		questionID, err := uuid.Parse(p.QuestionID)
		if err != nil {
			w.log.Error().Str("question_id", p.QuestionID).Msg("Dropping autosave with invalid question ID")
			continue
		}

		_, err = w.pool.Exec(ctx,
			`INSERT INTO participant_answers (quiz_id, participant_id, question_id, answer, saved_at)
			 VALUES ($1, $2, $3, $4::jsonb, $5)
			 ON CONFLICT (participant_id, question_id) DO UPDATE
			 SET answer = EXCLUDED.answer, saved_at = EXCLUDED.saved_at`,
			quizID, participantID, questionID, string(p.Answer), time.Unix(p.SavedAt, 0),
		)
		if err != nil {
			w.log.Error().Err(err).Str("participant_id", p.ParticipantID).Msg("Upsert failed, requeueing")
			requeueList = append(requeueList, p)
		}
	}

	if len(requeueList) > 0 {
		w.requeue(ctx, requeueList)
	}
}

func (w *AutosaveWorker) requeue(ctx context.Context, items []*service.AutosavePayload) {
	pipe := w.rdb.Pipeline()
	for _, p := range items {
		data, _ := json.Marshal(p)
		pipe.RPush(ctx, config.WorkerKey.PersistAnswersQueue, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Msg("CRITICAL: Failed to requeue autosaves. Data loss occurred.")
		return
	}
	w.log.Info().Int("count", len(items)).Msg("Requeued failed autosaves")
	// Avoid thrashing while the database is down.
	time.Sleep(2 * time.Second)
}

func (w *AutosaveWorker) shutdown(buffer []*service.AutosavePayload) {
	w.log.Info().Msg("Worker stopping, flushing remaining buffer...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(buffer) > 0 {
		w.flushSafe(shutdownCtx, buffer)
	}
}

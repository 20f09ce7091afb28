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
	ScoreBatchSize    = 50
	ScoreBatchTimeout = 2 * time.Second
	ScorePollTimeout  = 1 * time.Second
)

// ScoringWorker drains the score queue into submissions.score. Scores are
// computed in RAM on the submit path and persisted here.
type ScoringWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewScoringWorker creates a new ScoringWorker.
func NewScoringWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *ScoringWorker {
	return &ScoringWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "scoring_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *ScoringWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ScoringWorker started")

	batch := make([]*service.ScorePayload, 0, ScoreBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= ScoreBatchSize || time.Since(lastFlush) >= ScoreBatchTimeout) {
			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			w.flushSafe(shutdownCtx, batch)
			cancel()
			return

		default:
			item, err := w.rdb.BLPop(ctx, ScorePollTimeout, config.WorkerKey.PersistScoresQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p service.ScorePayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &p)
		}
	}
}

func (w *ScoringWorker) flushSafe(ctx context.Context, batch []*service.ScorePayload) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkUpdateScores(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("Bulk score update failed, using fallback")

		for _, p := range batch {
			if err := w.persistSingle(ctx, p); err != nil {
				w.log.Error().Err(err).
					Str("submission_id", p.SubmissionID).
					Msg("persistSingle failed, requeueing")
				raw, _ := json.Marshal(p)
				w.rdb.RPush(ctx, config.WorkerKey.PersistScoresQueue, raw)
			}
		}
	}
}

// bulkUpdateScores updates the whole batch in one UNNEST round trip.
func (w *ScoringWorker) bulkUpdateScores(ctx context.Context, batch []*service.ScorePayload) error {
	n := len(batch)

	ids := make([]uuid.UUID, 0, n)
	scores := make([]float64, 0, n)

	for _, p := range batch {
		id, err := uuid.Parse(p.SubmissionID)
		if err != nil {
			return err
		}
		ids = append(ids, id)
		scores = append(scores, p.Score)
	}

	_, err := w.pool.Exec(ctx, `
		UPDATE submissions AS s
		SET score = t.score
		FROM (
			SELECT u.id, u.score
			FROM UNNEST($1::uuid[], $2::float8[]) AS u (id, score)
		) AS t
		WHERE s.id = t.id`,
		ids, scores,
	)
	return err
}

func (w *ScoringWorker) persistSingle(ctx context.Context, p *service.ScorePayload) error {
	id, err := uuid.Parse(p.SubmissionID)
	if err != nil {
		return err
	}

	_, err = w.pool.Exec(ctx,
		`UPDATE submissions SET score = $1 WHERE id = $2`,
		p.Score, id,
	)
	return err
}

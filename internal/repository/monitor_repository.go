package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// MonitorRepository provides data access for the live quiz monitoring feature.
// It combines PostgreSQL (submissions, participants) and Redis (autosave
// counters) to build the host's live view.
type MonitorRepository struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
}

// NewMonitorRepository creates a new MonitorRepository.
func NewMonitorRepository(pool *pgxpool.Pool, rdb *redis.Client) *MonitorRepository {
	return &MonitorRepository{pool: pool, rdb: rdb}
}

// GetActiveParticipantIDs returns participants of a quiz who have joined but
// not yet submitted.
func (r *MonitorRepository) GetActiveParticipantIDs(ctx context.Context, quizID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.id FROM participants p
		 WHERE p.quiz_id = $1
		   AND NOT EXISTS (SELECT 1 FROM submissions s WHERE s.participant_id = p.id)`,
		quizID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetAnsweredCounts returns the count of autosaved answers for every active
// participant of the given quiz.
func (r *MonitorRepository) GetAnsweredCounts(ctx context.Context, quizID uuid.UUID) (map[uuid.UUID]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT participant_id, COUNT(*)
		 FROM participant_answers
		 WHERE quiz_id = $1
		 GROUP BY participant_id`,
		quizID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int64)
	for rows.Next() {
		var pid uuid.UUID
		var count int64
		if err := rows.Scan(&pid, &count); err != nil {
			return nil, err
		}
		counts[pid] = count
	}
	return counts, rows.Err()
}

// GetFlaggedCounts returns, per participant, how many integrity flags their
// submission carries. Unanalyzed submissions are reported with zero flags.
func (r *MonitorRepository) GetFlaggedCounts(ctx context.Context, quizID uuid.UUID) (map[uuid.UUID]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT participant_id,
		        COALESCE(CASE WHEN jsonb_typeof(analysis->'flags') = 'array'
		                      THEN jsonb_array_length(analysis->'flags')
		                 END, 0)
		 FROM submissions
		 WHERE quiz_id = $1`,
		quizID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int64)
	for rows.Next() {
		var pid uuid.UUID
		var count int64
		if err := rows.Scan(&pid, &count); err != nil {
			return nil, err
		}
		counts[pid] = count
	}
	return counts, rows.Err()
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quizhive/quizhive-backend/internal/model"
)

// ParticipantRepository handles participant data access.
type ParticipantRepository struct {
	pool *pgxpool.Pool
}

// NewParticipantRepository creates a new ParticipantRepository.
func NewParticipantRepository(pool *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{pool: pool}
}

// GetByID retrieves a participant by its UUID.
func (r *ParticipantRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Participant, error) {
	p := &model.Participant{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, quiz_id, name, joined_at FROM participants WHERE id = $1`, id,
	).Scan(&p.ID, &p.QuizID, &p.Name, &p.JoinedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListByQuiz retrieves every participant of a quiz ordered by join time.
func (r *ParticipantRepository) ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]model.Participant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, quiz_id, name, joined_at
		 FROM participants WHERE quiz_id = $1
		 ORDER BY joined_at`, quizID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []model.Participant
	for rows.Next() {
		var p model.Participant
		if err := rows.Scan(&p.ID, &p.QuizID, &p.Name, &p.JoinedAt); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// Create inserts a new participant.
func (r *ParticipantRepository) Create(ctx context.Context, p *model.Participant) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO participants (quiz_id, name)
		 VALUES ($1, $2)
		 RETURNING id, joined_at`,
		p.QuizID, p.Name,
	).Scan(&p.ID, &p.JoinedAt)
}

// CountByQuiz returns the number of participants who joined a quiz.
func (r *ParticipantRepository) CountByQuiz(ctx context.Context, quizID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM participants WHERE quiz_id = $1`, quizID,
	).Scan(&count)
	return count, err
}

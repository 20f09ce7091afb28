package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quizhive/quizhive-backend/internal/model"
)

// QuizRepository handles quiz data access.
type QuizRepository struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

// GetByID retrieves a quiz by its UUID.
func (r *QuizRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	q := &model.Quiz{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, host_id, entry_code, duration_minutes, question_count,
		        status, created_at, updated_at
		 FROM quizzes WHERE id = $1`, id,
	).Scan(&q.ID, &q.Title, &q.HostID, &q.EntryCode, &q.DurationMinutes,
		&q.QuestionCount, &q.Status, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// GetByEntryCode retrieves an open quiz by its entry code.
func (r *QuizRepository) GetByEntryCode(ctx context.Context, code string) (*model.Quiz, error) {
	q := &model.Quiz{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, host_id, entry_code, duration_minutes, question_count,
		        status, created_at, updated_at
		 FROM quizzes WHERE entry_code = $1`, code,
	).Scan(&q.ID, &q.Title, &q.HostID, &q.EntryCode, &q.DurationMinutes,
		&q.QuestionCount, &q.Status, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ListByHostPaginated retrieves quizzes owned by a host with pagination.
func (r *QuizRepository) ListByHostPaginated(ctx context.Context, hostID, limit, offset int) ([]model.Quiz, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quizzes WHERE host_id = $1`, hostID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, title, host_id, entry_code, duration_minutes, question_count,
		        status, created_at, updated_at
		 FROM quizzes WHERE host_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		hostID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var quizzes []model.Quiz
	for rows.Next() {
		var q model.Quiz
		if err := rows.Scan(&q.ID, &q.Title, &q.HostID, &q.EntryCode, &q.DurationMinutes,
			&q.QuestionCount, &q.Status, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, 0, err
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, total, rows.Err()
}

// ListByStatus retrieves every quiz in the given status. Used at boot to
// prewarm the paper cache for open quizzes.
func (r *QuizRepository) ListByStatus(ctx context.Context, status model.QuizStatus) ([]model.Quiz, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, host_id, entry_code, duration_minutes, question_count,
		        status, created_at, updated_at
		 FROM quizzes WHERE status = $1`, status,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []model.Quiz
	for rows.Next() {
		var q model.Quiz
		if err := rows.Scan(&q.ID, &q.Title, &q.HostID, &q.EntryCode, &q.DurationMinutes,
			&q.QuestionCount, &q.Status, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

// Create inserts a new quiz.
func (r *QuizRepository) Create(ctx context.Context, q *model.Quiz) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO quizzes (title, host_id, entry_code, duration_minutes, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		q.Title, q.HostID, q.EntryCode, q.DurationMinutes, q.Status,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// Update persists title/duration changes to a quiz.
func (r *QuizRepository) Update(ctx context.Context, q *model.Quiz) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE quizzes SET title = $1, duration_minutes = $2, updated_at = NOW()
		 WHERE id = $3`,
		q.Title, q.DurationMinutes, q.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("quiz %s not found", q.ID)
	}
	return nil
}

// UpdateStatus transitions a quiz and stores its entry code and question count.
func (r *QuizRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.QuizStatus, entryCode string, questionCount int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE quizzes
		 SET status = $1, entry_code = $2, question_count = $3, updated_at = NOW()
		 WHERE id = $4`,
		status, entryCode, questionCount, id,
	)
	return err
}

// Delete removes a draft quiz and its questions.
func (r *QuizRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	return err
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quizhive/quizhive-backend/internal/model"
)

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByQuiz retrieves all questions for a given quiz, ordered by order_num.
func (r *QuestionRepository) ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, quiz_id, question_text, question_type, options, correct_answer, order_num, points
		 FROM questions WHERE quiz_id = $1
		 ORDER BY order_num`, quizID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Text, &q.Type, &q.Options, &q.CorrectAnswer, &q.OrderNum, &q.Points); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (quiz_id, question_text, question_type, options, correct_answer, order_num, points)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		q.QuizID, q.Text, q.Type, q.Options, q.CorrectAnswer, q.OrderNum, q.Points,
	).Scan(&q.ID)
}

// ReplaceAll swaps a quiz's question set atomically. Used by the bulk editor
// while the quiz is still a draft.
func (r *QuestionRepository) ReplaceAll(ctx context.Context, quizID uuid.UUID, questions []model.Question) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE quiz_id = $1`, quizID); err != nil {
		return err
	}

	for i := range questions {
		q := &questions[i]
		q.QuizID = quizID
		if err := tx.QueryRow(ctx,
			`INSERT INTO questions (quiz_id, question_text, question_type, options, correct_answer, order_num, points)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING id`,
			q.QuizID, q.Text, q.Type, q.Options, q.CorrectAnswer, q.OrderNum, q.Points,
		).Scan(&q.ID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// CountByQuiz returns the number of questions in a quiz.
func (r *QuestionRepository) CountByQuiz(ctx context.Context, quizID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM questions WHERE quiz_id = $1`, quizID,
	).Scan(&count)
	return count, err
}

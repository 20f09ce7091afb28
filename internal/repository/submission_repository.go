package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quizhive/quizhive-backend/internal/model"
)

// SubmissionRepository handles submission data access. Answers, typing
// telemetry, per-question timings and analysis verdicts live in jsonb columns.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// GetByID retrieves a submission by its UUID.
func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	s := &model.Submission{}
	err := r.pool.QueryRow(ctx,
		`SELECT s.id, s.quiz_id, s.participant_id, p.name, s.answers,
		        s.completion_seconds, s.submitted_at, s.typing_data, s.question_seconds, s.score
		 FROM submissions s
		 JOIN participants p ON p.id = s.participant_id
		 WHERE s.id = $1`, id,
	).Scan(&s.ID, &s.QuizID, &s.ParticipantID, &s.ParticipantName, &s.Answers,
		&s.CompletionSeconds, &s.SubmittedAt, &s.Typing, &s.QuestionSeconds, &s.Score)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByParticipant retrieves the submission a participant made, if any.
func (r *SubmissionRepository) GetByParticipant(ctx context.Context, participantID uuid.UUID) (*model.Submission, error) {
	s := &model.Submission{}
	err := r.pool.QueryRow(ctx,
		`SELECT s.id, s.quiz_id, s.participant_id, p.name, s.answers,
		        s.completion_seconds, s.submitted_at, s.typing_data, s.question_seconds, s.score
		 FROM submissions s
		 JOIN participants p ON p.id = s.participant_id
		 WHERE s.participant_id = $1`, participantID,
	).Scan(&s.ID, &s.QuizID, &s.ParticipantID, &s.ParticipantName, &s.Answers,
		&s.CompletionSeconds, &s.SubmittedAt, &s.Typing, &s.QuestionSeconds, &s.Score)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListByQuiz retrieves every submission of a quiz, ordered by submit time.
// This is the cohort the integrity engine analyzes.
func (r *SubmissionRepository) ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]*model.Submission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.quiz_id, s.participant_id, p.name, s.answers,
		        s.completion_seconds, s.submitted_at, s.typing_data, s.question_seconds, s.score
		 FROM submissions s
		 JOIN participants p ON p.id = s.participant_id
		 WHERE s.quiz_id = $1
		 ORDER BY s.submitted_at`, quizID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var submissions []*model.Submission
	for rows.Next() {
		s := &model.Submission{}
		if err := rows.Scan(&s.ID, &s.QuizID, &s.ParticipantID, &s.ParticipantName, &s.Answers,
			&s.CompletionSeconds, &s.SubmittedAt, &s.Typing, &s.QuestionSeconds, &s.Score); err != nil {
			return nil, err
		}
		submissions = append(submissions, s)
	}
	return submissions, rows.Err()
}

// Create inserts a new submission.
func (r *SubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO submissions
		   (quiz_id, participant_id, answers, completion_seconds, typing_data, question_seconds, score)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, submitted_at`,
		s.QuizID, s.ParticipantID, s.Answers, s.CompletionSeconds, s.Typing, s.QuestionSeconds, s.Score,
	).Scan(&s.ID, &s.SubmittedAt)
}

// ExistsForParticipant reports whether the participant has already submitted.
func (r *SubmissionRepository) ExistsForParticipant(ctx context.Context, participantID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM submissions WHERE participant_id = $1)`, participantID,
	).Scan(&exists)
	return exists, err
}

// SaveAnalysis stores the integrity verdict for a submission.
func (r *SubmissionRepository) SaveAnalysis(ctx context.Context, submissionID uuid.UUID, result *model.AnalysisResult) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE submissions
		 SET analysis = $1, analyzed_at = NOW()
		 WHERE id = $2`,
		result, submissionID,
	)
	return err
}

// GetAnalysis retrieves the stored integrity verdict for a submission.
// Returns (nil, nil) when the submission exists but has not been analyzed yet.
func (r *SubmissionRepository) GetAnalysis(ctx context.Context, submissionID uuid.UUID) (*model.AnalysisResult, error) {
	var result *model.AnalysisResult
	err := r.pool.QueryRow(ctx,
		`SELECT analysis FROM submissions WHERE id = $1`, submissionID,
	).Scan(&result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateScore persists the graded score for a submission.
func (r *SubmissionRepository) UpdateScore(ctx context.Context, submissionID uuid.UUID, score float64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE submissions SET score = $1 WHERE id = $2`,
		score, submissionID,
	)
	return err
}

// CountByQuiz returns the number of submissions for a quiz.
func (r *SubmissionRepository) CountByQuiz(ctx context.Context, quizID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM submissions WHERE quiz_id = $1`, quizID,
	).Scan(&count)
	return count, err
}

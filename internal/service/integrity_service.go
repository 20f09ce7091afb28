package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/quizhive/quizhive-backend/internal/config"
	"github.com/quizhive/quizhive-backend/internal/integrity"
	"github.com/quizhive/quizhive-backend/internal/model"
	"github.com/quizhive/quizhive-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Integrity errors.
var (
	ErrAnalysisPending    = errors.New("analysis has not completed for this submission")
	ErrSubmissionNotFound = errors.New("submission not found in quiz cohort")
)

// IntegrityService runs the integrity engine over stored submissions and
// manages verdict persistence plus the cached batch report.
type IntegrityService struct {
	submissionRepo *repository.SubmissionRepository
	questionRepo   *repository.QuestionRepository
	quizRepo       *repository.QuizRepository
	rdb            *redis.Client
	cfg            *config.Config
	log            zerolog.Logger
}

// NewIntegrityService creates a new IntegrityService.
func NewIntegrityService(
	submissionRepo *repository.SubmissionRepository,
	questionRepo *repository.QuestionRepository,
	quizRepo *repository.QuizRepository,
	rdb *redis.Client,
	cfg *config.Config,
	log zerolog.Logger,
) *IntegrityService {
	return &IntegrityService{
		submissionRepo: submissionRepo,
		questionRepo:   questionRepo,
		quizRepo:       quizRepo,
		rdb:            rdb,
		cfg:            cfg,
		log:            log.With().Str("component", "integrity_service").Logger(),
	}
}

// AnalyzeSubmission runs the engine for one submission against its quiz
// cohort, persists the verdict, and invalidates the cached batch report.
func (s *IntegrityService) AnalyzeSubmission(ctx context.Context, quizID, submissionID uuid.UUID) (*model.AnalysisResult, error) {
	cohort, err := s.submissionRepo.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("list cohort: %w", err)
	}

	var target *model.Submission
	for _, sub := range cohort {
		if sub.ID == submissionID {
			target = sub
			break
		}
	}
	if target == nil {
		return nil, ErrSubmissionNotFound
	}

	questions, err := s.questionRepo.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	result, err := integrity.AnalyzeSubmission(target, cohort, questions)
	if err != nil {
		return nil, fmt.Errorf("analyze submission: %w", err)
	}

	if err := s.submissionRepo.SaveAnalysis(ctx, submissionID, result); err != nil {
		return nil, fmt.Errorf("save analysis: %w", err)
	}

	// The stored verdicts changed, so any cached batch report is stale.
	if err := s.rdb.Del(ctx, config.CacheKey.QuizReportKey(quizID.String())).Err(); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("Failed to invalidate report cache")
	}

	s.log.Info().
		Str("quiz_id", quizID.String()).
		Str("submission_id", submissionID.String()).
		Float64("suspicion_score", result.SuspicionScore).
		Bool("suspicious", result.IsSuspicious).
		Msg("Submission analyzed")

	return result, nil
}

// GetSubmissionAnalysis returns the stored verdict for a submission.
// Returns ErrAnalysisPending when the worker has not processed it yet.
func (s *IntegrityService) GetSubmissionAnalysis(ctx context.Context, submissionID uuid.UUID) (*model.AnalysisResult, error) {
	result, err := s.submissionRepo.GetAnalysis(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ErrAnalysisPending
	}
	return result, nil
}

// nonNilCohort widens possibly nil repository results to the non-nil empty
// slices the engine requires. A quiz with zero submissions is a valid empty
// report, not a precondition violation.
func nonNilCohort(cohort []*model.Submission, questions []model.Question) ([]*model.Submission, []model.Question) {
	if cohort == nil {
		cohort = []*model.Submission{}
	}
	if questions == nil {
		questions = []model.Question{}
	}
	return cohort, questions
}

// loadCohort fetches a quiz's submissions and questions for batch analysis.
func (s *IntegrityService) loadCohort(ctx context.Context, quizID uuid.UUID) ([]*model.Submission, []model.Question, error) {
	cohort, err := s.submissionRepo.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, nil, fmt.Errorf("list cohort: %w", err)
	}
	questions, err := s.questionRepo.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, nil, fmt.Errorf("list questions: %w", err)
	}
	cohort, questions = nonNilCohort(cohort, questions)
	return cohort, questions, nil
}

// GetBatchReport returns the ranked report for a quiz. Reports are cached in
// Redis for ReportCacheTTL; force bypasses and refreshes the cache.
func (s *IntegrityService) GetBatchReport(ctx context.Context, quizID uuid.UUID, force bool) (*model.BatchReport, error) {
	cacheKey := config.CacheKey.QuizReportKey(quizID.String())

	if !force {
		data, err := s.rdb.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var report model.BatchReport
			if err := json.Unmarshal(data, &report); err == nil {
				return &report, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("Report cache read failed")
		}
	}

	cohort, questions, err := s.loadCohort(ctx, quizID)
	if err != nil {
		return nil, err
	}

	report, err := integrity.BuildBatchReport(cohort, questions)
	if err != nil {
		return nil, fmt.Errorf("build batch report: %w", err)
	}

	if data, err := json.Marshal(report); err == nil {
		if err := s.rdb.Set(ctx, cacheKey, data, s.cfg.ReportCacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("Report cache write failed")
		}
	}

	return report, nil
}

// ReanalyzeQuiz recomputes and persists verdicts for every stored submission
// of a quiz, then refreshes the cached batch report. Used after a host edits
// the cohort (e.g. removes a participant) or after an engine tuning change.
func (s *IntegrityService) ReanalyzeQuiz(ctx context.Context, quizID uuid.UUID) (*model.BatchReport, error) {
	cohort, questions, err := s.loadCohort(ctx, quizID)
	if err != nil {
		return nil, err
	}

	report, err := integrity.BuildBatchReport(cohort, questions)
	if err != nil {
		return nil, fmt.Errorf("build batch report: %w", err)
	}

	// Persist per-submission verdicts so single-submission reads agree with
	// the report.
	byParticipant := make(map[uuid.UUID]*model.AnalysisResult, len(report.Reports))
	for _, result := range report.Reports {
		byParticipant[result.ParticipantID] = result
	}
	for _, sub := range cohort {
		result, ok := byParticipant[sub.ParticipantID]
		if !ok {
			continue
		}
		if err := s.submissionRepo.SaveAnalysis(ctx, sub.ID, result); err != nil {
			s.log.Error().Err(err).
				Str("submission_id", sub.ID.String()).
				Msg("Failed to persist reanalyzed verdict")
		}
	}

	if data, err := json.Marshal(report); err == nil {
		if err := s.rdb.Set(ctx, config.CacheKey.QuizReportKey(quizID.String()), data, s.cfg.ReportCacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("Report cache write failed")
		}
	}

	s.log.Info().
		Str("quiz_id", quizID.String()).
		Int("submissions", report.TotalSubmissions).
		Int("flagged", report.FlaggedSubmissions).
		Msg("Quiz reanalyzed")

	return report, nil
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quizhive/quizhive-backend/internal/config"
	"github.com/quizhive/quizhive-backend/internal/model"
	"github.com/quizhive/quizhive-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Submission errors.
var (
	ErrAlreadySubmitted    = errors.New("participant has already submitted this quiz")
	ErrAnswerCountMismatch = errors.New("answer count does not match question count")
)

// SubmissionService accepts finished attempts, grades them in memory against
// the cached answer key, and queues them for integrity analysis.
type SubmissionService struct {
	submissionRepo  *repository.SubmissionRepository
	participantRepo *repository.ParticipantRepository
	quizService     *QuizService
	rdb             *redis.Client
	log             zerolog.Logger
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(
	submissionRepo *repository.SubmissionRepository,
	participantRepo *repository.ParticipantRepository,
	quizService *QuizService,
	rdb *redis.Client,
	log zerolog.Logger,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo:  submissionRepo,
		participantRepo: participantRepo,
		quizService:     quizService,
		rdb:             rdb,
		log:             log.With().Str("component", "submission_service").Logger(),
	}
}

// AnalyzePayload is the queue envelope consumed by the analysis worker.
type AnalyzePayload struct {
	QuizID       string `json:"quiz_id"`
	SubmissionID string `json:"submission_id"`
	EnqueuedAt   int64  `json:"enqueued_at"`
}

// MonitorEvent is published on the quiz monitor channel whenever the live
// view should refresh.
type MonitorEvent struct {
	Type            string   `json:"type"`
	QuizID          string   `json:"quiz_id"`
	ParticipantID   string   `json:"participant_id,omitempty"`
	ParticipantName string   `json:"participant_name,omitempty"`
	SuspicionScore  *float64 `json:"suspicion_score,omitempty"`
}

// Submit grades and stores a finished attempt, then queues it for integrity
// analysis. Grading happens against the Redis answer key so the hot path
// never touches question rows.
func (s *SubmissionService) Submit(ctx context.Context, quizID, participantID uuid.UUID, req *model.SubmitRequest) (*model.Submission, error) {
	exists, err := s.submissionRepo.ExistsForParticipant(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("check existing submission: %w", err)
	}
	if exists {
		return nil, ErrAlreadySubmitted
	}

	paper, err := s.quizService.GetPaper(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("get paper: %w", err)
	}
	if len(req.Answers) != len(paper.Questions) {
		return nil, ErrAnswerCountMismatch
	}

	score, err := s.grade(ctx, quizID, paper, req.Answers)
	if err != nil {
		return nil, err
	}

	submission := &model.Submission{
		QuizID:            quizID,
		ParticipantID:     participantID,
		Answers:           req.Answers,
		CompletionSeconds: req.CompletionSeconds,
		Typing:            req.Typing,
		QuestionSeconds:   req.QuestionSeconds,
	}
	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("store submission: %w", err)
	}

	// The graded score is returned immediately but persisted asynchronously
	// so the submit path stays on Redis.
	submission.Score = &score
	s.enqueueScore(ctx, submission.ID, score)

	if participant, err := s.participantRepo.GetByID(ctx, participantID); err == nil {
		submission.ParticipantName = participant.Name
	}

	// Queue for background integrity analysis and notify the live monitor.
	// Both are best-effort: the submission is already durable.
	s.enqueueAnalysis(ctx, submission)
	s.publishMonitorEvent(ctx, &MonitorEvent{
		Type:            "submission",
		QuizID:          quizID.String(),
		ParticipantID:   participantID.String(),
		ParticipantName: submission.ParticipantName,
	})

	// Drop the attempt's working state.
	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, config.CacheKey.ParticipantAnswersKey(quizID.String(), participantID.String()))
	pipe.Del(ctx, config.CacheKey.ParticipantStartKey(quizID.String(), participantID.String()))
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn().Err(err).Str("participant_id", participantID.String()).Msg("Failed to drop attempt state")
	}

	s.log.Info().
		Str("quiz_id", quizID.String()).
		Str("participant_id", participantID.String()).
		Float64("score", score).
		Msg("Submission accepted")

	return submission, nil
}

// grade scores answers positionally against the cached answer key.
// Comparison runs on normalized answers so casing and padding never cost
// a point.
func (s *SubmissionService) grade(ctx context.Context, quizID uuid.UUID, paper *model.QuizPaper, answers []model.Answer) (float64, error) {
	key, err := s.quizService.GetAnswerKey(ctx, quizID)
	if err != nil {
		return 0, fmt.Errorf("get answer key: %w", err)
	}

	var earned, total int
	for i, question := range paper.Questions {
		entry, ok := key[question.ID.String()]
		if !ok {
			continue
		}
		total += entry.Points
		if answers[i].Normalized().Equal(entry.Answer.Normalized()) {
			earned += entry.Points
		}
	}

	if total == 0 {
		return 0, nil
	}
	return float64(earned) / float64(total) * 100, nil
}

// GetByParticipant returns the participant's stored submission.
func (s *SubmissionService) GetByParticipant(ctx context.Context, participantID uuid.UUID) (*model.Submission, error) {
	return s.submissionRepo.GetByParticipant(ctx, participantID)
}

// ScorePayload is the queue envelope consumed by the scoring worker.
type ScorePayload struct {
	SubmissionID string  `json:"submission_id"`
	Score        float64 `json:"score"`
}

// enqueueScore queues the graded score for durable persistence.
func (s *SubmissionService) enqueueScore(ctx context.Context, submissionID uuid.UUID, score float64) {
	payload, err := json.Marshal(ScorePayload{
		SubmissionID: submissionID.String(),
		Score:        score,
	})
	if err != nil {
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistScoresQueue, payload).Err(); err != nil {
		s.log.Error().Err(err).
			Str("submission_id", submissionID.String()).
			Msg("Failed to queue score for persistence")
	}
}

// enqueueAnalysis pushes the submission onto the analysis queue.
func (s *SubmissionService) enqueueAnalysis(ctx context.Context, submission *model.Submission) {
	payload, err := json.Marshal(AnalyzePayload{
		QuizID:       submission.QuizID.String(),
		SubmissionID: submission.ID.String(),
		EnqueuedAt:   time.Now().Unix(),
	})
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to marshal analyze payload")
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.AnalyzeQueue, payload).Err(); err != nil {
		s.log.Error().Err(err).
			Str("submission_id", submission.ID.String()).
			Msg("Failed to queue submission for analysis")
	}
}

// publishMonitorEvent fans an event out to SSE subscribers of the quiz.
func (s *SubmissionService) publishMonitorEvent(ctx context.Context, event *MonitorEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.QuizMonitorChannel(event.QuizID), data).Err(); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", event.QuizID).Msg("Failed to publish monitor event")
	}
}

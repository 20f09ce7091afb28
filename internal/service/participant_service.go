package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/quizhive/quizhive-backend/internal/config"
	"github.com/quizhive/quizhive-backend/internal/model"
	"github.com/quizhive/quizhive-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Participant errors.
var (
	ErrInvalidEntryCode = errors.New("no open quiz matches this entry code")
)

// ParticipantService handles joining quizzes and the live attempt state.
type ParticipantService struct {
	participantRepo *repository.ParticipantRepository
	quizRepo        *repository.QuizRepository
	authService     *AuthService
	rdb             *redis.Client
	log             zerolog.Logger
}

// NewParticipantService creates a new ParticipantService.
func NewParticipantService(
	participantRepo *repository.ParticipantRepository,
	quizRepo *repository.QuizRepository,
	authService *AuthService,
	rdb *redis.Client,
	log zerolog.Logger,
) *ParticipantService {
	return &ParticipantService{
		participantRepo: participantRepo,
		quizRepo:        quizRepo,
		authService:     authService,
		rdb:             rdb,
		log:             log.With().Str("component", "participant_service").Logger(),
	}
}

// Join validates an entry code, registers a participant, and hands out a
// participant token. The attempt clock starts at join time.
func (s *ParticipantService) Join(ctx context.Context, req *model.JoinQuizRequest) (*model.JoinQuizResponse, error) {
	quiz, err := s.quizRepo.GetByEntryCode(ctx, req.EntryCode)
	if err != nil {
		return nil, ErrInvalidEntryCode
	}
	if quiz.Status != model.QuizStatusPublished && quiz.Status != model.QuizStatusLive {
		return nil, ErrQuizNotOpen
	}

	participant := &model.Participant{
		QuizID: quiz.ID,
		Name:   req.Name,
	}
	if err := s.participantRepo.Create(ctx, participant); err != nil {
		return nil, fmt.Errorf("create participant: %w", err)
	}

	token, err := s.authService.GenerateParticipantToken(ctx, participant.ID, quiz.ID)
	if err != nil {
		return nil, err
	}

	// Record the attempt start for the countdown. DB joined_at is the source
	// of truth; Redis is the fast path.
	startKey := config.CacheKey.ParticipantStartKey(quiz.ID.String(), participant.ID.String())
	if err := s.rdb.Set(ctx, startKey, participant.JoinedAt.Unix(), 0).Err(); err != nil {
		s.log.Warn().Err(err).Str("participant_id", participant.ID.String()).Msg("Failed to cache start time")
	}

	// Hide the entry code from the participant payload.
	quizView := *quiz
	quizView.EntryCode = ""

	s.log.Info().
		Str("quiz_id", quiz.ID.String()).
		Str("participant_id", participant.ID.String()).
		Msg("Participant joined")

	return &model.JoinQuizResponse{
		Token:       token,
		Participant: *participant,
		Quiz:        quizView,
	}, nil
}

// AttemptState is the live state of one participant's attempt: what they have
// autosaved so far and how many seconds remain on their clock.
type AttemptState struct {
	QuizID           uuid.UUID         `json:"quiz_id"`
	ParticipantID    uuid.UUID         `json:"participant_id"`
	AutosavedAnswers map[string]string `json:"autosaved_answers"`
	RemainingSeconds float64           `json:"remaining_seconds"`
}

// GetAttemptState retrieves the participant's autosaved answers and remaining
// time, falling back to PostgreSQL when the start time was evicted from Redis.
func (s *ParticipantService) GetAttemptState(ctx context.Context, quizID, participantID uuid.UUID) (*AttemptState, error) {
	answersKey := config.CacheKey.ParticipantAnswersKey(quizID.String(), participantID.String())
	answers, err := s.rdb.HGetAll(ctx, answersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("get autosaved answers: %w", err)
	}

	durationStr, err := s.rdb.Get(ctx, config.CacheKey.QuizDurationKey(quizID.String())).Result()
	if err != nil {
		return nil, fmt.Errorf("get quiz duration: %w", err)
	}
	durationMinutes, err := strconv.Atoi(durationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid duration format in cache: %w", err)
	}

	var startUnix int64
	startKey := config.CacheKey.ParticipantStartKey(quizID.String(), participantID.String())

	val, err := s.rdb.Get(ctx, startKey).Result()
	switch {
	case errors.Is(err, redis.Nil):
		// Evicted. Fall back to the join time in PostgreSQL and self-heal.
		participant, dbErr := s.participantRepo.GetByID(ctx, participantID)
		if dbErr != nil {
			return nil, fmt.Errorf("start time not found in cache or db: %w", dbErr)
		}
		startUnix = participant.JoinedAt.Unix()
		_ = s.rdb.Set(ctx, startKey, startUnix, 0)
	case err != nil:
		return nil, fmt.Errorf("get start time: %w", err)
	default:
		startUnix, err = strconv.ParseInt(val, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid start time format in cache: %w", err)
		}
	}

	endTime := time.Unix(startUnix, 0).Add(time.Duration(durationMinutes) * time.Minute)
	remaining := time.Until(endTime)
	if remaining < 0 {
		remaining = 0
	}

	return &AttemptState{
		QuizID:           quizID,
		ParticipantID:    participantID,
		AutosavedAnswers: answers,
		RemainingSeconds: remaining.Seconds(),
	}, nil
}

// AutosavePayload is the queue envelope consumed by the autosave worker.
type AutosavePayload struct {
	QuizID        string          `json:"quiz_id"`
	ParticipantID string          `json:"participant_id"`
	QuestionID    string          `json:"question_id"`
	Answer        json.RawMessage `json:"answer"`
	SavedAt       int64           `json:"saved_at"`
}

// AutosaveAnswer records a single answer in the participant's Redis hash and
// queues it for durable persistence.
func (s *ParticipantService) AutosaveAnswer(ctx context.Context, quizID, participantID, questionID uuid.UUID, answer json.RawMessage) error {
	payload, err := json.Marshal(AutosavePayload{
		QuizID:        quizID.String(),
		ParticipantID: participantID.String(),
		QuestionID:    questionID.String(),
		Answer:        answer,
		SavedAt:       time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal autosave payload: %w", err)
	}

	answersKey := config.CacheKey.ParticipantAnswersKey(quizID.String(), participantID.String())

	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, answersKey, questionID.String(), []byte(answer))
	pipe.RPush(ctx, config.WorkerKey.PersistAnswersQueue, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("autosave answer: %w", err)
	}
	return nil
}

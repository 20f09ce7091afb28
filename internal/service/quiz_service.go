package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/quizhive/quizhive-backend/internal/config"
	"github.com/quizhive/quizhive-backend/internal/model"
	"github.com/quizhive/quizhive-backend/internal/repository"
	"github.com/quizhive/quizhive-backend/internal/response"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Domain errors.
var (
	ErrNotQuizHost   = errors.New("not the host of this quiz")
	ErrNoQuestions   = errors.New("quiz has no questions, cannot publish")
	ErrQuizNotDraft  = errors.New("quiz status is not DRAFT")
	ErrQuizNotOpen   = errors.New("quiz is not open for participants")
	ErrQuizNotClosed = errors.New("quiz is not closed yet")
)

// Entry codes avoid ambiguous characters (0/O, 1/I/L) so they survive being
// read aloud in a classroom.
const entryCodeAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"
const entryCodeLength = 6

// QuizService handles quiz business logic and Redis caching.
type QuizService struct {
	quizRepo     *repository.QuizRepository
	questionRepo *repository.QuestionRepository
	rdb          *redis.Client
	log          zerolog.Logger
}

// NewQuizService creates a new QuizService.
func NewQuizService(
	quizRepo *repository.QuizRepository,
	questionRepo *repository.QuestionRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *QuizService {
	return &QuizService{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		rdb:          rdb,
		log:          log.With().Str("component", "quiz_service").Logger(),
	}
}

// GetByID retrieves a quiz by its UUID.
func (s *QuizService) GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	return s.quizRepo.GetByID(ctx, id)
}

// GetOwned retrieves a quiz and verifies the caller hosts it.
func (s *QuizService) GetOwned(ctx context.Context, id uuid.UUID, hostID int) (*model.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quiz.HostID != hostID {
		return nil, ErrNotQuizHost
	}
	return quiz, nil
}

// ListByHost retrieves a host's quizzes with pagination.
func (s *QuizService) ListByHost(ctx context.Context, hostID, page, perPage int) ([]model.Quiz, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	limit := perPage
	offset := (page - 1) * perPage

	quizzes, total, err := s.quizRepo.ListByHostPaginated(ctx, hostID, limit, offset)
	if err != nil {
		return nil, nil, err
	}

	if quizzes == nil {
		quizzes = []model.Quiz{}
	}

	totalPages := (total + perPage - 1) / perPage

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	}

	return quizzes, pagination, nil
}

// Create inserts a new quiz as DRAFT.
func (s *QuizService) Create(ctx context.Context, quiz *model.Quiz) error {
	quiz.Status = model.QuizStatusDraft
	return s.quizRepo.Create(ctx, quiz)
}

// Update modifies an existing draft quiz.
func (s *QuizService) Update(ctx context.Context, hostID int, quiz *model.Quiz) error {
	existing, err := s.quizRepo.GetByID(ctx, quiz.ID)
	if err != nil {
		return err
	}
	if existing.HostID != hostID {
		return ErrNotQuizHost
	}
	if existing.Status != model.QuizStatusDraft {
		return ErrQuizNotDraft
	}
	return s.quizRepo.Update(ctx, quiz)
}

// Delete removes a draft quiz.
func (s *QuizService) Delete(ctx context.Context, id uuid.UUID, hostID int) error {
	existing, err := s.quizRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.HostID != hostID {
		return ErrNotQuizHost
	}
	if existing.Status != model.QuizStatusDraft {
		return ErrQuizNotDraft
	}
	return s.quizRepo.Delete(ctx, id)
}

// ReplaceQuestions swaps a draft quiz's question set.
func (s *QuizService) ReplaceQuestions(ctx context.Context, quizID uuid.UUID, hostID int, questions []model.Question) error {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return err
	}
	if quiz.HostID != hostID {
		return ErrNotQuizHost
	}
	if quiz.Status != model.QuizStatusDraft {
		return ErrQuizNotDraft
	}
	return s.questionRepo.ReplaceAll(ctx, quizID, questions)
}

// ListQuestions retrieves a quiz's questions for its host (answers included).
func (s *QuizService) ListQuestions(ctx context.Context, quizID uuid.UUID, hostID int) ([]model.Question, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.HostID != hostID {
		return nil, ErrNotQuizHost
	}
	return s.questionRepo.ListByQuiz(ctx, quizID)
}

// Publish transitions a quiz to PUBLISHED, mints its entry code, and caches
// the paper + answer key in Redis. This is the path that populates the fast
// lane participants read from.
func (s *QuizService) Publish(ctx context.Context, quizID uuid.UUID, hostID int) (*model.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}

	if quiz.HostID != hostID {
		return nil, ErrNotQuizHost
	}
	if quiz.Status != model.QuizStatusDraft {
		return nil, ErrQuizNotDraft
	}

	questions, err := s.questionRepo.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	code, err := generateEntryCode()
	if err != nil {
		return nil, fmt.Errorf("generate entry code: %w", err)
	}

	quiz.EntryCode = code
	quiz.QuestionCount = len(questions)
	quiz.Status = model.QuizStatusPublished

	if err := s.warmQuizCache(ctx, quiz, questions); err != nil {
		return nil, err
	}

	if err := s.quizRepo.UpdateStatus(ctx, quizID, model.QuizStatusPublished, code, len(questions)); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	s.log.Info().Str("quiz_id", quizID.String()).Str("entry_code", code).Msg("Quiz published")
	return quiz, nil
}

// Close transitions a quiz to CLOSED and drops its cached paper so no new
// papers are served. Submissions already queued keep flowing.
func (s *QuizService) Close(ctx context.Context, quizID uuid.UUID, hostID int) error {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return fmt.Errorf("get quiz: %w", err)
	}

	if quiz.HostID != hostID {
		return ErrNotQuizHost
	}
	if quiz.Status != model.QuizStatusPublished && quiz.Status != model.QuizStatusLive {
		return ErrQuizNotOpen
	}

	if err := s.quizRepo.UpdateStatus(ctx, quizID, model.QuizStatusClosed, quiz.EntryCode, quiz.QuestionCount); err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, config.CacheKey.QuizPaperKey(quizID.String()))
	pipe.Del(ctx, config.CacheKey.QuizDurationKey(quizID.String()))
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("Failed to drop quiz cache on close")
	}

	s.log.Info().Str("quiz_id", quizID.String()).Msg("Quiz closed")
	return nil
}

// warmQuizCache loads a quiz's paper and answer key from PostgreSQL into Redis.
func (s *QuizService) warmQuizCache(ctx context.Context, quiz *model.Quiz, questions []model.Question) error {
	participantQuestions := make([]model.QuestionForParticipant, len(questions))
	answerKey := make(map[string]interface{}, len(questions))

	for i, q := range questions {
		participantQuestions[i] = model.QuestionForParticipant{
			ID:       q.ID,
			Text:     q.Text,
			Type:     q.Type,
			Options:  q.Options,
			OrderNum: q.OrderNum,
			Points:   q.Points,
		}

		entry, err := json.Marshal(AnswerKeyEntry{Answer: q.CorrectAnswer, Points: q.Points})
		if err != nil {
			return fmt.Errorf("marshal answer key entry: %w", err)
		}
		answerKey[q.ID.String()] = entry
	}

	paper := model.QuizPaper{
		QuizID:    quiz.ID,
		Title:     quiz.Title,
		Duration:  quiz.DurationMinutes,
		Questions: participantQuestions,
	}

	paperJSON, err := json.Marshal(paper)
	if err != nil {
		return fmt.Errorf("marshal paper: %w", err)
	}

	// Cache paper, duration and answer key atomically via pipeline.
	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, config.CacheKey.QuizPaperKey(quiz.ID.String()), paperJSON, 0)
	pipe.Set(ctx, config.CacheKey.QuizDurationKey(quiz.ID.String()), quiz.DurationMinutes, 0)
	pipe.Del(ctx, config.CacheKey.QuizAnswerKeyKey(quiz.ID.String()))
	pipe.HSet(ctx, config.CacheKey.QuizAnswerKeyKey(quiz.ID.String()), answerKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache to redis: %w", err)
	}

	s.log.Debug().
		Str("quiz_id", quiz.ID.String()).
		Int("questions", len(questions)).
		Msg("Cache warmed")
	return nil
}

// PrewarmAllCaches loads all published quizzes into Redis on startup so a
// restart never leaves an open quiz uncached.
func (s *QuizService) PrewarmAllCaches(ctx context.Context) error {
	quizzes, err := s.quizRepo.ListByStatus(ctx, model.QuizStatusPublished)
	if err != nil {
		return fmt.Errorf("list published quizzes: %w", err)
	}

	if len(quizzes) == 0 {
		s.log.Info().Msg("No published quizzes to prewarm")
		return nil
	}

	warmed := 0
	for i := range quizzes {
		questions, err := s.questionRepo.ListByQuiz(ctx, quizzes[i].ID)
		if err != nil || len(questions) == 0 {
			s.log.Warn().Err(err).Str("quiz_id", quizzes[i].ID.String()).Msg("Failed to warm quiz, skipping")
			continue
		}
		if err := s.warmQuizCache(ctx, &quizzes[i], questions); err != nil {
			s.log.Warn().Err(err).Str("quiz_id", quizzes[i].ID.String()).Msg("Failed to warm quiz, skipping")
			continue
		}
		warmed++
	}

	s.log.Info().Int("warmed", warmed).Int("total", len(quizzes)).Msg("Prewarming complete")
	return nil
}

// GetPaper retrieves the cached participant paper from Redis.
func (s *QuizService) GetPaper(ctx context.Context, quizID uuid.UUID) (*model.QuizPaper, error) {
	data, err := s.rdb.Get(ctx, config.CacheKey.QuizPaperKey(quizID.String())).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errors.New("quiz not published or paper not cached")
		}
		return nil, fmt.Errorf("get paper: %w", err)
	}

	var paper model.QuizPaper
	if err := json.Unmarshal(data, &paper); err != nil {
		return nil, fmt.Errorf("unmarshal paper: %w", err)
	}
	return &paper, nil
}

// AnswerKeyEntry is one question's correct answer and point value, stored as
// a JSON field of the quiz's answer-key hash in Redis.
type AnswerKeyEntry struct {
	Answer model.Answer `json:"answer"`
	Points int          `json:"points"`
}

// GetAnswerKey retrieves the answer key from Redis for in-memory grading.
// The result maps question ID to its correct answer and point value.
func (s *QuizService) GetAnswerKey(ctx context.Context, quizID uuid.UUID) (map[string]AnswerKeyEntry, error) {
	raw, err := s.rdb.HGetAll(ctx, config.CacheKey.QuizAnswerKeyKey(quizID.String())).Result()
	if err != nil {
		return nil, fmt.Errorf("get answer key: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("answer key not found in cache")
	}

	key := make(map[string]AnswerKeyEntry, len(raw))
	for qid, data := range raw {
		var entry AnswerKeyEntry
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			return nil, fmt.Errorf("unmarshal answer key entry: %w", err)
		}
		key[qid] = entry
	}
	return key, nil
}

func generateEntryCode() (string, error) {
	code := make([]byte, entryCodeLength)
	max := big.NewInt(int64(len(entryCodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = entryCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

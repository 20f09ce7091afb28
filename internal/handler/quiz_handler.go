package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quizhive/quizhive-backend/internal/middleware"
	"github.com/quizhive/quizhive-backend/internal/model"
	"github.com/quizhive/quizhive-backend/internal/response"
	"github.com/quizhive/quizhive-backend/internal/service"
	"github.com/quizhive/quizhive-backend/internal/validator"
)

// QuizHandler handles host-facing quiz management endpoints.
type QuizHandler struct {
	quizService *service.QuizService
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// List godoc
// GET /api/v1/quizzes?page=1&per_page=10
func (h *QuizHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	quizzes, pagination, err := h.quizService.ListByHost(c.Request.Context(), claims.HostID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, quizzes, pagination)
}

// Get godoc
// GET /api/v1/quizzes/:id
func (h *QuizHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)

	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	quiz, err := h.quizService.GetOwned(c.Request.Context(), quizID, claims.HostID)
	if err != nil {
		failFromQuizErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, quiz)
}

// Create godoc
// POST /api/v1/quizzes
func (h *QuizHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz := &model.Quiz{
		Title:           req.Title,
		HostID:          claims.HostID,
		DurationMinutes: req.DurationMinutes,
	}

	if err := h.quizService.Create(c.Request.Context(), quiz); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, quiz)
}

// Update godoc
// PUT /api/v1/quizzes/:id
func (h *QuizHandler) Update(c *gin.Context) {
	claims := middleware.GetClaims(c)

	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.quizService.GetOwned(c.Request.Context(), quizID, claims.HostID)
	if err != nil {
		failFromQuizErr(c, err)
		return
	}

	if req.Title != "" {
		quiz.Title = req.Title
	}
	if req.DurationMinutes > 0 {
		quiz.DurationMinutes = req.DurationMinutes
	}

	if err := h.quizService.Update(c.Request.Context(), claims.HostID, quiz); err != nil {
		failFromQuizErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, quiz)
}

// Delete godoc
// DELETE /api/v1/quizzes/:id
func (h *QuizHandler) Delete(c *gin.Context) {
	claims := middleware.GetClaims(c)

	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.quizService.Delete(c.Request.Context(), quizID, claims.HostID); err != nil {
		failFromQuizErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// ListQuestions godoc
// GET /api/v1/quizzes/:id/questions
// Host view: includes correct answers.
func (h *QuizHandler) ListQuestions(c *gin.Context) {
	claims := middleware.GetClaims(c)

	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	questions, err := h.quizService.ListQuestions(c.Request.Context(), quizID, claims.HostID)
	if err != nil {
		failFromQuizErr(c, err)
		return
	}
	if questions == nil {
		questions = []model.Question{}
	}

	response.Success(c, http.StatusOK, questions)
}

// ReplaceQuestions godoc
// PUT /api/v1/quizzes/:id/questions
// Replaces the quiz's full question set while the quiz is a draft.
func (h *QuizHandler) ReplaceQuestions(c *gin.Context) {
	claims := middleware.GetClaims(c)

	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ReplaceQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questions := make([]model.Question, len(req.Questions))
	for i, q := range req.Questions {
		questions[i] = model.Question{
			Text:          q.Text,
			Type:          q.Type,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			OrderNum:      q.OrderNum,
			Points:        q.Points,
		}
	}

	if err := h.quizService.ReplaceQuestions(c.Request.Context(), quizID, claims.HostID, questions); err != nil {
		failFromQuizErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question_count": len(questions)})
}

// Publish godoc
// POST /api/v1/quizzes/:id/publish
// Mints the entry code and opens the quiz to participants.
func (h *QuizHandler) Publish(c *gin.Context) {
	claims := middleware.GetClaims(c)

	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	quiz, err := h.quizService.Publish(c.Request.Context(), quizID, claims.HostID)
	if err != nil {
		failFromQuizErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, quiz)
}

// Close godoc
// POST /api/v1/quizzes/:id/close
// Stops accepting new participants and papers.
func (h *QuizHandler) Close(c *gin.Context) {
	claims := middleware.GetClaims(c)

	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.quizService.Close(c.Request.Context(), quizID, claims.HostID); err != nil {
		failFromQuizErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// failFromQuizErr maps quiz service errors onto API error codes.
func failFromQuizErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotQuizHost):
		response.Fail(c, http.StatusForbidden, response.ErrNotQuizOwner)
	case errors.Is(err, service.ErrQuizNotDraft):
		response.Fail(c, http.StatusConflict, response.ErrQuizNotDraft)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusConflict, response.ErrNoQuestions)
	case errors.Is(err, service.ErrQuizNotOpen):
		response.Fail(c, http.StatusConflict, response.ErrQuizNotAvailable)
	default:
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	}
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizhive/quizhive-backend/internal/middleware"
	"github.com/quizhive/quizhive-backend/internal/model"
	"github.com/quizhive/quizhive-backend/internal/response"
	"github.com/quizhive/quizhive-backend/internal/service"
	"github.com/quizhive/quizhive-backend/internal/validator"
)

// PlayHandler handles the participant-facing quiz flow: joining, fetching
// the paper, resuming state, and submitting over HTTP.
type PlayHandler struct {
	participantService *service.ParticipantService
	quizService        *service.QuizService
	submissionService  *service.SubmissionService
}

// NewPlayHandler creates a new PlayHandler.
func NewPlayHandler(
	participantService *service.ParticipantService,
	quizService *service.QuizService,
	submissionService *service.SubmissionService,
) *PlayHandler {
	return &PlayHandler{
		participantService: participantService,
		quizService:        quizService,
		submissionService:  submissionService,
	}
}

// Join godoc
// POST /api/v1/play/join
// Public endpoint: exchanges an entry code + display name for a participant
// token. The attempt clock starts here.
func (h *PlayHandler) Join(c *gin.Context) {
	var req model.JoinQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.participantService.Join(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEntryCode):
			response.Fail(c, http.StatusNotFound, response.ErrInvalidEntryCode)
		case errors.Is(err, service.ErrQuizNotOpen):
			response.Fail(c, http.StatusConflict, response.ErrQuizNotAvailable)
		default:
			failFromAuthErr(c, err)
		}
		return
	}

	response.Success(c, http.StatusCreated, result)
}

// GetPaper godoc
// GET /api/v1/play/paper
// Returns the cached paper for the participant's quiz (no correct answers).
func (h *PlayHandler) GetPaper(c *gin.Context) {
	claims := middleware.GetClaims(c)

	paper, err := h.quizService.GetPaper(c.Request.Context(), claims.QuizID)
	if err != nil {
		response.Fail(c, http.StatusConflict, response.ErrQuizNotAvailable)
		return
	}

	response.Success(c, http.StatusOK, paper)
}

// GetState godoc
// GET /api/v1/play/state
// Returns autosaved answers and the remaining clock, for resume-after-refresh.
func (h *PlayHandler) GetState(c *gin.Context) {
	claims := middleware.GetClaims(c)

	state, err := h.participantService.GetAttemptState(c.Request.Context(), claims.QuizID, claims.ParticipantID)
	if err != nil {
		response.Fail(c, http.StatusConflict, response.ErrQuizNotAvailable)
		return
	}

	response.Success(c, http.StatusOK, state)
}

// Submit godoc
// POST /api/v1/play/submit
// HTTP fallback for clients without a WebSocket connection.
func (h *PlayHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.SubmitRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	submission, err := h.submissionService.Submit(c.Request.Context(), claims.QuizID, claims.ParticipantID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadySubmitted):
			response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
		case errors.Is(err, service.ErrAnswerCountMismatch):
			response.Fail(c, http.StatusBadRequest, response.ErrAnswerCount)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"submission_id": submission.ID,
		"score":         submission.Score,
		"submitted_at":  submission.SubmittedAt,
	})
}

// GetResult godoc
// GET /api/v1/play/result
// Returns the participant's own stored submission and score.
func (h *PlayHandler) GetResult(c *gin.Context) {
	claims := middleware.GetClaims(c)

	submission, err := h.submissionService.GetByParticipant(c.Request.Context(), claims.ParticipantID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"submission_id": submission.ID,
		"score":         submission.Score,
		"submitted_at":  submission.SubmittedAt,
	})
}

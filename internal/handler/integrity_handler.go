package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quizhive/quizhive-backend/internal/middleware"
	"github.com/quizhive/quizhive-backend/internal/response"
	"github.com/quizhive/quizhive-backend/internal/service"
)

// IntegrityHandler exposes integrity verdicts and batch reports to hosts.
type IntegrityHandler struct {
	integrityService *service.IntegrityService
	quizService      *service.QuizService
}

// NewIntegrityHandler creates a new IntegrityHandler.
func NewIntegrityHandler(integrityService *service.IntegrityService, quizService *service.QuizService) *IntegrityHandler {
	return &IntegrityHandler{
		integrityService: integrityService,
		quizService:      quizService,
	}
}

// GetReport godoc
// GET /api/v1/quizzes/:id/integrity/report?force=true
// Returns the ranked batch report for the quiz, served from cache unless
// force is set.
func (h *IntegrityHandler) GetReport(c *gin.Context) {
	claims := middleware.GetClaims(c)

	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if _, err := h.quizService.GetOwned(c.Request.Context(), quizID, claims.HostID); err != nil {
		failFromQuizErr(c, err)
		return
	}

	force := c.Query("force") == "true"

	report, err := h.integrityService.GetBatchReport(c.Request.Context(), quizID, force)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, report)
}

// GetSubmissionAnalysis godoc
// GET /api/v1/quizzes/:id/integrity/submissions/:submissionID
// Returns the stored verdict for one submission.
func (h *IntegrityHandler) GetSubmissionAnalysis(c *gin.Context) {
	claims := middleware.GetClaims(c)

	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	submissionID, err := uuid.Parse(c.Param("submissionID"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if _, err := h.quizService.GetOwned(c.Request.Context(), quizID, claims.HostID); err != nil {
		failFromQuizErr(c, err)
		return
	}

	result, err := h.integrityService.GetSubmissionAnalysis(c.Request.Context(), submissionID)
	if err != nil {
		if errors.Is(err, service.ErrAnalysisPending) {
			response.Fail(c, http.StatusAccepted, response.ErrAnalysisPending)
			return
		}
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Reanalyze godoc
// POST /api/v1/quizzes/:id/integrity/reanalyze
// Recomputes every verdict for the quiz and refreshes the cached report.
func (h *IntegrityHandler) Reanalyze(c *gin.Context) {
	claims := middleware.GetClaims(c)

	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if _, err := h.quizService.GetOwned(c.Request.Context(), quizID, claims.HostID); err != nil {
		failFromQuizErr(c, err)
		return
	}

	report, err := h.integrityService.ReanalyzeQuiz(c.Request.Context(), quizID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, report)
}

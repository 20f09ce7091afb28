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

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, userService *service.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// HostLogin godoc
// POST /api/v1/auth/host/login
// Validates email + password, returns a host JWT.
func (h *AuthHandler) HostLogin(c *gin.Context) {
	var req model.HostLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	if err := h.authService.CheckPassword(user.PasswordHash, req.Password); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	token, err := h.authService.GenerateHostToken(user.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, model.HostLoginResponse{
		Token: token,
		User:  *user,
	})
}

// GetHostProfile godoc
// GET /api/v1/auth/host/me
// Returns the profile of the currently authenticated host.
func (h *AuthHandler) GetHostProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), claims.HostID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// ParticipantLeave godoc
// POST /api/v1/auth/participant/leave
// Releases the participant's session so they can rejoin from another device.
func (h *AuthHandler) ParticipantLeave(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.ResetParticipantSession(c.Request.Context(), claims.ParticipantID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// failFromAuthErr maps auth service errors onto API error codes.
func failFromAuthErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionAlreadyActive):
		response.Fail(c, http.StatusConflict, response.ErrSessionActive)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

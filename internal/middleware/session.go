package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizhive/quizhive-backend/internal/response"
	"github.com/quizhive/quizhive-backend/internal/service"
)

// CheckSingleDeviceSession validates the JWT's JTI against the active session
// in Redis. A mismatch means the participant rejoined elsewhere or the host
// reset the session, so the request is rejected.
func CheckSingleDeviceSession(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		// Only enforce for participant tokens.
		if claims.TokenType != service.TokenTypeParticipant {
			c.Next()
			return
		}

		if err := authService.ValidateParticipantSession(c.Request.Context(), claims.ParticipantID, claims.ID); err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
			return
		}

		c.Next()
	}
}

package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/quizhive/quizhive-backend/internal/config"
	"github.com/quizhive/quizhive-backend/internal/handler"
	"github.com/quizhive/quizhive-backend/internal/middleware"
	"github.com/quizhive/quizhive-backend/internal/response"
	"github.com/quizhive/quizhive-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Quiz      *handler.QuizHandler
	Play      *handler.PlayHandler
	WS        *handler.WSHandler
	Integrity *handler.IntegrityHandler
	Monitor   *handler.MonitorHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request ID first so every response carries metadata.
	router.Use(response.RequestIDMiddleware())

	// Compress large JSON payloads (papers, batch reports).
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for credential and entry-code guessing (30 req/min per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/host/login", handlers.Auth.HostLogin)
		auth.GET("/host/me", middleware.RequireHostJWT(authService), handlers.Auth.GetHostProfile)
		auth.POST("/participant/leave", middleware.RequireParticipantJWT(authService), handlers.Auth.ParticipantLeave)
	}

	// ─── 2. Play Group (Participant flow) ──────────────────────────────
	play := router.Group("/api/v1/play")
	{
		// Join is public but rate limited: it is the entry-code oracle.
		play.POST("/join", authLimiter.Middleware(), handlers.Play.Join)

		protected := play.Group("")
		protected.Use(
			middleware.RequireParticipantJWT(authService),
			middleware.CheckSingleDeviceSession(authService),
		)
		{
			protected.GET("/paper", handlers.Play.GetPaper)
			protected.GET("/state", handlers.Play.GetState)
			protected.POST("/submit", handlers.Play.Submit)
			protected.GET("/result", handlers.Play.GetResult)
		}
	}

	// ─── 3. WebSocket Group (Participant WS Auth) ──────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireParticipantWSAuth(authService))
	{
		ws.GET("/play/stream", handlers.WS.AttemptStream)
	}

	// ─── 4. Host Group (JWT) ───────────────────────────────────────────
	hostAPI := router.Group("/api/v1/quizzes")
	hostAPI.Use(middleware.RequireHostJWT(authService))
	{
		hostAPI.GET("", handlers.Quiz.List)
		hostAPI.POST("", handlers.Quiz.Create)
		hostAPI.GET("/:id", handlers.Quiz.Get)
		hostAPI.PUT("/:id", handlers.Quiz.Update)
		hostAPI.DELETE("/:id", handlers.Quiz.Delete)

		hostAPI.GET("/:id/questions", handlers.Quiz.ListQuestions)
		hostAPI.PUT("/:id/questions", handlers.Quiz.ReplaceQuestions)

		hostAPI.POST("/:id/publish", handlers.Quiz.Publish)
		hostAPI.POST("/:id/close", handlers.Quiz.Close)

		hostAPI.GET("/:id/integrity/report", handlers.Integrity.GetReport)
		hostAPI.GET("/:id/integrity/submissions/:submissionID", handlers.Integrity.GetSubmissionAnalysis)
		hostAPI.POST("/:id/integrity/reanalyze", handlers.Integrity.Reanalyze)

		hostAPI.GET("/:id/monitor", handlers.Monitor.MonitorQuizSSE)
	}

	return router
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quizhive/quizhive-backend/internal/config"
	"github.com/quizhive/quizhive-backend/internal/database"
	"github.com/quizhive/quizhive-backend/internal/handler"
	"github.com/quizhive/quizhive-backend/internal/logger"
	"github.com/quizhive/quizhive-backend/internal/repository"
	"github.com/quizhive/quizhive-backend/internal/router"
	"github.com/quizhive/quizhive-backend/internal/service"
	"github.com/quizhive/quizhive-backend/internal/validator"
	"github.com/quizhive/quizhive-backend/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting QuizHive Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	quizRepo := repository.NewQuizRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	participantRepo := repository.NewParticipantRepository(pool)
	submissionRepo := repository.NewSubmissionRepository(pool)
	monitorRepo := repository.NewMonitorRepository(pool, rdb)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	userService := service.NewUserService(userRepo)
	quizService := service.NewQuizService(quizRepo, questionRepo, rdb, log)
	participantService := service.NewParticipantService(participantRepo, quizRepo, authService, rdb, log)
	submissionService := service.NewSubmissionService(submissionRepo, participantRepo, quizService, rdb, log)
	integrityService := service.NewIntegrityService(submissionRepo, questionRepo, quizRepo, rdb, cfg, log)
	monitorService := service.NewMonitorService(monitorRepo, participantRepo, submissionRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(authService, userService),
		Quiz:      handler.NewQuizHandler(quizService),
		Play:      handler.NewPlayHandler(participantService, quizService, submissionService),
		WS:        handler.NewWSHandler(participantService, quizService, submissionService, log, cfg.AllowedOrigins),
		Integrity: handler.NewIntegrityHandler(integrityService, quizService),
		Monitor:   handler.NewMonitorHandler(rdb, quizService, monitorService, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	autosaveWorker := worker.NewAutosaveWorker(pool, rdb, log)
	scoringWorker := worker.NewScoringWorker(pool, rdb, log)
	analysisWorker := worker.NewAnalysisWorker(integrityService, rdb, log)

	go autosaveWorker.Start(workerCtx)
	go scoringWorker.Start(workerCtx)
	go analysisWorker.Start(workerCtx)

	// ─── Prewarm Redis Caches ─────────────────────────────────────────
	// Load every published quiz into Redis BEFORE accepting traffic so a
	// restart mid-quiz never leaves participants without a paper.
	if err := quizService.PrewarmAllCaches(ctx); err != nil {
		log.Warn().Err(err).Msg("Cache prewarm failed")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

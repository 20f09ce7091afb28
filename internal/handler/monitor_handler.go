package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quizhive/quizhive-backend/internal/config"
	"github.com/quizhive/quizhive-backend/internal/middleware"
	"github.com/quizhive/quizhive-backend/internal/model"
	"github.com/quizhive/quizhive-backend/internal/response"
	"github.com/quizhive/quizhive-backend/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	refreshInterval   = 15 * time.Second
	keepAliveInterval = 30 * time.Second
	refreshTimeout    = 5 * time.Second // prevent slow queries from blocking the SSE loop
)

// MonitorHandler streams the live quiz view to the host over SSE.
type MonitorHandler struct {
	rdb            *redis.Client
	quizService    *service.QuizService
	monitorService *service.MonitorService
	log            zerolog.Logger
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(
	rdb *redis.Client,
	quizService *service.QuizService,
	monitorService *service.MonitorService,
	log zerolog.Logger,
) *MonitorHandler {
	return &MonitorHandler{
		rdb:            rdb,
		quizService:    quizService,
		monitorService: monitorService,
		log:            log.With().Str("component", "monitor_handler").Logger(),
	}
}

// MonitorQuizSSE godoc
// GET /api/v1/quizzes/:id/monitor
// Streams a snapshot, then live events and periodic refreshes.
func (h *MonitorHandler) MonitorQuizSSE(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

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

	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("Access-Control-Allow-Origin", "*")

	h.sendInitialSnapshot(c, reqCtx, quiz)

	// Live events from the submit path fan out over Redis Pub/Sub.
	pubsub := h.rdb.Subscribe(reqCtx, config.CacheKey.QuizMonitorChannel(quizID.String()))
	defer pubsub.Close()

	ch := pubsub.Channel()

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()

	refreshTicker := time.NewTicker(refreshInterval)
	defer refreshTicker.Stop()

	// Skip empty refreshes until someone joins.
	hasParticipants := false

	h.log.Info().Str("quiz_id", quizID.String()).Msg("Host attached to live monitor SSE")

	pingPayload, _ := json.Marshal(map[string]string{"type": "ping"})

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Str("quiz_id", quizID.String()).Msg("Host detached from live monitor SSE")
			return

		case msg := <-ch:
			// Forward raw JSON directly, no deserialization needed.
			c.Writer.Write([]byte("data: "))
			c.Writer.Write([]byte(msg.Payload))
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()

			hasParticipants = true

		case <-refreshTicker.C:
			if !hasParticipants {
				continue
			}
			h.sendRefresh(c, reqCtx, quizID, quiz.QuestionCount)

		case <-keepAliveTicker.C:
			c.Writer.Write([]byte("data: "))
			c.Writer.Write(pingPayload)
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		}
	}
}

// sendInitialSnapshot gathers roster and progress data and writes the first
// SSE event.
func (h *MonitorHandler) sendInitialSnapshot(c *gin.Context, ctx context.Context, quiz *model.Quiz) {
	fetchCtx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	roster, err := h.monitorService.GetRoster(fetchCtx, quiz.ID)
	if err != nil {
		h.log.Warn().Err(err).Str("quiz_id", quiz.ID.String()).Msg("Failed to load roster for snapshot")
	}

	totalJoined := len(roster)
	totalInProgress := 0
	totalSubmitted := 0

	participants := make([]map[string]interface{}, 0, len(roster))
	for _, entry := range roster {
		if entry.Status == service.RosterStatusSubmitted {
			totalSubmitted++
		} else {
			totalInProgress++
		}

		var score float64
		if entry.Score != nil {
			score = *entry.Score
		}

		participants = append(participants, map[string]interface{}{
			"participant_id":  entry.ParticipantID.String(),
			"name":            entry.Name,
			"status":          entry.Status,
			"score":           score,
			"joined_at":       entry.JoinedAt,
			"answered_count":  int64(0),
			"flag_count":      int64(0),
			"total_questions": quiz.QuestionCount,
		})
	}

	var totalFlags int64
	if progress, err := h.monitorService.GetProgress(fetchCtx, quiz.ID); err == nil {
		totalFlags = progress.TotalFlags
		for i, p := range participants {
			pid, err := uuid.Parse(p["participant_id"].(string))
			if err != nil {
				continue
			}
			if count, found := progress.AnsweredCounts[pid]; found {
				participants[i]["answered_count"] = count
			}
			if count, found := progress.FlagCounts[pid]; found {
				participants[i]["flag_count"] = count
			}
		}
	}

	c.SSEvent("message", map[string]interface{}{
		"type": "snapshot",
		"data": map[string]interface{}{
			"quiz": map[string]interface{}{
				"id":              quiz.ID.String(),
				"title":           quiz.Title,
				"duration":        quiz.DurationMinutes,
				"total_questions": quiz.QuestionCount,
				"status":          quiz.Status,
			},
			"stats": map[string]interface{}{
				"total_joined":      totalJoined,
				"total_in_progress": totalInProgress,
				"total_submitted":   totalSubmitted,
				"total_flags":       totalFlags,
			},
			"participants": participants,
		},
	})
	c.Writer.Flush()
}

// sendRefresh polls current progress and sends a compact refresh event.
func (h *MonitorHandler) sendRefresh(c *gin.Context, parentCtx context.Context, quizID uuid.UUID, totalQuestions int) {
	ctx, cancel := context.WithTimeout(parentCtx, refreshTimeout)
	defer cancel()

	progress, err := h.monitorService.GetProgress(ctx, quizID)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to fetch progress for refresh")
		return
	}

	progressData := make([]map[string]interface{}, 0, len(progress.AnsweredCounts)+len(progress.FlagCounts))

	for pid, answered := range progress.AnsweredCounts {
		progressData = append(progressData, map[string]interface{}{
			"participant_id": pid.String(),
			"answered_count": answered,
			"flag_count":     progress.FlagCounts[pid], // 0 if missing
		})
		delete(progress.FlagCounts, pid) // mark as handled
	}

	// Remaining flag-only participants (already submitted, nothing autosaved).
	for pid, flags := range progress.FlagCounts {
		progressData = append(progressData, map[string]interface{}{
			"participant_id": pid.String(),
			"answered_count": int64(0),
			"flag_count":     flags,
		})
	}

	c.SSEvent("message", map[string]interface{}{
		"type":            "refresh",
		"total_questions": totalQuestions,
		"total_flags":     progress.TotalFlags,
		"participants":    progressData,
	})
	c.Writer.Flush()
}

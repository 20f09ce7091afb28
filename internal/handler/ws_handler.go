package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/quizhive/quizhive-backend/internal/middleware"
	"github.com/quizhive/quizhive-backend/internal/model"
	"github.com/quizhive/quizhive-backend/internal/service"
	ws "github.com/quizhive/quizhive-backend/internal/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a participant's live attempt: autosaves, typing
// telemetry, and the final submit.
type WSHandler struct {
	participantService *service.ParticipantService
	quizService        *service.QuizService
	submissionService  *service.SubmissionService
	log                zerolog.Logger
	upgrader           websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(
	participantService *service.ParticipantService,
	quizService *service.QuizService,
	submissionService *service.SubmissionService,
	log zerolog.Logger,
	allowedOrigins []string,
) *WSHandler {
	return &WSHandler{
		participantService: participantService,
		quizService:        quizService,
		submissionService:  submissionService,
		log:                log.With().Str("component", "ws_handler").Logger(),
		upgrader:           buildUpgrader(allowedOrigins),
	}
}

// AttemptStream godoc
// WS /ws/v1/play/stream?token=...
// Upgrades to WebSocket for real-time autosave, telemetry, and submit.
func (h *WSHandler) AttemptStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	quizID := claims.QuizID
	participantID := claims.ParticipantID

	wsLog := h.log.With().
		Str("participant_id", participantID.String()).
		Str("quiz_id", quizID.String()).
		Logger()

	wsLog.Info().Msg("Participant connected")

	// The client streams telemetry cumulatively; the last payload before
	// submit wins.
	var lastTelemetry *model.TypingTelemetry

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		switch msg.Action {
		case ws.ActionAutosave:
			h.handleAutosave(conn, quizID, participantID, &msg)
		case ws.ActionTelemetry:
			lastTelemetry = msg.Typing
			ws.WriteTyped(conn, ws.SavedResponse{Event: ws.EventSaved, Status: "telemetry"})
		case ws.ActionSubmit:
			h.handleSubmit(conn, wsLog, quizID, participantID, &msg, lastTelemetry)
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			ws.WriteError(conn, "unknown action: "+string(msg.Action))
		}
	}
}

// handleAutosave records one answer in Redis and queues it for persistence.
func (h *WSHandler) handleAutosave(conn *websocket.Conn, quizID, participantID uuid.UUID, msg *ws.RequestPayload) {
	ctx := context.Background()

	if msg.QuestionID == "" || len(msg.Answer) == 0 {
		ws.WriteError(conn, "q_id and ans are required")
		return
	}

	// QuestionID becomes a Redis hash field; reject anything that is not a
	// well-formed UUID.
	questionID, err := uuid.Parse(msg.QuestionID)
	if err != nil {
		ws.WriteError(conn, "invalid q_id format")
		return
	}

	if err := h.participantService.AutosaveAnswer(ctx, quizID, participantID, questionID, msg.Answer); err != nil {
		h.log.Error().Err(err).Str("participant_id", participantID.String()).Msg("Autosave error")
		ws.WriteError(conn, "save failed")
		return
	}

	ws.WriteTyped(conn, ws.SavedResponse{Event: ws.EventSaved, Status: "saved"})
}

// handleSubmit assembles the final answer sheet from the autosave hash and
// hands it to the submission pipeline.
func (h *WSHandler) handleSubmit(
	conn *websocket.Conn,
	wsLog zerolog.Logger,
	quizID, participantID uuid.UUID,
	msg *ws.RequestPayload,
	telemetry *model.TypingTelemetry,
) {
	ctx := context.Background()

	paper, err := h.quizService.GetPaper(ctx, quizID)
	if err != nil {
		wsLog.Error().Err(err).Msg("Get paper error")
		ws.WriteError(conn, "quiz not available")
		return
	}

	state, err := h.participantService.GetAttemptState(ctx, quizID, participantID)
	if err != nil {
		wsLog.Error().Err(err).Msg("Get attempt state error")
		ws.WriteError(conn, "failed to load autosaved answers")
		return
	}

	// Build the positional answer sheet in paper order. Questions with no
	// autosaved answer count as empty.
	answers := make([]model.Answer, len(paper.Questions))
	for i, question := range paper.Questions {
		raw, ok := state.AutosavedAnswers[question.ID.String()]
		if !ok {
			answers[i] = model.EmptyAnswer()
			continue
		}
		var answer model.Answer
		if err := json.Unmarshal([]byte(raw), &answer); err != nil {
			answers[i] = model.EmptyAnswer()
			continue
		}
		answers[i] = answer
	}

	if msg.Typing != nil {
		telemetry = msg.Typing
	}

	req := &model.SubmitRequest{
		Answers:           answers,
		CompletionSeconds: msg.CompletionSeconds,
		Typing:            telemetry,
		QuestionSeconds:   msg.QuestionSeconds,
	}

	submission, err := h.submissionService.Submit(ctx, quizID, participantID, req)
	if err != nil {
		if errors.Is(err, service.ErrAlreadySubmitted) {
			ws.WriteError(conn, "already submitted")
			return
		}
		wsLog.Error().Err(err).Msg("Submit error")
		ws.WriteError(conn, "submit failed")
		return
	}

	var score float64
	if submission.Score != nil {
		score = *submission.Score
	}

	wsLog.Info().Float64("score", score).Msg("Attempt submitted and graded")

	ws.WriteTyped(conn, ws.SubmittedResponse{Event: ws.EventSubmitted, Score: score})
}

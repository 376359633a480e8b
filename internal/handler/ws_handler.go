package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/labworks/labviva-backend/internal/middleware"
	"github.com/labworks/labviva-backend/internal/model"
	"github.com/labworks/labviva-backend/internal/service"
	"github.com/labworks/labviva-backend/internal/viva"
	ws "github.com/labworks/labviva-backend/internal/websocket"
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

// WSHandler handles the WebSocket viva exam stream.
type WSHandler struct {
	vivaService *service.VivaService
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(vivaService *service.VivaService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		vivaService: vivaService,
		log:         log.With().Str("component", "ws_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

// examConn is one client connection bound to an exam. It implements both
// viva.Events and viva.PresentationController; all writes are serialized
// because the countdown goroutine and the read loop both emit.
type examConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
	log  zerolog.Logger
}

func (e *examConn) write(v interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := ws.WriteTyped(e.conn, v); err != nil {
		// The client may be gone; the exam keeps running regardless.
		e.log.Debug().Err(err).Msg("ws write failed")
	}
}

func (e *examConn) Tick(remaining int) {
	e.write(ws.TickResponse{Event: ws.EventTick, RemainingSeconds: remaining})
}

func (e *examConn) Warning(message string) {
	e.write(ws.WarningResponse{
		Event:          ws.EventWarning,
		Message:        message,
		DisplaySeconds: viva.WarningDisplaySeconds,
	})
}

func (e *examConn) Completed(result viva.Result, _ *model.VivaAttempt) {
	e.write(ws.GradedResponse{Event: ws.EventGraded, Result: result})
}

func (e *examConn) RequestExclusive() {
	e.write(ws.PresentationResponse{Event: ws.EventPresentation, Directive: "enter"})
}

func (e *examConn) Release() {
	e.write(ws.PresentationResponse{Event: ws.EventPresentation, Directive: "exit"})
}

// VivaStream godoc
// WS /ws/v1/student/experiments/:experiment_id/viva/stream
// Upgrades to WebSocket and drives one proctored viva exam end to end.
func (h *WSHandler) VivaStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	experimentID, err := uuid.Parse(c.Param("experiment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid experiment ID"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	studentID := claims.UserID
	wsLog := h.log.With().
		Int("student_id", studentID).
		Str("experiment_id", experimentID.String()).
		Logger()

	client := &examConn{conn: conn, log: wsLog}
	engine := h.vivaService.Engine()

	// A dropped connection leaves the exam running server-side; the same
	// student reattaches to it instead of opening a second one.
	exam, found := engine.Lookup(studentID, experimentID)
	if found {
		exam.SetEvents(client)
		wsLog.Info().Msg("Student reattached to running exam")
	} else {
		exam, err = h.vivaService.OpenExam(c.Request.Context(), studentID, experimentID, client, client)
		if err != nil {
			ws.WriteError(conn, openErrorMessage(err))
			return
		}
		wsLog.Info().Msg("Student connected, exam opened")
	}

	questions := exam.Session.Questions()
	publicQuestions := make([]model.QuestionForStudent, len(questions))
	for i, q := range questions {
		publicQuestions[i] = q.ForStudent()
	}
	client.write(ws.ReadyResponse{
		Event:           ws.EventReady,
		Questions:       publicQuestions,
		DurationSeconds: len(questions) * viva.SecondsPerQuestion,
	})

	h.readLoop(conn, client, exam, wsLog)

	// A disconnect before start abandons the exam; once the clock is
	// running, the exam stays registered and the timer keeps enforcing.
	if exam.Session.Status() == viva.StatusNotStarted {
		engine.Close(exam)
		wsLog.Info().Msg("Exam abandoned before start")
	}
}

func (h *WSHandler) readLoop(conn *websocket.Conn, client *examConn, exam *viva.Exam, wsLog zerolog.Logger) {
	for {
		var raw json.RawMessage
		if err := ws.ReadJSON(conn, &raw); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		var envelope ws.RequestEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			ws.WriteError(conn, "malformed message")
			continue
		}

		switch envelope.Action {
		case ws.ActionStart:
			h.handleStart(client, exam)
		case ws.ActionAnswer:
			h.handleAnswer(client, exam, raw)
		case ws.ActionNavigate:
			h.handleNavigate(client, exam, raw)
		case ws.ActionSignal:
			h.handleSignal(client, exam, raw)
		case ws.ActionSubmit:
			h.handleSubmit(client, exam)
		case ws.ActionPing:
			client.write(ws.PongResponse{Event: ws.EventPong})
		default:
			ws.WriteError(conn, "unknown action")
		}
	}
}

func (h *WSHandler) handleStart(client *examConn, exam *viva.Exam) {
	// The clock must outlive this connection; tie it to the process, not
	// the request.
	if err := exam.Start(context.Background()); err != nil {
		client.write(ws.ErrorResponse{Event: ws.EventError, Error: err.Error()})
		return
	}
	h.sendState(client, exam)
}

func (h *WSHandler) handleAnswer(client *examConn, exam *viva.Exam, raw json.RawMessage) {
	var req ws.AnswerRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		client.write(ws.ErrorResponse{Event: ws.EventError, Error: "malformed answer"})
		return
	}
	if err := exam.Session.SelectAnswer(req.OptionIndex); err != nil {
		client.write(ws.ErrorResponse{Event: ws.EventError, Error: err.Error()})
		return
	}
	h.sendState(client, exam)
}

func (h *WSHandler) handleNavigate(client *examConn, exam *viva.Exam, raw json.RawMessage) {
	var req ws.NavigateRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		client.write(ws.ErrorResponse{Event: ws.EventError, Error: "malformed navigation"})
		return
	}
	switch req.Direction {
	case "next":
		exam.Session.Advance()
	case "prev":
		exam.Session.Retreat()
	default:
		client.write(ws.ErrorResponse{Event: ws.EventError, Error: "unknown direction"})
		return
	}
	h.sendState(client, exam)
}

func (h *WSHandler) handleSignal(client *examConn, exam *viva.Exam, raw json.RawMessage) {
	var req ws.SignalRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		client.write(ws.ErrorResponse{Event: ws.EventError, Error: "malformed signal"})
		return
	}
	if err := exam.ReportSignal(context.Background(), req.Signal); err != nil {
		client.write(ws.ErrorResponse{Event: ws.EventError, Error: err.Error()})
	}
}

func (h *WSHandler) handleSubmit(client *examConn, exam *viva.Exam) {
	if err := exam.Submit(context.Background()); err != nil {
		client.write(ws.ErrorResponse{Event: ws.EventError, Error: err.Error()})
	}
	// On success the engine emits the graded event itself.
}

func (h *WSHandler) sendState(client *examConn, exam *viva.Exam) {
	client.write(ws.StateResponse{
		Event:         ws.EventState,
		CurrentIndex:  exam.Session.CurrentIndex(),
		Answers:       exam.Session.Answers(),
		AnsweredCount: exam.Session.AnsweredCount(),
	})
}

func openErrorMessage(err error) string {
	switch {
	case errors.Is(err, viva.ErrAlreadyAttempted):
		return "viva already attempted for this experiment"
	case errors.Is(err, viva.ErrNoQuestions):
		return "no viva questions available for this experiment"
	case errors.Is(err, viva.ErrExamAlreadyOpen):
		return "a viva session is already open"
	default:
		return "failed to open viva session"
	}
}

package websocket

import (
	"github.com/labworks/labviva-backend/internal/model"
	"github.com/labworks/labviva-backend/internal/viva"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionStart    Action = "start"
	ActionAnswer   Action = "answer"
	ActionNavigate Action = "navigate"
	ActionSignal   Action = "signal"
	ActionSubmit   Action = "submit"
	ActionPing     Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// StartRequest begins the exam and the countdown.
type StartRequest struct {
	Action Action `json:"action"`
}

// AnswerRequest records an option for the current question.
type AnswerRequest struct {
	Action      Action `json:"action"`
	OptionIndex int    `json:"option_index"`
}

// NavigateRequest moves between questions. Direction is "next" or "prev".
type NavigateRequest struct {
	Action    Action `json:"action"`
	Direction string `json:"direction"`
}

// SignalRequest reports one raw integrity signal from the exam page.
type SignalRequest struct {
	Action Action      `json:"action"`
	Signal viva.Signal `json:"signal"`
}

// SubmitRequest finishes and grades the exam.
type SubmitRequest struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventReady        Event = "ready"
	EventState        Event = "state"
	EventTick         Event = "tick"
	EventWarning      Event = "warning"
	EventPresentation Event = "presentation"
	EventGraded       Event = "graded"
	EventPong         Event = "pong"
	EventError        Event = "error"
)

// ReadyResponse is sent right after the exam is opened, before start.
type ReadyResponse struct {
	Event           Event                      `json:"event"`
	Questions       []model.QuestionForStudent `json:"questions"`
	DurationSeconds int                        `json:"duration_seconds"`
}

// StateResponse reflects the session after an answer or navigation.
type StateResponse struct {
	Event         Event `json:"event"`
	CurrentIndex  int   `json:"current_index"`
	Answers       []int `json:"answers"`
	AnsweredCount int   `json:"answered_count"`
}

// TickResponse carries the countdown once per second.
type TickResponse struct {
	Event            Event `json:"event"`
	RemainingSeconds int   `json:"remaining_seconds"`
}

// WarningResponse carries the first-strike warning banner.
type WarningResponse struct {
	Event          Event  `json:"event"`
	Message        string `json:"message"`
	DisplaySeconds int    `json:"display_seconds"`
}

// PresentationResponse instructs the client to enter or leave the
// exclusive full-screen presentation.
type PresentationResponse struct {
	Event     Event  `json:"event"`
	Directive string `json:"directive"` // "enter" or "exit"
}

// GradedResponse delivers the final result after completion.
type GradedResponse struct {
	Event  Event       `json:"event"`
	Result viva.Result `json:"result"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

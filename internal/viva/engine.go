package viva

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/labworks/labviva-backend/internal/model"
)

var (
	// ErrAlreadyAttempted is returned when the student has a persisted
	// attempt for the experiment. Attempts are one-shot.
	ErrAlreadyAttempted = errors.New("viva already attempted for this experiment")

	// ErrExamNotFound is returned for operations on an exam that is not open.
	ErrExamNotFound = errors.New("no open exam for this student and experiment")

	// ErrExamAlreadyOpen is returned when a second exam open races with a
	// running one, e.g. a duplicate browser tab.
	ErrExamAlreadyOpen = errors.New("an exam is already open for this student and experiment")
)

// QuestionSource supplies the question bank for an experiment.
type QuestionSource interface {
	QuestionsByExperiment(ctx context.Context, experimentID uuid.UUID) ([]model.VivaQuestion, error)
}

// AttemptStore persists completed attempts. Create must fail with
// ErrAlreadyAttempted when an attempt already exists for the pair.
type AttemptStore interface {
	Create(ctx context.Context, attempt *model.VivaAttempt) error
	GetByStudentAndExperiment(ctx context.Context, studentID int, experimentID uuid.UUID) (*model.VivaAttempt, error)
}

// AuditSink receives every observed violation for the audit trail.
// Implementations must not block; the engine calls it on the hot path.
type AuditSink interface {
	RecordViolation(experimentID uuid.UUID, studentID int, category Category, message string)
}

// Events is the engine's outbound channel to one exam's client. The ws
// handler implements it; tests use a recording fake.
type Events interface {
	Tick(remainingSeconds int)
	Warning(message string)
	Completed(result Result, attempt *model.VivaAttempt)
}

// Exam is one open exam: the session, its monitor, and the countdown.
type Exam struct {
	StudentID    int
	ExperimentID uuid.UUID

	Session *Session
	Monitor *Monitor

	eventsMu sync.Mutex
	events   Events

	engine *Engine

	cancelTick context.CancelFunc

	submitMu sync.Mutex
}

// Engine owns all open exams and drives them through their lifecycle.
type Engine struct {
	questions QuestionSource
	attempts  AttemptStore
	audit     AuditSink
	log       zerolog.Logger

	mu     sync.Mutex
	active map[string]*Exam
}

// NewEngine wires the engine over its stores.
func NewEngine(questions QuestionSource, attempts AttemptStore, audit AuditSink) *Engine {
	return &Engine{
		questions: questions,
		attempts:  attempts,
		audit:     audit,
		log:       log.With().Str("component", "viva_engine").Logger(),
		active:    make(map[string]*Exam),
	}
}

func examKey(studentID int, experimentID uuid.UUID) string {
	return strconv.Itoa(studentID) + ":" + experimentID.String()
}

// Open prepares an exam for the student: rejects a prior attempt, samples
// the question set deterministically from the student ID, and registers the
// exam. The exam is NotStarted until Start is called.
func (e *Engine) Open(ctx context.Context, studentID int, experimentID uuid.UUID, presenter PresentationController, events Events) (*Exam, error) {
	prior, err := e.attempts.GetByStudentAndExperiment(ctx, studentID, experimentID)
	if err != nil {
		return nil, fmt.Errorf("check prior attempt: %w", err)
	}
	if prior != nil {
		return nil, ErrAlreadyAttempted
	}

	bank, err := e.questions.QuestionsByExperiment(ctx, experimentID)
	if err != nil {
		return nil, fmt.Errorf("load question bank: %w", err)
	}
	if len(bank) == 0 {
		return nil, ErrNoQuestions
	}

	selected := Sample(bank, strconv.Itoa(studentID), DefaultSampleSize)

	session, err := NewSession(selected, presenter)
	if err != nil {
		return nil, err
	}

	exam := &Exam{
		StudentID:    studentID,
		ExperimentID: experimentID,
		Session:      session,
		events:       events,
		engine:       e,
	}
	exam.Monitor = NewMonitor(session, func(rec ViolationRecord) {
		if e.audit != nil {
			e.audit.RecordViolation(experimentID, studentID, rec.Category, rec.Message)
		}
	})

	key := examKey(studentID, experimentID)
	e.mu.Lock()
	if _, exists := e.active[key]; exists {
		e.mu.Unlock()
		return nil, ErrExamAlreadyOpen
	}
	e.active[key] = exam
	e.mu.Unlock()

	e.log.Info().
		Int("student_id", studentID).
		Str("experiment_id", experimentID.String()).
		Int("questions", len(selected)).
		Msg("exam opened")
	return exam, nil
}

// Lookup returns the open exam for the pair, if any.
func (e *Engine) Lookup(studentID int, experimentID uuid.UUID) (*Exam, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	exam, ok := e.active[examKey(studentID, experimentID)]
	return exam, ok
}

// Close deregisters an exam without completing it, e.g. on a dropped
// connection before start. A completed exam is deregistered by finalize.
func (e *Engine) Close(exam *Exam) {
	if exam.cancelTick != nil {
		exam.cancelTick()
	}
	e.deregister(exam)
}

func (e *Engine) deregister(exam *Exam) {
	e.mu.Lock()
	delete(e.active, examKey(exam.StudentID, exam.ExperimentID))
	e.mu.Unlock()
}

// SetEvents swaps the outbound event channel, e.g. when a dropped client
// reconnects to its still-running exam.
func (exam *Exam) SetEvents(events Events) {
	exam.eventsMu.Lock()
	exam.events = events
	exam.eventsMu.Unlock()
}

func (exam *Exam) notify() Events {
	exam.eventsMu.Lock()
	defer exam.eventsMu.Unlock()
	return exam.events
}

// Start begins the exam and launches the countdown.
func (exam *Exam) Start(ctx context.Context) error {
	if err := exam.Session.Start(); err != nil {
		return err
	}
	tickCtx, cancel := context.WithCancel(ctx)
	exam.cancelTick = cancel
	go exam.runClock(tickCtx)
	return nil
}

// runClock ticks the session once per second until expiry or cancellation.
// Expiry forces completion with every unanswered question counted wrong.
func (exam *Exam) runClock(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			remaining, expired := exam.Session.Tick()
			exam.notify().Tick(remaining)
			if expired {
				exam.expire(ctx)
				return
			}
		}
	}
}

// expiryRetryDelay paces persist retries after the countdown runs out.
var expiryRetryDelay = 2 * time.Second

// expire forces completion at zero remaining time. A failed persist reopens
// the session, so the write is retried until it lands or the exam is
// closed; the expired session must not quietly resume as an untimed one.
func (exam *Exam) expire(ctx context.Context) {
	for {
		if err := exam.finalize(ctx, ReasonTimeExpired, false); err == nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(expiryRetryDelay):
		}
	}
}

// ReportSignal feeds one raw client signal through the integrity monitor and
// applies its decision: warnings go to the client, a termination forces
// submission with score 0.
func (exam *Exam) ReportSignal(ctx context.Context, sig Signal) error {
	outcome := exam.Monitor.Observe(sig)
	switch outcome.Effect {
	case EffectWarning:
		exam.notify().Warning(FinalWarningBanner(outcome.Message))
	case EffectTerminated:
		return exam.finalize(ctx, outcome.TerminationReason, true)
	}
	return nil
}

// Submit is the student's manual submission. Requires every question
// answered; otherwise ErrUnanswered.
func (exam *Exam) Submit(ctx context.Context) error {
	return exam.submit(ctx, "", false, true)
}

// finalize forces completion for expiry and violation terminations.
func (exam *Exam) finalize(ctx context.Context, reason string, violation bool) error {
	return exam.submit(ctx, reason, violation, false)
}

// submit claims completion, scores, persists the attempt, and emits the
// result. Exactly one racing caller wins the claim; losers return nil. A
// failed persist reopens the session so the attempt is not lost.
func (exam *Exam) submit(ctx context.Context, reason string, violation, manual bool) error {
	exam.submitMu.Lock()
	defer exam.submitMu.Unlock()

	if err := exam.Session.claim(reason, violation, manual); err != nil {
		if errors.Is(err, errAlreadyClaimed) {
			return nil
		}
		return err
	}

	questions := exam.Session.Questions()
	ids := make([]uuid.UUID, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}

	attempt := &model.VivaAttempt{
		ID:                  uuid.New(),
		StudentID:           exam.StudentID,
		ExperimentID:        exam.ExperimentID,
		Score:               exam.Session.FinalScore(),
		TotalQuestions:      len(questions),
		CompletedAt:         time.Now().UTC(),
		Answers:             exam.Session.Answers(),
		SelectedQuestionIDs: ids,
		SecurityViolations:  exam.Session.Violations(),
		AIToolsDetected:     exam.Session.AIToolsDetected(),
	}
	if violation {
		attempt.AutoSubmittedDueToViolation = true
		r := reason
		attempt.ViolationReason = &r
	}

	if err := exam.engine.attempts.Create(ctx, attempt); err != nil {
		exam.Session.reopen()
		exam.engine.log.Error().Err(err).
			Int("student_id", exam.StudentID).
			Str("experiment_id", exam.ExperimentID.String()).
			Msg("attempt persist failed, session reopened")
		return fmt.Errorf("persist attempt: %w", err)
	}

	if exam.cancelTick != nil {
		exam.cancelTick()
	}
	exam.Session.complete()
	exam.engine.deregister(exam)

	exam.engine.log.Info().
		Int("student_id", exam.StudentID).
		Str("experiment_id", exam.ExperimentID.String()).
		Int("score", attempt.Score).
		Bool("auto_submitted", attempt.AutoSubmittedDueToViolation).
		Msg("exam completed")

	exam.notify().Completed(BuildResult(attempt), attempt)
	return nil
}

// Snapshot is the live state exposed to faculty monitoring.
type Snapshot struct {
	StudentID        int                     `json:"student_id"`
	ExperimentID     uuid.UUID               `json:"experiment_id"`
	Status           Status                  `json:"status"`
	CurrentIndex     int                     `json:"current_index"`
	AnsweredCount    int                     `json:"answered_count"`
	TotalQuestions   int                     `json:"total_questions"`
	RemainingSeconds int                     `json:"remaining_seconds"`
	Violations       model.ViolationCounters `json:"violations"`
}

// LiveSnapshots lists the state of every open exam.
func (e *Engine) LiveSnapshots() []Snapshot {
	e.mu.Lock()
	exams := make([]*Exam, 0, len(e.active))
	for _, ex := range e.active {
		exams = append(exams, ex)
	}
	e.mu.Unlock()

	out := make([]Snapshot, 0, len(exams))
	for _, ex := range exams {
		out = append(out, Snapshot{
			StudentID:        ex.StudentID,
			ExperimentID:     ex.ExperimentID,
			Status:           ex.Session.Status(),
			CurrentIndex:     ex.Session.CurrentIndex(),
			AnsweredCount:    ex.Session.AnsweredCount(),
			TotalQuestions:   len(ex.Session.Questions()),
			RemainingSeconds: ex.Session.RemainingSeconds(),
			Violations:       ex.Session.Violations(),
		})
	}
	return out
}

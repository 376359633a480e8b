package viva

import (
	"errors"
	"sync"

	"github.com/labworks/labviva-backend/internal/model"
)

// Status enumerates exam session states.
type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusSubmitting Status = "SUBMITTING"
	StatusCompleted  Status = "COMPLETED"
)

// SecondsPerQuestion is the time budget granted per sampled question.
const SecondsPerQuestion = 60

// ReasonTimeExpired marks a completion forced by the countdown reaching zero.
const ReasonTimeExpired = "Time expired"

var (
	// ErrNoQuestions is returned when a session is built from an empty bank.
	// Zero sampled questions means "no test available", never a valid exam.
	ErrNoQuestions = errors.New("no viva questions available")

	// ErrNotInProgress is returned for operations that require a running session.
	ErrNotInProgress = errors.New("session is not in progress")

	// ErrUnanswered is returned when a manual submit is attempted with at
	// least one unanswered question.
	ErrUnanswered = errors.New("all questions must be answered before submitting")

	// ErrInvalidOption is returned for an option index outside the question's range.
	ErrInvalidOption = errors.New("invalid option index")
)

// PresentationController abstracts the exclusive full-screen capability so
// the state machine carries no platform calls. Both operations are
// best-effort: failures are swallowed by implementations.
type PresentationController interface {
	RequestExclusive()
	Release()
}

// NopPresentation is a PresentationController that does nothing. Used in
// tests and for replay views.
type NopPresentation struct{}

func (NopPresentation) RequestExclusive() {}
func (NopPresentation) Release()          {}

// Session is the in-memory state of one attempt in progress. It is safe for
// concurrent use: the countdown ticker, the client message reader, and the
// integrity monitor all touch it.
type Session struct {
	mu sync.Mutex

	questions        []model.VivaQuestion
	answers          []int
	currentIndex     int
	remainingSeconds int
	status           Status

	violations      model.ViolationCounters
	aiToolsDetected []string

	terminationReason string
	autoSubmitted     bool

	presenter PresentationController
}

// NewSession builds a NotStarted session over the sampled questions.
// Fails on an empty question set.
func NewSession(questions []model.VivaQuestion, presenter PresentationController) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	if presenter == nil {
		presenter = NopPresentation{}
	}
	return &Session{
		questions: questions,
		status:    StatusNotStarted,
		presenter: presenter,
	}, nil
}

// Start transitions NotStarted to InProgress: answers reset to -1, the clock
// set to one minute per question, and exclusive presentation requested.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusNotStarted {
		return errors.New("session already started")
	}

	s.answers = make([]int, len(s.questions))
	for i := range s.answers {
		s.answers[i] = -1
	}
	s.currentIndex = 0

	n := len(s.questions)
	if n > DefaultSampleSize {
		n = DefaultSampleSize
	}
	s.remainingSeconds = n * SecondsPerQuestion
	s.status = StatusInProgress

	s.presenter.RequestExclusive()
	return nil
}

// SelectAnswer records optionIndex for the current question.
func (s *Session) SelectAnswer(optionIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusInProgress {
		return ErrNotInProgress
	}
	if optionIndex < 0 || optionIndex >= len(s.questions[s.currentIndex].Options) {
		return ErrInvalidOption
	}
	s.answers[s.currentIndex] = optionIndex
	return nil
}

// Advance moves to the next question. No-op at the last question.
func (s *Session) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusInProgress && s.currentIndex < len(s.questions)-1 {
		s.currentIndex++
	}
}

// Retreat moves to the previous question. No-op at the first question.
func (s *Session) Retreat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusInProgress && s.currentIndex > 0 {
		s.currentIndex--
	}
}

// Tick advances the countdown by one second. Returns the remaining seconds
// and whether the clock ran out on this tick; the caller is responsible for
// forcing completion on expiry.
func (s *Session) Tick() (remaining int, expired bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusInProgress {
		return s.remainingSeconds, false
	}
	s.remainingSeconds--
	if s.remainingSeconds <= 0 {
		s.remainingSeconds = 0
		return 0, true
	}
	return s.remainingSeconds, false
}

// RecordViolation increments the counter for the category and returns the
// new total. ok is false when the session no longer accepts violations
// (already submitting or completed), which keeps the totals monotonic and
// the escalation race-free.
func (s *Session) RecordViolation(cat Category) (total int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusInProgress {
		return s.violations.Total(), false
	}
	switch cat {
	case CategoryTab:
		s.violations.TabSwitches++
	case CategoryWindow:
		s.violations.WindowSwitches++
	case CategoryAI:
		s.violations.AIToolDetections++
	case CategoryDevTools:
		s.violations.DevToolsAttempts++
	}
	return s.violations.Total(), true
}

// NoteAITool appends a detected tool name to the session record.
func (s *Session) NoteAITool(tool string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aiToolsDetected = append(s.aiToolsDetected, tool)
}

// claim atomically takes ownership of completion. Exactly one caller wins:
// the countdown, the integrity monitor, and a manual submit can race and the
// first claim's reason is the one that sticks. A manual claim additionally
// requires every question answered.
func (s *Session) claim(reason string, violation, manual bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case StatusSubmitting, StatusCompleted:
		return errAlreadyClaimed
	case StatusNotStarted:
		return ErrNotInProgress
	}

	if manual {
		for _, a := range s.answers {
			if a == -1 {
				return ErrUnanswered
			}
		}
	}

	s.status = StatusSubmitting
	s.terminationReason = reason
	s.autoSubmitted = violation
	return nil
}

var errAlreadyClaimed = errors.New("completion already claimed")

// complete finalizes a claimed session and releases exclusive presentation.
func (s *Session) complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusCompleted
	s.presenter.Release()
}

// reopen reverts a claimed session to InProgress after a failed persist so
// the attempt is not silently lost and a retry can re-claim.
func (s *Session) reopen() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusSubmitting {
		s.status = StatusInProgress
		s.terminationReason = ""
		s.autoSubmitted = false
	}
}

// FinalScore computes the score under the current termination state: zero
// unconditionally for violation terminations, otherwise one mark per
// position where the answer matches the question's correct option.
// Unanswered entries (-1) never match.
func (s *Session) FinalScore() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scoreLocked()
}

func (s *Session) scoreLocked() int {
	if s.autoSubmitted {
		return 0
	}
	score := 0
	for i, q := range s.questions {
		if i < len(s.answers) && s.answers[i] == q.CorrectOption {
			score++
		}
	}
	return score
}

// Accessors below return copies so callers cannot mutate session state.

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) Questions() []model.VivaQuestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.VivaQuestion, len(s.questions))
	copy(out, s.questions)
	return out
}

func (s *Session) Answers() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.answers))
	copy(out, s.answers)
	return out
}

func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentIndex
}

func (s *Session) RemainingSeconds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remainingSeconds
}

func (s *Session) Violations() model.ViolationCounters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.violations
}

func (s *Session) AIToolsDetected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.aiToolsDetected))
	copy(out, s.aiToolsDetected)
	return out
}

func (s *Session) TerminationReason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminationReason
}

func (s *Session) AutoSubmitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoSubmitted
}

// AnsweredCount returns how many questions currently have an answer.
func (s *Session) AnsweredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.answers {
		if a != -1 {
			n++
		}
	}
	return n
}

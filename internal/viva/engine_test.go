package viva

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/labworks/labviva-backend/internal/model"
)

type memQuestions struct {
	banks map[uuid.UUID][]model.VivaQuestion
}

func (q *memQuestions) QuestionsByExperiment(_ context.Context, id uuid.UUID) ([]model.VivaQuestion, error) {
	return q.banks[id], nil
}

type memAttempts struct {
	mu       sync.Mutex
	attempts []*model.VivaAttempt
	failNext error
}

func (a *memAttempts) Create(_ context.Context, attempt *model.VivaAttempt) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failNext != nil {
		err := a.failNext
		a.failNext = nil
		return err
	}
	for _, prev := range a.attempts {
		if prev.StudentID == attempt.StudentID && prev.ExperimentID == attempt.ExperimentID {
			return ErrAlreadyAttempted
		}
	}
	a.attempts = append(a.attempts, attempt)
	return nil
}

func (a *memAttempts) GetByStudentAndExperiment(_ context.Context, studentID int, experimentID uuid.UUID) (*model.VivaAttempt, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, prev := range a.attempts {
		if prev.StudentID == studentID && prev.ExperimentID == experimentID {
			return prev, nil
		}
	}
	return nil, nil
}

func (a *memAttempts) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.attempts)
}

type memAudit struct {
	mu      sync.Mutex
	records []ViolationRecord
}

func (s *memAudit) RecordViolation(_ uuid.UUID, _ int, cat Category, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, ViolationRecord{Category: cat, Message: msg})
}

type recordingEvents struct {
	mu        sync.Mutex
	warnings  []string
	completed []Result
	attempt   *model.VivaAttempt
}

func (e *recordingEvents) Tick(int) {}

func (e *recordingEvents) Warning(msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.warnings = append(e.warnings, msg)
}

func (e *recordingEvents) Completed(res Result, attempt *model.VivaAttempt) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.completed = append(e.completed, res)
	e.attempt = attempt
}

func (e *recordingEvents) completedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.completed)
}

func newTestEngine(bankSize int) (*Engine, uuid.UUID, *memAttempts, *memAudit) {
	expID := uuid.New()
	attempts := &memAttempts{}
	audit := &memAudit{}
	eng := NewEngine(
		&memQuestions{banks: map[uuid.UUID][]model.VivaQuestion{expID: makeBank(bankSize)}},
		attempts,
		audit,
	)
	return eng, expID, attempts, audit
}

func openStarted(t *testing.T, eng *Engine, studentID int, expID uuid.UUID, ev Events) *Exam {
	t.Helper()
	exam, err := eng.Open(context.Background(), studentID, expID, NopPresentation{}, ev)
	if err != nil {
		t.Fatal(err)
	}
	if err := exam.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	return exam
}

func answerAll(exam *Exam) {
	questions := exam.Session.Questions()
	for i, q := range questions {
		_ = exam.Session.SelectAnswer(q.CorrectOption)
		if i < len(questions)-1 {
			exam.Session.Advance()
		}
	}
}

func TestOpenPriorAttemptRejected(t *testing.T) {
	eng, expID, attempts, _ := newTestEngine(12)
	attempts.attempts = append(attempts.attempts, &model.VivaAttempt{StudentID: 1, ExperimentID: expID})

	_, err := eng.Open(context.Background(), 1, expID, NopPresentation{}, &recordingEvents{})
	if !errors.Is(err, ErrAlreadyAttempted) {
		t.Fatalf("err = %v, want ErrAlreadyAttempted", err)
	}
}

func TestOpenEmptyBank(t *testing.T) {
	eng, _, _, _ := newTestEngine(12)
	_, err := eng.Open(context.Background(), 1, uuid.New(), NopPresentation{}, &recordingEvents{})
	if !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("err = %v, want ErrNoQuestions", err)
	}
}

func TestOpenDuplicateTab(t *testing.T) {
	eng, expID, _, _ := newTestEngine(12)
	exam, err := eng.Open(context.Background(), 1, expID, NopPresentation{}, &recordingEvents{})
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close(exam)

	_, err = eng.Open(context.Background(), 1, expID, NopPresentation{}, &recordingEvents{})
	if !errors.Is(err, ErrExamAlreadyOpen) {
		t.Fatalf("err = %v, want ErrExamAlreadyOpen", err)
	}
}

func TestSubmitHappyPath(t *testing.T) {
	eng, expID, attempts, _ := newTestEngine(12)
	ev := &recordingEvents{}
	exam := openStarted(t, eng, 1, expID, ev)
	answerAll(exam)

	if err := exam.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}
	if attempts.count() != 1 {
		t.Fatalf("attempts = %d, want 1", attempts.count())
	}
	got := attempts.attempts[0]
	if got.Score != 10 || got.TotalQuestions != 10 {
		t.Fatalf("attempt = score %d / %d", got.Score, got.TotalQuestions)
	}
	if len(got.SelectedQuestionIDs) != 10 {
		t.Fatalf("stored question IDs = %d", len(got.SelectedQuestionIDs))
	}
	if got.AutoSubmittedDueToViolation || got.ViolationReason != nil {
		t.Fatal("clean submit must not carry violation state")
	}
	if ev.completedCount() != 1 {
		t.Fatalf("completed events = %d", ev.completedCount())
	}
	if ev.completed[0].Grade.Grade != "A+" {
		t.Fatalf("grade = %s", ev.completed[0].Grade.Grade)
	}

	if _, open := eng.Lookup(1, expID); open {
		t.Fatal("completed exam must be deregistered")
	}
}

func TestSubmitRequiresAllAnswered(t *testing.T) {
	eng, expID, attempts, _ := newTestEngine(12)
	exam := openStarted(t, eng, 1, expID, &recordingEvents{})
	defer eng.Close(exam)

	if err := exam.Submit(context.Background()); !errors.Is(err, ErrUnanswered) {
		t.Fatalf("err = %v, want ErrUnanswered", err)
	}
	if attempts.count() != 0 {
		t.Fatal("rejected submit must not persist")
	}
	if exam.Session.Status() != StatusInProgress {
		t.Fatal("session must continue after rejected submit")
	}
}

func TestDoubleSubmitPersistsOnce(t *testing.T) {
	eng, expID, attempts, _ := newTestEngine(12)
	ev := &recordingEvents{}
	exam := openStarted(t, eng, 1, expID, ev)
	answerAll(exam)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = exam.Submit(context.Background())
		}()
	}
	wg.Wait()

	if attempts.count() != 1 {
		t.Fatalf("attempts = %d, want exactly 1", attempts.count())
	}
	if ev.completedCount() != 1 {
		t.Fatalf("completed events = %d, want 1", ev.completedCount())
	}
}

func TestTwoViolationsAutoSubmitZero(t *testing.T) {
	eng, expID, attempts, audit := newTestEngine(12)
	ev := &recordingEvents{}
	exam := openStarted(t, eng, 1, expID, ev)
	answerAll(exam) // answers must not rescue a violation termination

	if err := exam.ReportSignal(context.Background(), Signal{Kind: SignalVisibilityHidden}); err != nil {
		t.Fatal(err)
	}
	wantBanner := FinalWarningBanner("Tab switching detected! Stay on the test page.")
	if len(ev.warnings) != 1 || ev.warnings[0] != wantBanner {
		t.Fatalf("warnings = %v, want %q", ev.warnings, wantBanner)
	}
	if attempts.count() != 0 {
		t.Fatal("first strike must not submit")
	}

	if err := exam.ReportSignal(context.Background(), Signal{Kind: SignalDevToolsKey}); err != nil {
		t.Fatal(err)
	}
	if attempts.count() != 1 {
		t.Fatalf("attempts = %d, want 1", attempts.count())
	}
	got := attempts.attempts[0]
	if got.Score != 0 || !got.AutoSubmittedDueToViolation {
		t.Fatalf("attempt = %+v", got)
	}
	want := "Multiple security violations detected: Developer tools access attempt detected!"
	if got.ViolationReason == nil || *got.ViolationReason != want {
		t.Fatalf("reason = %v", got.ViolationReason)
	}
	if got.SecurityViolations.Total() != 2 {
		t.Fatalf("counters = %+v", got.SecurityViolations)
	}
	audit.mu.Lock()
	records := len(audit.records)
	audit.mu.Unlock()
	if records != 2 {
		t.Fatalf("audit records = %d, want 2", records)
	}
	if ev.completed[0].Grade.Grade != "F" {
		t.Fatalf("grade = %s, want F", ev.completed[0].Grade.Grade)
	}
}

func TestSignalAfterCompletionInert(t *testing.T) {
	eng, expID, attempts, _ := newTestEngine(12)
	ev := &recordingEvents{}
	exam := openStarted(t, eng, 1, expID, ev)
	answerAll(exam)
	if err := exam.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := exam.ReportSignal(context.Background(), Signal{Kind: SignalVisibilityHidden}); err != nil {
		t.Fatal(err)
	}
	if attempts.count() != 1 || ev.completedCount() != 1 {
		t.Fatal("post-completion signal must have no effect")
	}
}

func TestPersistFailureReopensForRetry(t *testing.T) {
	eng, expID, attempts, _ := newTestEngine(12)
	ev := &recordingEvents{}
	exam := openStarted(t, eng, 1, expID, ev)
	answerAll(exam)

	attempts.failNext = errors.New("connection reset")
	if err := exam.Submit(context.Background()); err == nil {
		t.Fatal("submit should surface the persist error")
	}
	if exam.Session.Status() != StatusInProgress {
		t.Fatalf("status = %s, want reopened IN_PROGRESS", exam.Session.Status())
	}
	if ev.completedCount() != 0 {
		t.Fatal("failed persist must not emit completion")
	}
	if _, open := eng.Lookup(1, expID); !open {
		t.Fatal("exam must stay registered for retry")
	}

	if err := exam.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}
	if attempts.count() != 1 || ev.completedCount() != 1 {
		t.Fatal("retry should complete normally")
	}
}

func TestExpiryRetriesFailedPersist(t *testing.T) {
	prev := expiryRetryDelay
	expiryRetryDelay = time.Millisecond
	defer func() { expiryRetryDelay = prev }()

	eng, expID, attempts, _ := newTestEngine(12)
	ev := &recordingEvents{}
	exam := openStarted(t, eng, 1, expID, ev)

	attempts.failNext = errors.New("connection reset")
	exam.expire(context.Background())

	if attempts.count() != 1 {
		t.Fatalf("attempts = %d, want 1", attempts.count())
	}
	got := attempts.attempts[0]
	if got.AutoSubmittedDueToViolation {
		t.Fatal("time expiry must not be marked as a violation termination")
	}
	if got.ViolationReason != nil {
		t.Fatalf("reason = %v, want none", got.ViolationReason)
	}
	if ev.completedCount() != 1 {
		t.Fatalf("completed events = %d, want 1", ev.completedCount())
	}
	if _, open := eng.Lookup(1, expID); open {
		t.Fatal("expired exam must be deregistered")
	}
}

func TestExpiryRetryStopsOnClose(t *testing.T) {
	prev := expiryRetryDelay
	expiryRetryDelay = time.Millisecond
	defer func() { expiryRetryDelay = prev }()

	eng, expID, attempts, _ := newTestEngine(12)
	exam := openStarted(t, eng, 1, expID, &recordingEvents{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	attempts.failNext = errors.New("connection reset")
	exam.expire(ctx)

	if attempts.count() != 0 {
		t.Fatalf("attempts = %d, want 0 after canceled retry", attempts.count())
	}
	eng.Close(exam)
}

func TestSamplingUsesStudentKey(t *testing.T) {
	eng, expID, _, _ := newTestEngine(40)
	ev := &recordingEvents{}

	examA, err := eng.Open(context.Background(), 101, expID, NopPresentation{}, ev)
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close(examA)
	examB, err := eng.Open(context.Background(), 20002, expID, NopPresentation{}, ev)
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close(examB)

	qa, qb := examA.Session.Questions(), examB.Session.Questions()
	if len(qa) != 10 || len(qb) != 10 {
		t.Fatalf("lens = %d, %d", len(qa), len(qb))
	}
	same := true
	for i := range qa {
		if qa[i].ID != qb[i].ID {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different students drew an identical selection from a 40-question bank")
	}
}

package viva

import (
	"errors"
	"testing"
)

type fakePresenter struct {
	requested int
	released  int
}

func (p *fakePresenter) RequestExclusive() { p.requested++ }
func (p *fakePresenter) Release()          { p.released++ }

func startedSession(t *testing.T, n int) *Session {
	t.Helper()
	s, err := NewSession(makeBank(n), NopPresentation{})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestNewSessionEmptyBank(t *testing.T) {
	if _, err := NewSession(nil, nil); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("err = %v, want ErrNoQuestions", err)
	}
}

func TestStartInitializesState(t *testing.T) {
	p := &fakePresenter{}
	s, err := NewSession(makeBank(10), p)
	if err != nil {
		t.Fatal(err)
	}
	if s.Status() != StatusNotStarted {
		t.Fatalf("status = %s before start", s.Status())
	}
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if s.Status() != StatusInProgress {
		t.Fatalf("status = %s after start", s.Status())
	}
	if got := s.RemainingSeconds(); got != 600 {
		t.Fatalf("remaining = %d, want 600", got)
	}
	for i, a := range s.Answers() {
		if a != -1 {
			t.Fatalf("answer %d = %d, want -1", i, a)
		}
	}
	if p.requested != 1 {
		t.Fatalf("exclusive presentation requested %d times", p.requested)
	}
	if err := s.Start(); err == nil {
		t.Fatal("second Start should fail")
	}
}

func TestStartShortBankClock(t *testing.T) {
	s := startedSession(t, 3)
	if got := s.RemainingSeconds(); got != 180 {
		t.Fatalf("remaining = %d, want 180 for 3 questions", got)
	}
}

func TestNavigationClamped(t *testing.T) {
	s := startedSession(t, 3)
	s.Retreat()
	if s.CurrentIndex() != 0 {
		t.Fatal("Retreat at first question must clamp")
	}
	s.Advance()
	s.Advance()
	s.Advance()
	if s.CurrentIndex() != 2 {
		t.Fatalf("index = %d, want clamp at 2", s.CurrentIndex())
	}
	s.Retreat()
	if s.CurrentIndex() != 1 {
		t.Fatalf("index = %d after retreat, want 1", s.CurrentIndex())
	}
}

func TestSelectAnswer(t *testing.T) {
	s := startedSession(t, 2)
	if err := s.SelectAnswer(2); err != nil {
		t.Fatal(err)
	}
	if got := s.Answers()[0]; got != 2 {
		t.Fatalf("answer = %d, want 2", got)
	}
	// Re-selection overwrites.
	if err := s.SelectAnswer(0); err != nil {
		t.Fatal(err)
	}
	if got := s.Answers()[0]; got != 0 {
		t.Fatalf("answer = %d after change, want 0", got)
	}
	if err := s.SelectAnswer(4); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("err = %v, want ErrInvalidOption", err)
	}
	if err := s.SelectAnswer(-1); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("err = %v, want ErrInvalidOption", err)
	}
}

func TestTickCountdownAndExpiry(t *testing.T) {
	s := startedSession(t, 1)
	for i := 0; i < 59; i++ {
		if _, expired := s.Tick(); expired {
			t.Fatalf("expired early at tick %d", i)
		}
	}
	remaining, expired := s.Tick()
	if !expired || remaining != 0 {
		t.Fatalf("tick 60: remaining=%d expired=%v", remaining, expired)
	}
	// Further ticks after claim must not report expiry again.
	if err := s.claim(ReasonTimeExpired, false, false); err != nil {
		t.Fatal(err)
	}
	if _, expired := s.Tick(); expired {
		t.Fatal("tick after claim reported expiry")
	}
}

func TestClaimIdempotent(t *testing.T) {
	s := startedSession(t, 2)
	if err := s.claim(ReasonTimeExpired, false, false); err != nil {
		t.Fatal(err)
	}
	err := s.claim("Multiple security violations detected: x", true, false)
	if !errors.Is(err, errAlreadyClaimed) {
		t.Fatalf("err = %v, want errAlreadyClaimed", err)
	}
	// First claim's reason sticks.
	if got := s.TerminationReason(); got != ReasonTimeExpired {
		t.Fatalf("reason = %q", got)
	}
	if s.AutoSubmitted() {
		t.Fatal("losing claim must not flip autoSubmitted")
	}
}

func TestManualClaimRequiresAllAnswered(t *testing.T) {
	s := startedSession(t, 2)
	if err := s.claim("", false, true); !errors.Is(err, ErrUnanswered) {
		t.Fatalf("err = %v, want ErrUnanswered", err)
	}
	if s.Status() != StatusInProgress {
		t.Fatal("failed manual claim must not change status")
	}
	_ = s.SelectAnswer(0)
	s.Advance()
	_ = s.SelectAnswer(1)
	if err := s.claim("", false, true); err != nil {
		t.Fatal(err)
	}
	if s.Status() != StatusSubmitting {
		t.Fatalf("status = %s, want SUBMITTING", s.Status())
	}
}

func TestReopenAfterFailedPersist(t *testing.T) {
	s := startedSession(t, 1)
	_ = s.SelectAnswer(0)
	if err := s.claim("", false, true); err != nil {
		t.Fatal(err)
	}
	s.reopen()
	if s.Status() != StatusInProgress {
		t.Fatalf("status = %s after reopen, want IN_PROGRESS", s.Status())
	}
	if s.TerminationReason() != "" || s.AutoSubmitted() {
		t.Fatal("reopen must clear termination state")
	}
	// Retry can claim again.
	if err := s.claim("", false, true); err != nil {
		t.Fatal(err)
	}
}

func TestCompleteReleasesPresentation(t *testing.T) {
	p := &fakePresenter{}
	s, err := NewSession(makeBank(1), p)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if err := s.claim(ReasonTimeExpired, false, false); err != nil {
		t.Fatal(err)
	}
	s.complete()
	if s.Status() != StatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", s.Status())
	}
	if p.released != 1 {
		t.Fatalf("presentation released %d times, want 1", p.released)
	}
}

func TestRecordViolationOnlyInProgress(t *testing.T) {
	s := startedSession(t, 2)
	if total, ok := s.RecordViolation(CategoryTab); !ok || total != 1 {
		t.Fatalf("total=%d ok=%v", total, ok)
	}
	if err := s.claim(ReasonTimeExpired, false, false); err != nil {
		t.Fatal(err)
	}
	if total, ok := s.RecordViolation(CategoryWindow); ok || total != 1 {
		t.Fatalf("after claim: total=%d ok=%v, counters must stay frozen", total, ok)
	}
	v := s.Violations()
	if v.TabSwitches != 1 || v.WindowSwitches != 0 {
		t.Fatalf("counters = %+v", v)
	}
}

func TestFinalScore(t *testing.T) {
	bank := makeBank(4) // correct options 0,1,2,3
	s, err := NewSession(bank, NopPresentation{})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	_ = s.SelectAnswer(0) // correct
	s.Advance()
	_ = s.SelectAnswer(3) // wrong
	s.Advance()
	_ = s.SelectAnswer(2) // correct
	// Fourth left unanswered: -1 never matches.
	if got := s.FinalScore(); got != 2 {
		t.Fatalf("score = %d, want 2", got)
	}
}

func TestFinalScoreZeroOnViolationTermination(t *testing.T) {
	bank := makeBank(2)
	s, err := NewSession(bank, NopPresentation{})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	_ = s.SelectAnswer(0) // would score 1
	if err := s.claim("Multiple security violations detected: x", true, false); err != nil {
		t.Fatal(err)
	}
	if got := s.FinalScore(); got != 0 {
		t.Fatalf("score = %d, want 0 for violation termination", got)
	}
}

package viva

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/labworks/labviva-backend/internal/model"
)

func TestGradeBands(t *testing.T) {
	tests := []struct {
		score int
		total int
		grade string
		label string
	}{
		{10, 10, "A+", "Outstanding!"},
		{9, 10, "A+", "Outstanding!"},
		{8, 10, "A", "Exceptional Performance!"},
		{7, 10, "B+", "Great Job!"},
		{6, 10, "B", "Good Work!"},
		{5, 10, "C", "Keep Improving!"},
		{4, 10, "D", "Better Luck Next Time!"},
		{0, 10, "D", "Better Luck Next Time!"},
		{3, 3, "A+", "Outstanding!"}, // short bank, 100%
		{0, 0, "D", "Better Luck Next Time!"},
	}
	for _, tt := range tests {
		got := GradeFor(tt.score, tt.total, false)
		if got.Grade != tt.grade || got.Label != tt.label {
			t.Errorf("GradeFor(%d,%d) = %s %q, want %s %q",
				tt.score, tt.total, got.Grade, got.Label, tt.grade, tt.label)
		}
	}
}

func TestGradeViolationOverridesScore(t *testing.T) {
	got := GradeFor(10, 10, true)
	if got.Grade != "F" || got.Label != "Test Terminated - Security Violations" || got.Tone != "red" {
		t.Fatalf("got %+v", got)
	}
}

func TestBuildResult(t *testing.T) {
	reason := "Multiple security violations detected: x"
	attempt := &model.VivaAttempt{
		Score:                       0,
		TotalQuestions:              10,
		CompletedAt:                 time.Now(),
		AutoSubmittedDueToViolation: true,
		ViolationReason:             &reason,
	}
	res := BuildResult(attempt)
	if res.Grade.Grade != "F" || !res.AutoSubmitted || res.ViolationReason != reason {
		t.Fatalf("res = %+v", res)
	}
	if res.RedirectAfterSeconds != 30 {
		t.Fatalf("redirect = %d, want 30", res.RedirectAfterSeconds)
	}

	clean := BuildResult(&model.VivaAttempt{Score: 7, TotalQuestions: 10})
	if clean.Percentage != 70 || clean.Grade.Grade != "B+" || clean.ViolationReason != "" {
		t.Fatalf("clean res = %+v", clean)
	}
}

func TestBuildReview(t *testing.T) {
	bank := makeBank(3) // correct options 0,1,2
	rows := BuildReview(bank, []int{0, 3}) // third answer missing

	if len(rows) != 3 {
		t.Fatalf("rows = %d", len(rows))
	}
	if !rows[0].Correct || rows[0].Options[0].Status != OptionCorrect {
		t.Fatalf("row 0 = %+v", rows[0])
	}
	if rows[1].Correct {
		t.Fatal("row 1 should be wrong")
	}
	if rows[1].Options[1].Status != OptionCorrect || rows[1].Options[3].Status != OptionChosenWrong {
		t.Fatalf("row 1 options = %+v", rows[1].Options)
	}
	if rows[2].ChosenOption != -1 || rows[2].Correct {
		t.Fatalf("row 2 = %+v", rows[2])
	}
	for _, st := range []OptionStatus{rows[2].Options[0].Status, rows[2].Options[1].Status, rows[2].Options[3].Status} {
		if st == OptionChosenWrong {
			t.Fatal("unanswered row must not mark a chosen option")
		}
	}
}

func TestReorderForReplayStoredOrder(t *testing.T) {
	bank := makeBank(20)
	// Store an order that differs from bank order.
	ids := []uuid.UUID{bank[7].ID, bank[2].ID, bank[19].ID}
	attempt := &model.VivaAttempt{SelectedQuestionIDs: ids}

	got := ReorderForReplay(attempt, bank, "77")
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	for i, id := range ids {
		if got[i].ID != id {
			t.Fatalf("position %d = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestReorderForReplaySkipsDeletedQuestions(t *testing.T) {
	bank := makeBank(5)
	attempt := &model.VivaAttempt{
		SelectedQuestionIDs: []uuid.UUID{bank[1].ID, uuid.New(), bank[3].ID},
	}
	got := ReorderForReplay(attempt, bank, "77")
	if len(got) != 2 || got[0].ID != bank[1].ID || got[1].ID != bank[3].ID {
		t.Fatalf("got %d questions", len(got))
	}
}

func TestReorderForReplaySamplerFallback(t *testing.T) {
	bank := makeBank(25)
	attempt := &model.VivaAttempt{} // legacy attempt without stored IDs
	got := ReorderForReplay(attempt, bank, "314")
	want := Sample(bank, "314", DefaultSampleSize)
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID {
			t.Fatalf("fallback diverges from the deterministic sampler at %d", i)
		}
	}
}

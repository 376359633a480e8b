package viva

import (
	"github.com/google/uuid"

	"github.com/labworks/labviva-backend/internal/model"
)

// RedirectAfterSeconds is how long the result screen stays before the client
// navigates back to the lab dashboard.
const RedirectAfterSeconds = 30

// GradeBand is the displayed grade with its celebratory label and tone.
type GradeBand struct {
	Grade string `json:"grade"`
	Label string `json:"label"`
	Tone  string `json:"tone"`
}

// GradeFor maps a score to its display band. A violation termination always
// lands in the lowest band regardless of score.
func GradeFor(score, total int, autoSubmitted bool) GradeBand {
	if autoSubmitted {
		return GradeBand{Grade: "F", Label: "Test Terminated - Security Violations", Tone: "red"}
	}
	pct := 0.0
	if total > 0 {
		pct = float64(score) / float64(total) * 100
	}
	switch {
	case pct >= 90:
		return GradeBand{Grade: "A+", Label: "Outstanding!", Tone: "green"}
	case pct >= 80:
		return GradeBand{Grade: "A", Label: "Exceptional Performance!", Tone: "green"}
	case pct >= 70:
		return GradeBand{Grade: "B+", Label: "Great Job!", Tone: "blue"}
	case pct >= 60:
		return GradeBand{Grade: "B", Label: "Good Work!", Tone: "blue"}
	case pct >= 50:
		return GradeBand{Grade: "C", Label: "Keep Improving!", Tone: "yellow"}
	default:
		return GradeBand{Grade: "D", Label: "Better Luck Next Time!", Tone: "gray"}
	}
}

// Result is the graded outcome shown after completion.
type Result struct {
	Score                int       `json:"score"`
	Total                int       `json:"total"`
	Percentage           float64   `json:"percentage"`
	Grade                GradeBand `json:"grade"`
	AutoSubmitted        bool      `json:"auto_submitted"`
	ViolationReason      string    `json:"violation_reason,omitempty"`
	RedirectAfterSeconds int       `json:"redirect_after_seconds"`
}

// BuildResult assembles the result view from a persisted attempt.
func BuildResult(attempt *model.VivaAttempt) Result {
	pct := 0.0
	if attempt.TotalQuestions > 0 {
		pct = float64(attempt.Score) / float64(attempt.TotalQuestions) * 100
	}
	reason := ""
	if attempt.ViolationReason != nil {
		reason = *attempt.ViolationReason
	}
	return Result{
		Score:                attempt.Score,
		Total:                attempt.TotalQuestions,
		Percentage:           pct,
		Grade:                GradeFor(attempt.Score, attempt.TotalQuestions, attempt.AutoSubmittedDueToViolation),
		AutoSubmitted:        attempt.AutoSubmittedDueToViolation,
		ViolationReason:      reason,
		RedirectAfterSeconds: RedirectAfterSeconds,
	}
}

// OptionStatus marks one option in a review row.
type OptionStatus string

const (
	OptionCorrect     OptionStatus = "correct"
	OptionChosenWrong OptionStatus = "chosen_wrong"
	OptionNeutral     OptionStatus = "neutral"
)

// ReviewOption is one option with its review marking.
type ReviewOption struct {
	Text   string       `json:"text"`
	Status OptionStatus `json:"status"`
}

// ReviewRow is one question in the answer review: the correct option is
// always marked, the student's wrong choice (if any) marked separately.
type ReviewRow struct {
	QuestionID   uuid.UUID      `json:"question_id"`
	QuestionText string         `json:"question_text"`
	Options      []ReviewOption `json:"options"`
	ChosenOption int            `json:"chosen_option"`
	Correct      bool           `json:"correct"`
}

// BuildReview pairs the attempt's questions with its answers. answers may be
// shorter than questions; missing entries read as unanswered.
func BuildReview(questions []model.VivaQuestion, answers []int) []ReviewRow {
	rows := make([]ReviewRow, 0, len(questions))
	for i, q := range questions {
		chosen := -1
		if i < len(answers) {
			chosen = answers[i]
		}
		opts := make([]ReviewOption, len(q.Options))
		for j, text := range q.Options {
			status := OptionNeutral
			switch {
			case j == q.CorrectOption:
				status = OptionCorrect
			case j == chosen:
				status = OptionChosenWrong
			}
			opts[j] = ReviewOption{Text: text, Status: status}
		}
		rows = append(rows, ReviewRow{
			QuestionID:   q.ID,
			QuestionText: q.QuestionText,
			Options:      opts,
			ChosenOption: chosen,
			Correct:      chosen == q.CorrectOption,
		})
	}
	return rows
}

// ReorderForReplay arranges the bank into the exact order stored on the
// attempt so the review lines up answer-for-answer. Attempts persisted
// before question IDs were stored fall back to re-running the deterministic
// sampler with the student's key, which reproduces the same set and order.
func ReorderForReplay(attempt *model.VivaAttempt, bank []model.VivaQuestion, studentKey string) []model.VivaQuestion {
	if len(attempt.SelectedQuestionIDs) == 0 {
		return Sample(bank, studentKey, DefaultSampleSize)
	}
	byID := make(map[uuid.UUID]model.VivaQuestion, len(bank))
	for _, q := range bank {
		byID[q.ID] = q
	}
	out := make([]model.VivaQuestion, 0, len(attempt.SelectedQuestionIDs))
	for _, id := range attempt.SelectedQuestionIDs {
		if q, ok := byID[id]; ok {
			out = append(out, q)
		}
	}
	return out
}

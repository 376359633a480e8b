package model

import (
	"time"

	"github.com/google/uuid"
)

// ViolationCounters is the per-category tally of integrity violations
// observed during one viva attempt.
type ViolationCounters struct {
	TabSwitches      int `json:"tab_switches"`
	WindowSwitches   int `json:"window_switches"`
	AIToolDetections int `json:"ai_tool_detections"`
	DevToolsAttempts int `json:"devtools_attempts"`
}

// Total returns the sum of all counters.
func (c ViolationCounters) Total() int {
	return c.TabSwitches + c.WindowSwitches + c.AIToolDetections + c.DevToolsAttempts
}

// VivaAttempt is the immutable record of one completed viva test.
// It is created exactly once per (student, experiment) pair and never
// updated or deleted by the application.
type VivaAttempt struct {
	ID                          uuid.UUID         `json:"id"`
	StudentID                   int               `json:"student_id"`
	ExperimentID                uuid.UUID         `json:"experiment_id"`
	Score                       int               `json:"score"`
	TotalQuestions              int               `json:"total_questions"`
	CompletedAt                 time.Time         `json:"completed_at"`
	Answers                     []int             `json:"answers"`
	SelectedQuestionIDs         []uuid.UUID       `json:"selected_question_ids"`
	SecurityViolations          ViolationCounters `json:"security_violations"`
	AIToolsDetected             []string          `json:"ai_tools_detected"`
	AutoSubmittedDueToViolation bool              `json:"auto_submitted_due_to_violation"`
	ViolationReason             *string           `json:"violation_reason,omitempty"`
}

// ViolationEvent is a single classified integrity violation, queued during
// the exam and persisted asynchronously for faculty audit.
type ViolationEvent struct {
	ID           int64     `json:"id"`
	ExperimentID uuid.UUID `json:"experiment_id"`
	StudentID    int       `json:"student_id"`
	Category     string    `json:"category"`
	Message      string    `json:"message"`
	RecordedAt   time.Time `json:"recorded_at"`
}

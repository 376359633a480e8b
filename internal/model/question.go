package model

import (
	"time"

	"github.com/google/uuid"
)

// VivaQuestion is a single multiple-choice question in an experiment's
// question bank. Options always has exactly four entries and CorrectOption
// is an index into it.
type VivaQuestion struct {
	ID            uuid.UUID `json:"id"`
	ExperimentID  uuid.UUID `json:"experiment_id"`
	QuestionText  string    `json:"question_text"`
	Options       []string  `json:"options"`
	CorrectOption int       `json:"correct_option"`
	FacultyID     int       `json:"faculty_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// QuestionForStudent is a question with the correct answer stripped,
// safe to send to an exam client.
type QuestionForStudent struct {
	ID           uuid.UUID `json:"id"`
	QuestionText string    `json:"question_text"`
	Options      []string  `json:"options"`
}

// ForStudent returns the answer-free projection of the question.
func (q VivaQuestion) ForStudent() QuestionForStudent {
	return QuestionForStudent{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		Options:      q.Options,
	}
}

// AddQuestionRequest is the payload for adding a question to an experiment's bank.
type AddQuestionRequest struct {
	QuestionText  string   `json:"question_text" binding:"required,min=1,max=2000"`
	Options       []string `json:"options" binding:"required,len=4,dive,required,max=500"`
	CorrectOption int      `json:"correct_option" binding:"min=0,max=3"`
}

// UpdateQuestionRequest is the payload for editing an existing question.
type UpdateQuestionRequest struct {
	QuestionText  string   `json:"question_text" binding:"required,min=1,max=2000"`
	Options       []string `json:"options" binding:"required,len=4,dive,required,max=500"`
	CorrectOption int      `json:"correct_option" binding:"min=0,max=3"`
}

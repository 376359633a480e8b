package model

import (
	"time"

	"github.com/google/uuid"
)

// Experiment represents a lab experiment created by a faculty member.
// ManualLink points at the externally hosted lab manual; the backend never
// stores binary content.
type Experiment struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ManualLink  string    `json:"manual_link"`
	FacultyID   int       `json:"faculty_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateExperimentRequest is the payload for creating a new experiment.
type CreateExperimentRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=255"`
	Description string `json:"description" binding:"omitempty,max=4000"`
	ManualLink  string `json:"manual_link" binding:"omitempty,url"`
}

// UpdateExperimentRequest is the payload for updating an existing experiment.
type UpdateExperimentRequest struct {
	Title       string `json:"title" binding:"omitempty,min=3,max=255"`
	Description string `json:"description" binding:"omitempty,max=4000"`
	ManualLink  string `json:"manual_link" binding:"omitempty,url"`
}

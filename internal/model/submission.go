package model

import (
	"time"

	"github.com/google/uuid"
)

// SubmissionStatus enumerates the review states of a submission.
type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "PENDING"
	SubmissionStatusApproved SubmissionStatus = "APPROVED"
	SubmissionStatusRejected SubmissionStatus = "REJECTED"
)

// Submission is a student's proof-of-work for an experiment: an external
// link (repo, doc, video) reviewed by the owning faculty member.
type Submission struct {
	ID             uuid.UUID        `json:"id"`
	StudentID      int              `json:"student_id"`
	ExperimentID   uuid.UUID        `json:"experiment_id"`
	SubmissionLink string           `json:"submission_link"`
	Status         SubmissionStatus `json:"status"`
	SubmittedAt    time.Time        `json:"submitted_at"`
	ReviewedAt     *time.Time       `json:"reviewed_at,omitempty"`
}

// CreateSubmissionRequest is the payload for a student submitting work.
type CreateSubmissionRequest struct {
	SubmissionLink string `json:"submission_link" binding:"required,url,max=2000"`
}

// ReviewSubmissionRequest is the payload for a faculty review decision.
type ReviewSubmissionRequest struct {
	Status SubmissionStatus `json:"status" binding:"required,oneof=APPROVED REJECTED"`
}

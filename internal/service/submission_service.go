package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/labworks/labviva-backend/internal/model"
	"github.com/labworks/labviva-backend/internal/repository"
)

// SubmissionService handles lab record submission business logic.
type SubmissionService struct {
	submissionRepo *repository.SubmissionRepository
	experimentSvc  *ExperimentService
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(submissionRepo *repository.SubmissionRepository, experimentSvc *ExperimentService) *SubmissionService {
	return &SubmissionService{submissionRepo: submissionRepo, experimentSvc: experimentSvc}
}

// Submit records a student's proof-of-work link for an experiment. A
// resubmission replaces the previous link and goes back to PENDING.
func (s *SubmissionService) Submit(ctx context.Context, studentID int, experimentID uuid.UUID, link string) (*model.Submission, error) {
	if _, err := s.experimentSvc.GetByID(ctx, experimentID); err != nil {
		return nil, err
	}
	sub := &model.Submission{
		ID:             uuid.New(),
		StudentID:      studentID,
		ExperimentID:   experimentID,
		SubmissionLink: link,
		Status:         model.SubmissionStatusPending,
	}
	if err := s.submissionRepo.Upsert(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// ListMine retrieves a student's own submissions.
func (s *SubmissionService) ListMine(ctx context.Context, studentID int) ([]model.Submission, error) {
	subs, err := s.submissionRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []model.Submission{}
	}
	return subs, nil
}

// ListPending retrieves submissions awaiting review on an owned experiment.
func (s *SubmissionService) ListPending(ctx context.Context, experimentID uuid.UUID, facultyID int) ([]model.Submission, error) {
	if _, err := s.experimentSvc.GetOwned(ctx, experimentID, facultyID); err != nil {
		return nil, err
	}
	subs, err := s.submissionRepo.ListPendingByExperiment(ctx, experimentID)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []model.Submission{}
	}
	return subs, nil
}

// Review applies a faculty decision to a pending submission.
func (s *SubmissionService) Review(ctx context.Context, submissionID uuid.UUID, facultyID int, status model.SubmissionStatus) (*model.Submission, error) {
	sub, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.experimentSvc.GetOwned(ctx, sub.ExperimentID, facultyID); err != nil {
		return nil, err
	}
	if err := s.submissionRepo.Review(ctx, submissionID, status); err != nil {
		return nil, err
	}
	return s.submissionRepo.GetByID(ctx, submissionID)
}

package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/labworks/labviva-backend/internal/model"
	"github.com/labworks/labviva-backend/internal/repository"
)

// ErrNotExperimentOwner is returned when a faculty member operates on an
// experiment they do not own.
var ErrNotExperimentOwner = errors.New("not the owner of this experiment")

// ExperimentService handles experiment business logic.
type ExperimentService struct {
	experimentRepo *repository.ExperimentRepository
}

// NewExperimentService creates a new ExperimentService.
func NewExperimentService(experimentRepo *repository.ExperimentRepository) *ExperimentService {
	return &ExperimentService{experimentRepo: experimentRepo}
}

// GetByID retrieves an experiment by ID.
func (s *ExperimentService) GetByID(ctx context.Context, id uuid.UUID) (*model.Experiment, error) {
	return s.experimentRepo.GetByID(ctx, id)
}

// GetOwned retrieves an experiment and verifies the faculty member owns it.
func (s *ExperimentService) GetOwned(ctx context.Context, id uuid.UUID, facultyID int) (*model.Experiment, error) {
	e, err := s.experimentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.FacultyID != facultyID {
		return nil, ErrNotExperimentOwner
	}
	return e, nil
}

// ListByFaculty retrieves a faculty member's experiments.
func (s *ExperimentService) ListByFaculty(ctx context.Context, facultyID int) ([]model.Experiment, error) {
	experiments, err := s.experimentRepo.ListByFaculty(ctx, facultyID)
	if err != nil {
		return nil, err
	}
	if experiments == nil {
		experiments = []model.Experiment{}
	}
	return experiments, nil
}

// ListAll retrieves every experiment for the student lab dashboard.
func (s *ExperimentService) ListAll(ctx context.Context) ([]model.Experiment, error) {
	experiments, err := s.experimentRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if experiments == nil {
		experiments = []model.Experiment{}
	}
	return experiments, nil
}

// Create inserts a new experiment owned by the faculty member.
func (s *ExperimentService) Create(ctx context.Context, facultyID int, req *model.CreateExperimentRequest) (*model.Experiment, error) {
	e := &model.Experiment{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		ManualLink:  req.ManualLink,
		FacultyID:   facultyID,
	}
	if err := s.experimentRepo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Update modifies an owned experiment.
func (s *ExperimentService) Update(ctx context.Context, id uuid.UUID, facultyID int, req *model.UpdateExperimentRequest) (*model.Experiment, error) {
	e, err := s.GetOwned(ctx, id, facultyID)
	if err != nil {
		return nil, err
	}
	e.Title = req.Title
	e.Description = req.Description
	e.ManualLink = req.ManualLink
	if err := s.experimentRepo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes an owned experiment.
func (s *ExperimentService) Delete(ctx context.Context, id uuid.UUID, facultyID int) error {
	if _, err := s.GetOwned(ctx, id, facultyID); err != nil {
		return err
	}
	return s.experimentRepo.Delete(ctx, id)
}

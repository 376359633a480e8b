package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/labworks/labviva-backend/internal/model"
	"github.com/labworks/labviva-backend/internal/repository"
)

// QuestionService handles viva question bank business logic. All mutations
// require ownership of the parent experiment.
type QuestionService struct {
	questionRepo  *repository.QuestionRepository
	experimentSvc *ExperimentService
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questionRepo *repository.QuestionRepository, experimentSvc *ExperimentService) *QuestionService {
	return &QuestionService{questionRepo: questionRepo, experimentSvc: experimentSvc}
}

// ListByExperiment retrieves the full bank for an owned experiment,
// including correct answers. Faculty view only.
func (s *QuestionService) ListByExperiment(ctx context.Context, experimentID uuid.UUID, facultyID int) ([]model.VivaQuestion, error) {
	if _, err := s.experimentSvc.GetOwned(ctx, experimentID, facultyID); err != nil {
		return nil, err
	}
	questions, err := s.questionRepo.QuestionsByExperiment(ctx, experimentID)
	if err != nil {
		return nil, err
	}
	if questions == nil {
		questions = []model.VivaQuestion{}
	}
	return questions, nil
}

// CountByExperiment returns how many questions an experiment's bank holds.
// Used by the student preflight view; no ownership check.
func (s *QuestionService) CountByExperiment(ctx context.Context, experimentID uuid.UUID) (int, error) {
	return s.questionRepo.CountByExperiment(ctx, experimentID)
}

// Add inserts a question into an owned experiment's bank.
func (s *QuestionService) Add(ctx context.Context, experimentID uuid.UUID, facultyID int, req *model.AddQuestionRequest) (*model.VivaQuestion, error) {
	if _, err := s.experimentSvc.GetOwned(ctx, experimentID, facultyID); err != nil {
		return nil, err
	}
	q := &model.VivaQuestion{
		ID:            uuid.New(),
		ExperimentID:  experimentID,
		QuestionText:  req.QuestionText,
		Options:       req.Options,
		CorrectOption: req.CorrectOption,
		FacultyID:     facultyID,
	}
	if err := s.questionRepo.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// Update modifies a question in an owned experiment's bank.
func (s *QuestionService) Update(ctx context.Context, id uuid.UUID, facultyID int, req *model.UpdateQuestionRequest) (*model.VivaQuestion, error) {
	q, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.experimentSvc.GetOwned(ctx, q.ExperimentID, facultyID); err != nil {
		return nil, err
	}
	q.QuestionText = req.QuestionText
	q.Options = req.Options
	q.CorrectOption = req.CorrectOption
	if err := s.questionRepo.Update(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// Delete removes a question from an owned experiment's bank.
func (s *QuestionService) Delete(ctx context.Context, id uuid.UUID, facultyID int) error {
	q, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.experimentSvc.GetOwned(ctx, q.ExperimentID, facultyID); err != nil {
		return err
	}
	return s.questionRepo.Delete(ctx, id)
}

package service

import (
	"context"

	"github.com/labworks/labviva-backend/internal/model"
	"github.com/labworks/labviva-backend/internal/repository"
)

// DashboardService assembles the faculty dashboard view.
type DashboardService struct {
	dashboardRepo *repository.DashboardRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(dashboardRepo *repository.DashboardRepository) *DashboardService {
	return &DashboardService{dashboardRepo: dashboardRepo}
}

// DashboardData is the full dashboard payload for one faculty member.
type DashboardData struct {
	TotalStudents    int                                 `json:"total_students"`
	TotalExperiments int                                 `json:"total_experiments"`
	TotalQuestions   int                                 `json:"total_questions"`
	TotalAttempts    int                                 `json:"total_attempts"`
	Submissions      map[model.SubmissionStatus]int      `json:"submissions"`
	Experiments      []repository.ExperimentAttemptStats `json:"experiments"`
}

// GetDashboard retrieves summary counts and per-experiment aggregates.
func (s *DashboardService) GetDashboard(ctx context.Context, facultyID int) (*DashboardData, error) {
	students, experiments, questions, attempts, err := s.dashboardRepo.GetSummaryCounts(ctx, facultyID)
	if err != nil {
		return nil, err
	}
	submissions, err := s.dashboardRepo.GetSubmissionStatusCounts(ctx, facultyID)
	if err != nil {
		return nil, err
	}
	stats, err := s.dashboardRepo.GetExperimentAttemptStats(ctx, facultyID)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []repository.ExperimentAttemptStats{}
	}

	return &DashboardData{
		TotalStudents:    students,
		TotalExperiments: experiments,
		TotalQuestions:   questions,
		TotalAttempts:    attempts,
		Submissions:      submissions,
		Experiments:      stats,
	}, nil
}

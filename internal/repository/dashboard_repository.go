package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labworks/labviva-backend/internal/model"
)

// DashboardRepository handles faculty dashboard data access.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// GetSummaryCounts retrieves the high-level metrics for a faculty member.
func (r *DashboardRepository) GetSummaryCounts(ctx context.Context, facultyID int) (totalStudents, totalExperiments, totalQuestions, totalAttempts int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM students WHERE faculty_id = $1),
			(SELECT COUNT(*) FROM experiments WHERE faculty_id = $1),
			(SELECT COUNT(*) FROM viva_questions WHERE faculty_id = $1),
			(SELECT COUNT(*) FROM viva_attempts a
			   JOIN experiments e ON e.id = a.experiment_id
			  WHERE e.faculty_id = $1)`,
		facultyID,
	).Scan(&totalStudents, &totalExperiments, &totalQuestions, &totalAttempts)
	return
}

// GetSubmissionStatusCounts retrieves the distribution of submissions by
// status across a faculty member's experiments.
func (r *DashboardRepository) GetSubmissionStatusCounts(ctx context.Context, facultyID int) (map[model.SubmissionStatus]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.status, COUNT(*) FROM submissions s
		   JOIN experiments e ON e.id = s.experiment_id
		  WHERE e.faculty_id = $1 GROUP BY s.status`,
		facultyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.SubmissionStatus]int)
	for rows.Next() {
		var status model.SubmissionStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// ExperimentAttemptStats aggregates viva outcomes for one experiment.
type ExperimentAttemptStats struct {
	ExperimentID uuid.UUID `json:"experiment_id"`
	Title        string    `json:"title"`
	AttemptCount int       `json:"attempt_count"`
	AverageScore float64   `json:"average_score"`
	Terminated   int       `json:"terminated"`
}

// GetExperimentAttemptStats retrieves per-experiment viva aggregates for a
// faculty member.
func (r *DashboardRepository) GetExperimentAttemptStats(ctx context.Context, facultyID int) ([]ExperimentAttemptStats, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT e.id, e.title,
		        COUNT(a.id),
		        COALESCE(AVG(a.score), 0),
		        COUNT(a.id) FILTER (WHERE a.auto_submitted)
		 FROM experiments e
		 LEFT JOIN viva_attempts a ON a.experiment_id = e.id
		 WHERE e.faculty_id = $1
		 GROUP BY e.id, e.title
		 ORDER BY e.created_at`,
		facultyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []ExperimentAttemptStats
	for rows.Next() {
		var s ExperimentAttemptStats
		if err := rows.Scan(&s.ExperimentID, &s.Title, &s.AttemptCount, &s.AverageScore, &s.Terminated); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labworks/labviva-backend/internal/model"
)

var ErrSubmissionNotPending = errors.New("submission is not pending review")

// SubmissionRepository handles lab record submission data access.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// GetByID retrieves a submission by ID.
func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	s := &model.Submission{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, student_id, experiment_id, submission_link, status, submitted_at, reviewed_at
		 FROM submissions WHERE id = $1`, id,
	).Scan(&s.ID, &s.StudentID, &s.ExperimentID, &s.SubmissionLink, &s.Status, &s.SubmittedAt, &s.ReviewedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByStudentAndExperiment retrieves the submission for a pair, or nil.
func (r *SubmissionRepository) GetByStudentAndExperiment(ctx context.Context, studentID int, experimentID uuid.UUID) (*model.Submission, error) {
	s := &model.Submission{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, student_id, experiment_id, submission_link, status, submitted_at, reviewed_at
		 FROM submissions WHERE student_id = $1 AND experiment_id = $2`,
		studentID, experimentID,
	).Scan(&s.ID, &s.StudentID, &s.ExperimentID, &s.SubmissionLink, &s.Status, &s.SubmittedAt, &s.ReviewedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// ListByStudent retrieves all submissions for a student, newest first.
func (r *SubmissionRepository) ListByStudent(ctx context.Context, studentID int) ([]model.Submission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, experiment_id, submission_link, status, submitted_at, reviewed_at
		 FROM submissions WHERE student_id = $1 ORDER BY submitted_at DESC`, studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubmissions(rows)
}

// ListPendingByExperiment retrieves submissions awaiting faculty review.
func (r *SubmissionRepository) ListPendingByExperiment(ctx context.Context, experimentID uuid.UUID) ([]model.Submission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, experiment_id, submission_link, status, submitted_at, reviewed_at
		 FROM submissions WHERE experiment_id = $1 AND status = $2 ORDER BY submitted_at`,
		experimentID, model.SubmissionStatusPending,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubmissions(rows)
}

func scanSubmissions(rows pgx.Rows) ([]model.Submission, error) {
	var submissions []model.Submission
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(&s.ID, &s.StudentID, &s.ExperimentID, &s.SubmissionLink, &s.Status, &s.SubmittedAt, &s.ReviewedAt); err != nil {
			return nil, err
		}
		submissions = append(submissions, s)
	}
	return submissions, rows.Err()
}

// Upsert inserts a submission or, when the student resubmits, replaces the
// link and resets the status to PENDING.
func (r *SubmissionRepository) Upsert(ctx context.Context, s *model.Submission) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO submissions (id, student_id, experiment_id, submission_link, status)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (student_id, experiment_id)
		 DO UPDATE SET submission_link = EXCLUDED.submission_link,
		               status = EXCLUDED.status,
		               submitted_at = CURRENT_TIMESTAMP,
		               reviewed_at = NULL
		 RETURNING id, submitted_at`,
		s.ID, s.StudentID, s.ExperimentID, s.SubmissionLink, model.SubmissionStatusPending,
	).Scan(&s.ID, &s.SubmittedAt)
}

// Review sets the terminal status on a pending submission. Fails with
// ErrSubmissionNotPending when it was already reviewed.
func (r *SubmissionRepository) Review(ctx context.Context, id uuid.UUID, status model.SubmissionStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE submissions SET status = $1, reviewed_at = CURRENT_TIMESTAMP
		 WHERE id = $2 AND status = $3`,
		status, id, model.SubmissionStatusPending,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSubmissionNotPending
	}
	return nil
}

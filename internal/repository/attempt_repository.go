package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labworks/labviva-backend/internal/model"
	"github.com/labworks/labviva-backend/internal/viva"
)

// AttemptRepository persists completed viva attempts. Attempts are
// insert-only: the application never updates or deletes a row.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// Create inserts a completed attempt. The UNIQUE (student_id, experiment_id)
// constraint is the last line of defense against duplicate attempts; a
// constraint hit maps to viva.ErrAlreadyAttempted.
func (r *AttemptRepository) Create(ctx context.Context, a *model.VivaAttempt) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO viva_attempts
		   (id, student_id, experiment_id, score, total_questions, completed_at,
		    answers, selected_question_ids, security_violations, ai_tools_detected,
		    auto_submitted, violation_reason)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		a.ID, a.StudentID, a.ExperimentID, a.Score, a.TotalQuestions, a.CompletedAt,
		a.Answers, a.SelectedQuestionIDs, a.SecurityViolations, a.AIToolsDetected,
		a.AutoSubmittedDueToViolation, a.ViolationReason,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return viva.ErrAlreadyAttempted
		}
		return err
	}
	return nil
}

// GetByStudentAndExperiment retrieves the attempt for the pair, or nil when
// none exists.
func (r *AttemptRepository) GetByStudentAndExperiment(ctx context.Context, studentID int, experimentID uuid.UUID) (*model.VivaAttempt, error) {
	a := &model.VivaAttempt{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, student_id, experiment_id, score, total_questions, completed_at,
		        answers, selected_question_ids, security_violations, ai_tools_detected,
		        auto_submitted, violation_reason
		 FROM viva_attempts WHERE student_id = $1 AND experiment_id = $2`,
		studentID, experimentID,
	).Scan(&a.ID, &a.StudentID, &a.ExperimentID, &a.Score, &a.TotalQuestions, &a.CompletedAt,
		&a.Answers, &a.SelectedQuestionIDs, &a.SecurityViolations, &a.AIToolsDetected,
		&a.AutoSubmittedDueToViolation, &a.ViolationReason)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// ListByStudent retrieves all attempts for a student, newest first.
func (r *AttemptRepository) ListByStudent(ctx context.Context, studentID int) ([]model.VivaAttempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, experiment_id, score, total_questions, completed_at,
		        answers, selected_question_ids, security_violations, ai_tools_detected,
		        auto_submitted, violation_reason
		 FROM viva_attempts WHERE student_id = $1 ORDER BY completed_at DESC`, studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAttempts(rows)
}

// ListByExperiment retrieves all attempts for an experiment, newest first.
func (r *AttemptRepository) ListByExperiment(ctx context.Context, experimentID uuid.UUID) ([]model.VivaAttempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, experiment_id, score, total_questions, completed_at,
		        answers, selected_question_ids, security_violations, ai_tools_detected,
		        auto_submitted, violation_reason
		 FROM viva_attempts WHERE experiment_id = $1 ORDER BY completed_at DESC`, experimentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAttempts(rows)
}

func scanAttempts(rows pgx.Rows) ([]model.VivaAttempt, error) {
	var attempts []model.VivaAttempt
	for rows.Next() {
		var a model.VivaAttempt
		if err := rows.Scan(&a.ID, &a.StudentID, &a.ExperimentID, &a.Score, &a.TotalQuestions, &a.CompletedAt,
			&a.Answers, &a.SelectedQuestionIDs, &a.SecurityViolations, &a.AIToolsDetected,
			&a.AutoSubmittedDueToViolation, &a.ViolationReason); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

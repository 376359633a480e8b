package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labworks/labviva-backend/internal/model"
)

var ErrExperimentHasDependents = errors.New("experiment has dependent records")

// ExperimentRepository handles experiment data access.
type ExperimentRepository struct {
	pool *pgxpool.Pool
}

// NewExperimentRepository creates a new ExperimentRepository.
func NewExperimentRepository(pool *pgxpool.Pool) *ExperimentRepository {
	return &ExperimentRepository{pool: pool}
}

// GetByID retrieves an experiment by ID.
func (r *ExperimentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Experiment, error) {
	e := &model.Experiment{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, manual_link, faculty_id, created_at, updated_at
		 FROM experiments WHERE id = $1`, id,
	).Scan(&e.ID, &e.Title, &e.Description, &e.ManualLink, &e.FacultyID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListByFaculty retrieves all experiments owned by a faculty member.
func (r *ExperimentRepository) ListByFaculty(ctx context.Context, facultyID int) ([]model.Experiment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, manual_link, faculty_id, created_at, updated_at
		 FROM experiments WHERE faculty_id = $1 ORDER BY created_at`, facultyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var experiments []model.Experiment
	for rows.Next() {
		var e model.Experiment
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.ManualLink, &e.FacultyID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		experiments = append(experiments, e)
	}
	return experiments, rows.Err()
}

// ListAll retrieves every experiment, for the student's lab dashboard.
func (r *ExperimentRepository) ListAll(ctx context.Context) ([]model.Experiment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, manual_link, faculty_id, created_at, updated_at
		 FROM experiments ORDER BY created_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var experiments []model.Experiment
	for rows.Next() {
		var e model.Experiment
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.ManualLink, &e.FacultyID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		experiments = append(experiments, e)
	}
	return experiments, rows.Err()
}

// Create inserts a new experiment.
func (r *ExperimentRepository) Create(ctx context.Context, e *model.Experiment) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO experiments (id, title, description, manual_link, faculty_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`,
		e.ID, e.Title, e.Description, e.ManualLink, e.FacultyID,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
}

// Update modifies an experiment.
func (r *ExperimentRepository) Update(ctx context.Context, e *model.Experiment) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE experiments SET title = $1, description = $2, manual_link = $3, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $4`,
		e.Title, e.Description, e.ManualLink, e.ID,
	)
	return err
}

// Delete removes an experiment. Fails when attempts or submissions reference it.
func (r *ExperimentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM experiments WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrExperimentHasDependents
		}
		return err
	}
	return nil
}

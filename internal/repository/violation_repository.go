package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labworks/labviva-backend/internal/model"
)

// ViolationRepository persists the integrity violation audit trail.
type ViolationRepository struct {
	pool *pgxpool.Pool
}

// NewViolationRepository creates a new ViolationRepository.
func NewViolationRepository(pool *pgxpool.Pool) *ViolationRepository {
	return &ViolationRepository{pool: pool}
}

// BulkCreate inserts a batch of violation events in one round trip.
func (r *ViolationRepository) BulkCreate(ctx context.Context, events []model.ViolationEvent) (int64, error) {
	return r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"viva_violation_events"},
		[]string{"experiment_id", "student_id", "category", "message", "recorded_at"},
		pgx.CopyFromSlice(len(events), func(i int) ([]interface{}, error) {
			e := events[i]
			return []interface{}{e.ExperimentID, e.StudentID, e.Category, e.Message, e.RecordedAt}, nil
		}),
	)
}

// Create inserts a single violation event. Fallback path when a bulk
// insert fails part-way.
func (r *ViolationRepository) Create(ctx context.Context, e *model.ViolationEvent) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO viva_violation_events (experiment_id, student_id, category, message, recorded_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		e.ExperimentID, e.StudentID, e.Category, e.Message, e.RecordedAt,
	).Scan(&e.ID)
}

// ListByExperimentAndStudent retrieves a student's violation history for an
// experiment in chronological order.
func (r *ViolationRepository) ListByExperimentAndStudent(ctx context.Context, experimentID uuid.UUID, studentID int) ([]model.ViolationEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, experiment_id, student_id, category, message, recorded_at
		 FROM viva_violation_events
		 WHERE experiment_id = $1 AND student_id = $2
		 ORDER BY recorded_at`,
		experimentID, studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.ViolationEvent
	for rows.Next() {
		var e model.ViolationEvent
		if err := rows.Scan(&e.ID, &e.ExperimentID, &e.StudentID, &e.Category, &e.Message, &e.RecordedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

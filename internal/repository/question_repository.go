package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labworks/labviva-backend/internal/model"
)

// QuestionRepository handles viva question bank data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// GetByID retrieves a question by ID.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.VivaQuestion, error) {
	q := &model.VivaQuestion{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, experiment_id, question_text, options, correct_option, faculty_id, created_at, updated_at
		 FROM viva_questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.ExperimentID, &q.QuestionText, &q.Options, &q.CorrectOption, &q.FacultyID, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// QuestionsByExperiment retrieves the full question bank for an experiment,
// in insertion order. The sampler depends on this order being stable.
func (r *QuestionRepository) QuestionsByExperiment(ctx context.Context, experimentID uuid.UUID) ([]model.VivaQuestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, experiment_id, question_text, options, correct_option, faculty_id, created_at, updated_at
		 FROM viva_questions WHERE experiment_id = $1 ORDER BY created_at, id`, experimentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.VivaQuestion
	for rows.Next() {
		var q model.VivaQuestion
		if err := rows.Scan(&q.ID, &q.ExperimentID, &q.QuestionText, &q.Options, &q.CorrectOption, &q.FacultyID, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// CountByExperiment returns the bank size for an experiment.
func (r *QuestionRepository) CountByExperiment(ctx context.Context, experimentID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM viva_questions WHERE experiment_id = $1`, experimentID,
	).Scan(&count)
	return count, err
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.VivaQuestion) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO viva_questions (id, experiment_id, question_text, options, correct_option, faculty_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`,
		q.ID, q.ExperimentID, q.QuestionText, q.Options, q.CorrectOption, q.FacultyID,
	).Scan(&q.CreatedAt, &q.UpdatedAt)
}

// Update modifies a question.
func (r *QuestionRepository) Update(ctx context.Context, q *model.VivaQuestion) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE viva_questions SET question_text = $1, options = $2, correct_option = $3, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $4`,
		q.QuestionText, q.Options, q.CorrectOption, q.ID,
	)
	return err
}

// Delete removes a question by ID.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM viva_questions WHERE id = $1`, id)
	return err
}

package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labworks/labviva-backend/internal/model"
)

var ErrDuplicateRollNo = errors.New("student with this roll number already exists")

// StudentRepository handles student data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// GetByID retrieves a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id int) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, roll_no, name, email, section, faculty_id, password_hash, password_changed, created_at, updated_at
		 FROM students WHERE id = $1`, id,
	).Scan(&s.ID, &s.RollNo, &s.Name, &s.Email, &s.Section, &s.FacultyID, &s.PasswordHash, &s.PasswordChanged, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByRollNo retrieves a student by their unique roll number.
func (r *StudentRepository) GetByRollNo(ctx context.Context, rollNo string) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, roll_no, name, email, section, faculty_id, password_hash, password_changed, created_at, updated_at
		 FROM students WHERE roll_no = $1`, rollNo,
	).Scan(&s.ID, &s.RollNo, &s.Name, &s.Email, &s.Section, &s.FacultyID, &s.PasswordHash, &s.PasswordChanged, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListPaginated retrieves students with pagination and optional section filter.
func (r *StudentRepository) ListPaginated(ctx context.Context, facultyID int, section *string, limit, offset int) ([]model.Student, int, error) {
	countQuery := `SELECT COUNT(*) FROM students WHERE faculty_id = $1`
	countArgs := []interface{}{facultyID}
	if section != nil {
		countQuery += ` AND section = $2`
		countArgs = append(countArgs, *section)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, roll_no, name, email, section, faculty_id, password_hash, password_changed, created_at, updated_at
	 FROM students WHERE faculty_id = $1`
	args := []interface{}{facultyID}
	argIdx := 2

	if section != nil {
		query += ` AND section = $2`
		args = append(args, *section)
		argIdx++
	}

	query += ` ORDER BY roll_no LIMIT $` + strconv.Itoa(argIdx) + ` OFFSET $` + strconv.Itoa(argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.RollNo, &s.Name, &s.Email, &s.Section, &s.FacultyID, &s.PasswordHash, &s.PasswordChanged, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		students = append(students, s)
	}
	return students, total, rows.Err()
}

// Create inserts a new student.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO students (roll_no, name, email, section, faculty_id, password_hash, password_changed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		s.RollNo, s.Name, s.Email, s.Section, s.FacultyID, s.PasswordHash, s.PasswordChanged,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateRollNo
		}
		return err
	}
	return nil
}

// BulkCreate inserts many students in one round trip. Used by the seeder.
func (r *StudentRepository) BulkCreate(ctx context.Context, students []model.Student) (int64, error) {
	return r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"students"},
		[]string{"roll_no", "name", "email", "section", "faculty_id", "password_hash", "password_changed"},
		pgx.CopyFromSlice(len(students), func(i int) ([]interface{}, error) {
			s := students[i]
			return []interface{}{s.RollNo, s.Name, s.Email, s.Section, s.FacultyID, s.PasswordHash, s.PasswordChanged}, nil
		}),
	)
}

// Update modifies a student's basic info (excluding password).
func (r *StudentRepository) Update(ctx context.Context, s *model.Student) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE students SET roll_no = $1, name = $2, email = $3, section = $4, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $5`,
		s.RollNo, s.Name, s.Email, s.Section, s.ID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateRollNo
		}
		return err
	}
	return nil
}

// UpdatePassword updates a student's password hash and marks it changed.
func (r *StudentRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE students SET password_hash = $1, password_changed = TRUE, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		passwordHash, id,
	)
	return err
}

// Delete removes a student by ID.
func (r *StudentRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	return err
}

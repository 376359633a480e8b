package service

import (
	"context"

	"github.com/labworks/labviva-backend/internal/model"
	"github.com/labworks/labviva-backend/internal/repository"
	"github.com/labworks/labviva-backend/internal/response"
)

// StudentService handles student business logic.
type StudentService struct {
	studentRepo *repository.StudentRepository
	authService *AuthService
}

// NewStudentService creates a new StudentService.
func NewStudentService(studentRepo *repository.StudentRepository, authService *AuthService) *StudentService {
	return &StudentService{studentRepo: studentRepo, authService: authService}
}

// GetByID retrieves a student by ID.
func (s *StudentService) GetByID(ctx context.Context, id int) (*model.Student, error) {
	return s.studentRepo.GetByID(ctx, id)
}

// GetByRollNo retrieves a student by their roll number.
func (s *StudentService) GetByRollNo(ctx context.Context, rollNo string) (*model.Student, error) {
	return s.studentRepo.GetByRollNo(ctx, rollNo)
}

// ListStudents retrieves a faculty member's students with pagination and
// optional section filter.
func (s *StudentService) ListStudents(ctx context.Context, facultyID int, section *string, page, perPage int) ([]model.Student, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	limit := perPage
	offset := (page - 1) * perPage

	students, total, err := s.studentRepo.ListPaginated(ctx, facultyID, section, limit, offset)
	if err != nil {
		return nil, nil, err
	}

	if students == nil {
		students = []model.Student{}
	}

	totalPages := (total + perPage - 1) / perPage

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	}

	return students, pagination, nil
}

// Create inserts a new student. The roll number doubles as the initial
// password until the student changes it.
func (s *StudentService) Create(ctx context.Context, student *model.Student, initialPassword string) error {
	hashed, err := s.authService.HashPassword(initialPassword)
	if err != nil {
		return err
	}
	student.PasswordHash = hashed
	student.PasswordChanged = false
	return s.studentRepo.Create(ctx, student)
}

// Update modifies a student's basic details.
func (s *StudentService) Update(ctx context.Context, student *model.Student) error {
	return s.studentRepo.Update(ctx, student)
}

// ChangePassword verifies the current password and sets a new one.
func (s *StudentService) ChangePassword(ctx context.Context, studentID int, currentPassword, newPassword string) error {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return err
	}
	if err := s.authService.CheckPassword(student.PasswordHash, currentPassword); err != nil {
		return err
	}
	hashed, err := s.authService.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.studentRepo.UpdatePassword(ctx, studentID, hashed)
}

// Delete removes a student.
func (s *StudentService) Delete(ctx context.Context, id int) error {
	return s.studentRepo.Delete(ctx, id)
}

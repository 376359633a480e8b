package service

import (
	"context"

	"github.com/labworks/labviva-backend/internal/model"
	"github.com/labworks/labviva-backend/internal/repository"
)

// FacultyService handles faculty account business logic.
type FacultyService struct {
	facultyRepo *repository.FacultyRepository
	authService *AuthService
}

// NewFacultyService creates a new FacultyService.
func NewFacultyService(facultyRepo *repository.FacultyRepository, authService *AuthService) *FacultyService {
	return &FacultyService{facultyRepo: facultyRepo, authService: authService}
}

// GetByID retrieves a faculty member by ID.
func (s *FacultyService) GetByID(ctx context.Context, id int) (*model.Faculty, error) {
	return s.facultyRepo.GetByID(ctx, id)
}

// GetByEmail retrieves a faculty member by email.
func (s *FacultyService) GetByEmail(ctx context.Context, email string) (*model.Faculty, error) {
	return s.facultyRepo.GetByEmail(ctx, email)
}

// Create inserts a new faculty account with a hashed password. Used by the
// create-faculty command; there is no self-service signup.
func (s *FacultyService) Create(ctx context.Context, faculty *model.Faculty, password string) error {
	hashed, err := s.authService.HashPassword(password)
	if err != nil {
		return err
	}
	faculty.PasswordHash = hashed
	return s.facultyRepo.Create(ctx, faculty)
}

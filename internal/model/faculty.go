package model

import "time"

// Faculty represents a faculty user who owns experiments, question banks,
// and the students assigned to them.
type Faculty struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Department   string    `json:"department"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FacultyLoginRequest is the payload for faculty authentication.
type FacultyLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// FacultyLoginResponse is returned after successful faculty login.
type FacultyLoginResponse struct {
	Token   string  `json:"token"`
	Faculty Faculty `json:"faculty"`
}

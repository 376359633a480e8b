package model

import "time"

// Student represents a student user managed by a faculty member.
type Student struct {
	ID              int       `json:"id"`
	RollNo          string    `json:"roll_no"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Section         string    `json:"section"`
	FacultyID       int       `json:"faculty_id"`
	PasswordHash    string    `json:"-"`
	PasswordChanged bool      `json:"password_changed"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// StudentLoginRequest is the payload for student authentication.
type StudentLoginRequest struct {
	RollNo   string `json:"roll_no" binding:"required,min=2,max=30"`
	Password string `json:"password" binding:"required,min=4,max=128"`
}

// StudentLoginResponse is returned after successful student login.
type StudentLoginResponse struct {
	Token   string  `json:"token"`
	Student Student `json:"student"`
}

// CreateStudentRequest is the payload for a faculty member creating a student.
// The account starts with the configured default password and password_changed=false.
type CreateStudentRequest struct {
	RollNo  string `json:"roll_no" binding:"required,min=2,max=30"`
	Name    string `json:"name" binding:"required,min=2,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Section string `json:"section" binding:"required,min=1,max=20"`
}

// UpdateStudentRequest is the payload for updating an existing student.
type UpdateStudentRequest struct {
	RollNo  string `json:"roll_no" binding:"required,min=2,max=30"`
	Name    string `json:"name" binding:"required,min=2,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Section string `json:"section" binding:"required,min=1,max=20"`
}

// ChangePasswordRequest is the payload for a student changing their own password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required,min=4,max=128"`
	NewPassword     string `json:"new_password" binding:"required,min=6,max=128"`
}

package models

import "time"

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"      validate:"omitempty,min=1,max=100"`
	Role     *string `json:"role,omitempty"      validate:"omitempty,oneof=admin editor"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// CreateUserRequest is an admin adding an account. IsActive defaults to true.
type CreateUserRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	Name     string `json:"name"      validate:"required,max=100"`
	Password string `json:"password"  validate:"required,min=8"`
	Role     string `json:"role"      validate:"required,oneof=admin editor"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

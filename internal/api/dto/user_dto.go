package dto

import (
	"time"

	"github.com/spec-kit/ops-portal/internal/domain"
)

// LoginRequest payload for login by employee id.
type LoginRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// PasswordChangeRequest payload for authenticated password changes.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// CreateUserRequest provisions an account.
type CreateUserRequest struct {
	EmployeeID string      `json:"employee_id" validate:"required,max=50"`
	Username   string      `json:"username" validate:"max=150"`
	FullName   string      `json:"full_name" validate:"required,max=200"`
	Role       domain.Role `json:"role" validate:"required,oneof=kitchen_staff kitchen_manager cluster_manager owner admin"`
	LocationID *string     `json:"location_id" validate:"omitempty,uuid"`
	Password   string      `json:"password" validate:"required,min=8"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID         string      `json:"id"`
	EmployeeID string      `json:"employee_id"`
	Username   string      `json:"username"`
	FullName   string      `json:"full_name"`
	Role       domain.Role `json:"role"`
	LocationID *string     `json:"location_id"`
	Active     bool        `json:"active"`
	CreatedAt  time.Time   `json:"created_at"`
}

// CreateLocationRequest payload.
type CreateLocationRequest struct {
	Code string `json:"code" validate:"required,max=20"`
	Name string `json:"name" validate:"required,max=200"`
}

// LocationResponse view.
type LocationResponse struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// AssignTerritoryRequest replaces a cluster manager's locations.
type AssignTerritoryRequest struct {
	LocationIDs []string `json:"location_ids" validate:"dive,uuid"`
}

// TerritoryResponse view.
type TerritoryResponse struct {
	UserID      string    `json:"user_id"`
	LocationIDs []string  `json:"location_ids"`
	UpdatedAt   time.Time `json:"updated_at"`
}

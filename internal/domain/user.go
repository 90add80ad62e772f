package domain

import "time"

// Role enumerates the portal roles.
type Role string

const (
	RoleKitchenStaff   Role = "kitchen_staff"
	RoleKitchenManager Role = "kitchen_manager"
	RoleClusterManager Role = "cluster_manager"
	RoleOwner          Role = "owner"
	RoleAdmin          Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleKitchenStaff, RoleKitchenManager, RoleClusterManager, RoleOwner, RoleAdmin:
		return true
	}
	return false
}

// User is an employee account. Users are deactivated, never deleted.
type User struct {
	ID           string
	EmployeeID   string
	Username     string
	FullName     string
	Role         Role
	LocationID   *string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayName prefers the full name and falls back to the username.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

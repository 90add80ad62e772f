package domain

import "time"

// Notification is an in-app message for a single user.
type Notification struct {
	ID        string
	UserID    string
	Message   string
	Link      string
	IsRead    bool
	CreatedAt time.Time
}

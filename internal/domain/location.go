package domain

import "time"

// UnknownLocationCode is stored on kitchen logs when no location can be derived.
const UnknownLocationCode = "UNKNOWN"

// Location is a kitchen site.
type Location struct {
	ID        string
	Code      string
	Name      string
	CreatedAt time.Time
}

// ClusterManagerProfile holds the territory of a cluster manager.
type ClusterManagerProfile struct {
	UserID      string
	LocationIDs []string
	UpdatedAt   time.Time
}

package domain

import "time"

// TicketHistory is an immutable audit trail entry written per transition.
type TicketHistory struct {
	ID         string
	TicketID   string
	ActorID    *string
	Action     string
	FromStatus TicketStatus
	ToStatus   TicketStatus
	Details    map[string]any
	CreatedAt  time.Time
}

package events

import (
	"time"

	"github.com/spec-kit/ops-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated      EventType = "ticket_created"
	EventTicketTransitioned EventType = "ticket_transitioned"
	EventKitchenLogCreated  EventType = "kitchen_log_created"
	EventImportCompleted    EventType = "import_completed"
)

// AllEventTypes lists every type, for subscribers that want everything.
var AllEventTypes = []EventType{
	EventTicketCreated,
	EventTicketTransitioned,
	EventKitchenLogCreated,
	EventImportCompleted,
}

// Actor identifies who caused an event.
type Actor struct {
	UserID string      `json:"user_id,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// ActorFrom builds an Actor from a user; nil yields the system actor.
func ActorFrom(user *domain.User) Actor {
	if user == nil {
		return Actor{}
	}
	return Actor{UserID: user.ID, Role: user.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SubjectID string    `json:"subject_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Number          string              `json:"number"`
	Status          domain.TicketStatus `json:"status"`
	Category        string              `json:"category"`
	EmployeeID      string              `json:"employee_id"`
	AssignedOwnerID *string             `json:"assigned_owner_id,omitempty"`
}

// TicketTransitionedPayload payload.
type TicketTransitionedPayload struct {
	Number          string              `json:"number"`
	Action          domain.TicketAction `json:"action"`
	FromStatus      domain.TicketStatus `json:"from_status"`
	ToStatus        domain.TicketStatus `json:"to_status"`
	EmployeeID      string              `json:"employee_id"`
	AssignedOwnerID *string             `json:"assigned_owner_id,omitempty"`
	ReassignedToID  *string             `json:"reassigned_to_id,omitempty"`
}

// KitchenLogCreatedPayload payload.
type KitchenLogCreatedPayload struct {
	StaffID      *string `json:"staff_id,omitempty"`
	EmpID        string  `json:"emp_id"`
	Category     string  `json:"category"`
	LocationCode string  `json:"location_code"`
}

// ImportCompletedPayload payload.
type ImportCompletedPayload struct {
	Kind    string   `json:"kind"`
	Created int      `json:"created"`
	Skipped []string `json:"skipped,omitempty"`
}

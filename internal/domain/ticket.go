package domain

import (
	"fmt"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "Pending"
	TicketStatusAssigned   TicketStatus = "Assigned"
	TicketStatusReassigned TicketStatus = "Reassigned"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusResolved   TicketStatus = "Resolved"
	TicketStatusClosed     TicketStatus = "Closed"
	TicketStatusRejected   TicketStatus = "Rejected"
)

// Terminal reports whether no further transitions leave s.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusClosed || s == TicketStatusRejected
}

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusPending, TicketStatusAssigned, TicketStatusReassigned, TicketStatusInProgress,
		TicketStatusResolved, TicketStatusClosed, TicketStatusRejected:
		return true
	}
	return false
}

// TicketAction names an operation on the ticket state machine.
type TicketAction string

const (
	ActionReassign     TicketAction = "reassign"
	ActionResolve      TicketAction = "resolve"
	ActionConfirm      TicketAction = "confirm"
	ActionClose        TicketAction = "close"
	ActionReject       TicketAction = "reject"
	ActionClusterClose TicketAction = "cluster_close"
)

// TicketNumberPrefix prefixes every ticket number.
const TicketNumberPrefix = "TIK-"

// FormatTicketNumber renders a counter value as TIK-NNNNN.
func FormatTicketNumber(seq int64) string {
	return fmt.Sprintf("%s%05d", TicketNumberPrefix, seq)
}

// Ticket is a raised concern routed to an owner.
//
// EmployeeCode and EmployeeName are snapshots taken at creation and are never
// refreshed from the live user record.
type Ticket struct {
	ID           string
	Number       string
	EmployeeID   string
	EmployeeCode string
	EmployeeName string
	RaisedByID   string
	LocationID   *string
	Concern      string
	Category     string
	Description  string
	MobileNumber string
	Status       TicketStatus

	AssignedOwnerID *string
	ReassignedToID  *string

	StaffRemarks       string
	OwnerRemarks       string
	OwnerCloserRemarks string
	ClosingRemarks     string
	RejectionReason    string
	RejectedByID       *string

	StaffConfirmed   bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ResolvedAt       *time.Time
	ClosedAt         *time.Time
	StaffConfirmedAt *time.Time
}

// RoutingCategory is the label used for owner routing.
func (t *Ticket) RoutingCategory() string {
	if t.Category != "" {
		return t.Category
	}
	return t.Concern
}

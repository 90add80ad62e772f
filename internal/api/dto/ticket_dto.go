package dto

import (
	"time"

	"github.com/spec-kit/ops-portal/internal/domain"
)

// SubmitTicketRequest payload. StaffID and LocationID raise on behalf of
// another employee.
type SubmitTicketRequest struct {
	Concern      string  `json:"concern" validate:"required,max=200"`
	Category     string  `json:"category" validate:"max=200"`
	Description  string  `json:"description" validate:"max=4000"`
	MobileNumber string  `json:"mobile_number" validate:"max=20"`
	StaffID      *string `json:"staff_id" validate:"omitempty,uuid"`
	LocationID   *string `json:"location_id" validate:"omitempty,uuid"`
}

// TransitionRequest carries the optional action payload.
type TransitionRequest struct {
	Remarks    string `json:"remarks" validate:"max=2000"`
	NewOwnerID string `json:"new_owner_id" validate:"omitempty,uuid"`
}

// TicketResponse is a ticket with its projected report fields.
type TicketResponse struct {
	ID                 string              `json:"id"`
	Number             string              `json:"number"`
	EmployeeID         string              `json:"employee_id"`
	EmployeeCode       string              `json:"employee_code"`
	EmployeeName       string              `json:"employee_name"`
	RaisedByID         string              `json:"raised_by_id"`
	LocationID         *string             `json:"location_id"`
	LocationName       string              `json:"location_name,omitempty"`
	Concern            string              `json:"concern"`
	Category           string              `json:"category"`
	Description        string              `json:"description"`
	MobileNumber       string              `json:"mobile_number,omitempty"`
	Status             domain.TicketStatus `json:"status"`
	AssignedOwnerID    *string             `json:"assigned_owner_id"`
	AssignedOwnerName  string              `json:"assigned_owner_name,omitempty"`
	ReassignedToID     *string             `json:"reassigned_to_id"`
	ReassignedInfo     string              `json:"reassigned_info,omitempty"`
	StaffRemarks       string              `json:"staff_remarks,omitempty"`
	OwnerRemarks       string              `json:"owner_remarks,omitempty"`
	RejectionReason    string              `json:"rejection_reason,omitempty"`
	StaffConfirmed     bool                `json:"staff_confirmed"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
	ResolvedAt         *time.Time          `json:"resolved_at"`
	ClosedAt           *time.Time          `json:"closed_at"`
	StaffConfirmedAt   *time.Time          `json:"staff_confirmed_at"`
	PendingDays        *int                `json:"pending_days,omitempty"`
	TimeToResolve      string              `json:"time_to_resolve,omitempty"`
	SLABreach          *bool               `json:"sla_breach,omitempty"`
	ConfirmPendingDays *int                `json:"confirm_pending_days,omitempty"`
}

// TicketHistoryResponse is one audit entry.
type TicketHistoryResponse struct {
	ID         string              `json:"id"`
	ActorID    *string             `json:"actor_id"`
	Action     string              `json:"action"`
	FromStatus domain.TicketStatus `json:"from_status,omitempty"`
	ToStatus   domain.TicketStatus `json:"to_status"`
	Details    map[string]any      `json:"details,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketResponse
	History []TicketHistoryResponse `json:"history"`
}

// TransitionResponse reports the ticket after an action.
type TransitionResponse struct {
	Ticket      TicketResponse `json:"ticket"`
	AlreadyDone bool           `json:"already_done"`
}

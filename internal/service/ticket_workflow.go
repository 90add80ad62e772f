package service

import (
	"strings"
	"time"

	"github.com/spec-kit/ops-portal/internal/domain"
	"github.com/spec-kit/ops-portal/internal/scope"
	apperrors "github.com/spec-kit/ops-portal/pkg/util"
)

const (
	defaultResolveRemarks = "Awaiting staff confirmation"
	defaultCloseRemarks   = "Closed by owner"
)

// TransitionInput carries the action payload. Only the fields an action
// reads are validated.
type TransitionInput struct {
	Remarks    string
	NewOwnerID string
}

// transitionContext is what a rule sees when it runs.
type transitionContext struct {
	actor  scope.Subject
	scope  scope.Scope
	ticket *domain.Ticket
	input  TransitionInput
	now    time.Time
	// newOwner is loaded by validate for reassign.
	newOwner *domain.User
}

type transitionRule struct {
	// from lists legal source states; nil means any non-terminal state.
	from []domain.TicketStatus
	to   domain.TicketStatus
	// terminalNoop makes a repeat of the action on a ticket already in to
	// return unchanged instead of failing.
	terminalNoop bool
	authorize    func(tc *transitionContext) bool
	validate     func(tc *transitionContext, lookup userLookup) error
	apply        func(tc *transitionContext)
}

// userLookup fetches users for validation.
type userLookup func(id string) (*domain.User, error)

var transitionRules = map[domain.TicketAction]transitionRule{
	domain.ActionReassign: {
		from:      []domain.TicketStatus{domain.TicketStatusPending, domain.TicketStatusAssigned},
		to:        domain.TicketStatusReassigned,
		authorize: actsAsOwner,
		validate:  validateReassign,
		apply: func(tc *transitionContext) {
			id := tc.newOwner.ID
			tc.ticket.AssignedOwnerID = &id
			tc.ticket.ReassignedToID = strPtr(id)
		},
	},
	domain.ActionResolve: {
		from: []domain.TicketStatus{domain.TicketStatusAssigned, domain.TicketStatusReassigned},
		to:   domain.TicketStatusResolved,
		authorize: func(tc *transitionContext) bool {
			if actsAsOwner(tc) {
				return true
			}
			user := tc.actor.User
			return user.Role == domain.RoleKitchenManager &&
				tc.ticket.ReassignedToID != nil && *tc.ticket.ReassignedToID == user.ID
		},
		apply: func(tc *transitionContext) {
			tc.ticket.OwnerRemarks = remarksOr(tc.input.Remarks, defaultResolveRemarks)
			now := tc.now
			tc.ticket.ResolvedAt = &now
		},
	},
	domain.ActionConfirm: {
		from:         []domain.TicketStatus{domain.TicketStatusResolved},
		to:           domain.TicketStatusClosed,
		terminalNoop: true,
		authorize: func(tc *transitionContext) bool {
			return tc.ticket.EmployeeID == tc.actor.User.ID
		},
		apply: func(tc *transitionContext) {
			now := tc.now
			tc.ticket.StaffConfirmed = true
			tc.ticket.StaffConfirmedAt = &now
			tc.ticket.ClosedAt = &now
			if remarks := strings.TrimSpace(tc.input.Remarks); remarks != "" {
				tc.ticket.StaffRemarks = remarks
			}
		},
	},
	domain.ActionClose: {
		to:           domain.TicketStatusClosed,
		terminalNoop: true,
		authorize:    actsAsOwner,
		apply: func(tc *transitionContext) {
			now := tc.now
			tc.ticket.OwnerCloserRemarks = remarksOr(tc.input.Remarks, defaultCloseRemarks)
			tc.ticket.ClosedAt = &now
		},
	},
	domain.ActionReject: {
		to:           domain.TicketStatusRejected,
		terminalNoop: true,
		authorize:    actsAsOwner,
		validate: func(tc *transitionContext, _ userLookup) error {
			if strings.TrimSpace(tc.input.Remarks) == "" {
				return apperrors.NewValidationError("rejection reason is required", map[string]any{"field": "remarks"})
			}
			return nil
		},
		apply: func(tc *transitionContext) {
			tc.ticket.RejectionReason = strings.TrimSpace(tc.input.Remarks)
			tc.ticket.RejectedByID = strPtr(tc.actor.User.ID)
		},
	},
	domain.ActionClusterClose: {
		from: []domain.TicketStatus{
			domain.TicketStatusPending,
			domain.TicketStatusAssigned,
			domain.TicketStatusReassigned,
			domain.TicketStatusInProgress,
			domain.TicketStatusResolved,
			domain.TicketStatusRejected,
		},
		to:           domain.TicketStatusClosed,
		terminalNoop: true,
		authorize: func(tc *transitionContext) bool {
			return tc.actor.User.Role == domain.RoleClusterManager &&
				tc.ticket.LocationID != nil && tc.scope.AllowsLocation(*tc.ticket.LocationID)
		},
		validate: func(tc *transitionContext, _ userLookup) error {
			if strings.TrimSpace(tc.input.Remarks) == "" {
				return apperrors.NewValidationError("closing remarks are required", map[string]any{"field": "remarks"})
			}
			return nil
		},
		apply: func(tc *transitionContext) {
			now := tc.now
			tc.ticket.ClosingRemarks = strings.TrimSpace(tc.input.Remarks)
			tc.ticket.ClosedAt = &now
		},
	},
}

// actsAsOwner holds for the assigned owner and for admins, who stand in for
// owners on tickets no owner could be routed to.
func actsAsOwner(tc *transitionContext) bool {
	user := tc.actor.User
	if user.Role == domain.RoleAdmin {
		return true
	}
	return tc.ticket.AssignedOwnerID != nil && *tc.ticket.AssignedOwnerID == user.ID
}

func validateReassign(tc *transitionContext, lookup userLookup) error {
	id := strings.TrimSpace(tc.input.NewOwnerID)
	if id == "" {
		return apperrors.NewValidationError("select a user to reassign to", map[string]any{"field": "new_owner_id"})
	}
	user, err := lookup(id)
	if err != nil {
		return err
	}
	if user == nil {
		return apperrors.NewValidationError("unknown reassignment target", map[string]any{"new_owner_id": id})
	}
	if !user.Active || (user.Role != domain.RoleOwner && user.Role != domain.RoleClusterManager) {
		return apperrors.NewValidationError("reassignment target must be an active owner or cluster manager",
			map[string]any{"new_owner_id": id})
	}
	tc.newOwner = user
	return nil
}

func (r transitionRule) allowsFrom(status domain.TicketStatus) bool {
	if r.from == nil {
		return !status.Terminal()
	}
	for _, s := range r.from {
		if s == status {
			return true
		}
	}
	return false
}

func remarksOr(remarks, fallback string) string {
	if trimmed := strings.TrimSpace(remarks); trimmed != "" {
		return trimmed
	}
	return fallback
}

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/ops-portal/internal/domain"
	"github.com/spec-kit/ops-portal/internal/events"
	"github.com/spec-kit/ops-portal/internal/report"
	"github.com/spec-kit/ops-portal/internal/repository"
	"github.com/spec-kit/ops-portal/internal/scope"
	apperrors "github.com/spec-kit/ops-portal/pkg/util"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	store     repository.Store
	resolver  *OwnerResolver
	events    publisher
	logger    *zap.Logger
	now       Clock
	reportLoc *time.Location
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Store          repository.Store
	Resolver       *OwnerResolver
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	Clock          Clock
	ReportLocation *time.Location
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := loggerOrNop(deps.Logger)
	now := clockOrNow(deps.Clock)
	resolver := deps.Resolver
	if resolver == nil {
		resolver = NewOwnerResolver(nil)
	}
	loc := deps.ReportLocation
	if loc == nil {
		loc = time.UTC
	}
	return &TicketService{
		store:     deps.Store,
		resolver:  resolver,
		events:    publisher{dispatcher: deps.Dispatcher, logger: logger, now: now},
		logger:    logger,
		now:       now,
		reportLoc: loc,
	}
}

// SubmitInput describes a new ticket. StaffID raises on behalf of another
// employee; LocationID overrides the derived location.
type SubmitInput struct {
	Concern      string
	Category     string
	Description  string
	MobileNumber string
	StaffID      *string
	LocationID   *string
}

// TicketListFilter holds explicit list filters layered over the actor scope.
type TicketListFilter struct {
	Statuses    []domain.TicketStatus
	AssignedTo  *string
	LocationID  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// TransitionResult reports the ticket after an action. AlreadyDone is set
// when the action had already taken effect and nothing changed.
type TransitionResult struct {
	Ticket      *domain.Ticket
	AlreadyDone bool
}

// TicketDetail is a single projected ticket with its audit trail.
type TicketDetail struct {
	Row     report.Row
	History []domain.TicketHistory
}

// Summary holds the admin dashboard counters.
type Summary struct {
	UsersTotal      int `json:"users_total"`
	UsersActive     int `json:"users_active"`
	UsersInactive   int `json:"users_inactive"`
	TicketsTotal    int `json:"tickets_total"`
	TicketsPending  int `json:"tickets_pending"`
	TicketsResolved int `json:"tickets_resolved"`
}

// SubmitTicket raises a ticket. Owner routing, numbering and the insert run
// in one transaction.
func (s *TicketService) SubmitTicket(ctx context.Context, actor scope.Subject, input SubmitInput) (*domain.Ticket, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	concern := strings.TrimSpace(input.Concern)
	if concern == "" {
		return nil, apperrors.NewValidationError("concern is required", map[string]any{"field": "concern"})
	}
	raiser := actor.User
	sc := scope.For(actor)

	employee, err := s.resolveEmployee(ctx, raiser, sc, input.StaffID)
	if err != nil {
		return nil, err
	}
	locationID, err := s.resolveLocation(ctx, raiser, employee, sc, input.LocationID)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		EmployeeID:   employee.ID,
		EmployeeCode: employee.EmployeeID,
		EmployeeName: employee.DisplayName(),
		RaisedByID:   raiser.ID,
		LocationID:   locationID,
		Concern:      concern,
		Category:     strings.TrimSpace(input.Category),
		Description:  strings.TrimSpace(input.Description),
		MobileNumber: strings.TrimSpace(input.MobileNumber),
		Status:       domain.TicketStatusPending,
	}

	err = s.store.InTx(ctx, func(tx repository.Store) error {
		owner, err := s.resolver.Resolve(ctx, tx.Users(), ticket.RoutingCategory())
		if err != nil {
			return fmt.Errorf("resolve owner: %w", err)
		}
		if owner != nil {
			ticket.AssignedOwnerID = strPtr(owner.ID)
			ticket.Status = domain.TicketStatusAssigned
		}
		seq, err := tx.Tickets().NextNumber(ctx)
		if err != nil {
			return fmt.Errorf("next ticket number: %w", err)
		}
		ticket.Number = domain.FormatTicketNumber(seq)
		if err := tx.Tickets().Create(ctx, ticket); err != nil {
			return err
		}
		return tx.History().Create(ctx, &domain.TicketHistory{
			TicketID: ticket.ID,
			ActorID:  strPtr(raiser.ID),
			Action:   "create",
			ToStatus: ticket.Status,
			Details:  map[string]any{"category": ticket.RoutingCategory(), "assigned_owner_id": ticket.AssignedOwnerID},
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if ticket.AssignedOwnerID == nil {
		s.logger.Warn("ticket left pending: no active owner", zap.String("ticket", ticket.Number))
	}
	s.events.publish(ctx, events.Event{
		Type:      events.EventTicketCreated,
		SubjectID: ticket.ID,
		Actor:     events.ActorFrom(raiser),
		Payload: events.TicketCreatedPayload{
			Number:          ticket.Number,
			Status:          ticket.Status,
			Category:        ticket.RoutingCategory(),
			EmployeeID:      ticket.EmployeeID,
			AssignedOwnerID: ticket.AssignedOwnerID,
		},
	})
	return ticket, nil
}

func (s *TicketService) resolveEmployee(ctx context.Context, raiser *domain.User, sc scope.Scope, staffID *string) (*domain.User, error) {
	if staffID == nil || *staffID == "" || *staffID == raiser.ID {
		return raiser, nil
	}
	if raiser.Role == domain.RoleKitchenStaff {
		return nil, apperrors.NewForbidden("kitchen staff cannot raise tickets for others")
	}
	employee, err := s.store.Users().GetByID(ctx, *staffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("unknown staff member", map[string]any{"staff_id": *staffID})
		}
		return nil, apperrors.MapError(err)
	}
	if !employee.Active {
		return nil, apperrors.NewValidationError("staff member is deactivated", map[string]any{"staff_id": *staffID})
	}
	if !sc.Global() && (employee.LocationID == nil || !sc.AllowsLocation(*employee.LocationID)) {
		return nil, apperrors.NewForbidden("staff member is outside your locations")
	}
	return employee, nil
}

func (s *TicketService) resolveLocation(ctx context.Context, raiser, employee *domain.User, sc scope.Scope, explicit *string) (*string, error) {
	if explicit != nil && *explicit != "" {
		if !sc.AllowsLocation(*explicit) {
			return nil, apperrors.NewForbidden("location is outside your scope")
		}
		if _, err := s.store.Locations().GetByID(ctx, *explicit); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewValidationError("unknown location", map[string]any{"location_id": *explicit})
			}
			return nil, apperrors.MapError(err)
		}
		return strPtr(*explicit), nil
	}
	if employee.LocationID != nil {
		return strPtr(*employee.LocationID), nil
	}
	if raiser.LocationID != nil {
		return strPtr(*raiser.LocationID), nil
	}
	return nil, nil
}

// Transition applies action to a ticket. Checks run in a fixed order: the
// ticket must exist, the actor must be entitled, a repeated terminal action
// is a no-op, the current state must allow the action, and the payload must
// be valid. Only then is the ticket changed.
func (s *TicketService) Transition(ctx context.Context, actor scope.Subject, ticketID string, action domain.TicketAction, input TransitionInput) (*TransitionResult, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	rule, ok := transitionRules[action]
	if !ok {
		return nil, apperrors.NewValidationError("unknown action", map[string]any{"action": action})
	}

	var result *TransitionResult
	var from domain.TicketStatus
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		ticket, err := tx.Tickets().GetByID(ctx, ticketID)
		if err != nil {
			return notFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
		}
		tc := &transitionContext{
			actor:  actor,
			scope:  scope.For(actor),
			ticket: ticket,
			input:  input,
			now:    s.now(),
		}
		if !rule.authorize(tc) {
			return apperrors.NewForbidden(fmt.Sprintf("not allowed to %s this ticket", action))
		}
		if rule.terminalNoop && ticket.Status == rule.to {
			result = &TransitionResult{Ticket: ticket, AlreadyDone: true}
			return nil
		}
		if !rule.allowsFrom(ticket.Status) {
			return apperrors.NewStateError(
				fmt.Sprintf("cannot %s a ticket in status %s", action, ticket.Status),
				map[string]any{"status": ticket.Status, "action": action},
			)
		}
		if rule.validate != nil {
			lookup := func(id string) (*domain.User, error) {
				user, err := tx.Users().GetByID(ctx, id)
				if errors.Is(err, pgx.ErrNoRows) {
					return nil, nil
				}
				return user, err
			}
			if err := rule.validate(tc, lookup); err != nil {
				return err
			}
		}

		from = ticket.Status
		rule.apply(tc)
		ticket.Status = rule.to
		if err := tx.Tickets().Update(ctx, ticket); err != nil {
			return err
		}
		if err := tx.History().Create(ctx, &domain.TicketHistory{
			TicketID:   ticket.ID,
			ActorID:    strPtr(actor.User.ID),
			Action:     string(action),
			FromStatus: from,
			ToStatus:   ticket.Status,
			Details:    historyDetails(action, ticket, input),
		}); err != nil {
			return err
		}
		result = &TransitionResult{Ticket: ticket}
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if result.AlreadyDone {
		return result, nil
	}

	t := result.Ticket
	s.events.publish(ctx, events.Event{
		Type:      events.EventTicketTransitioned,
		SubjectID: t.ID,
		Actor:     events.ActorFrom(actor.User),
		Payload: events.TicketTransitionedPayload{
			Number:          t.Number,
			Action:          action,
			FromStatus:      from,
			ToStatus:        t.Status,
			EmployeeID:      t.EmployeeID,
			AssignedOwnerID: t.AssignedOwnerID,
			ReassignedToID:  t.ReassignedToID,
		},
	})
	return result, nil
}

func historyDetails(action domain.TicketAction, t *domain.Ticket, input TransitionInput) map[string]any {
	details := map[string]any{}
	if remarks := strings.TrimSpace(input.Remarks); remarks != "" {
		details["remarks"] = remarks
	}
	if action == domain.ActionReassign && t.ReassignedToID != nil {
		details["reassigned_to_id"] = *t.ReassignedToID
	}
	return details
}

// GetTicket returns a ticket the actor can see. Tickets outside the actor's
// scope are reported as not found.
func (s *TicketService) GetTicket(ctx context.Context, actor scope.Subject, ticketID string) (*TicketDetail, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	ticket, err := s.store.Tickets().GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	if !scope.For(actor).CanSeeTicket(ticket) {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	rows, err := s.project(ctx, []domain.Ticket{*ticket})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	history, err := s.store.History().ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &TicketDetail{Row: rows[0], History: history}, nil
}

// ListTickets returns projected tickets within the actor's scope.
func (s *TicketService) ListTickets(ctx context.Context, actor scope.Subject, filter TicketListFilter) ([]report.Row, error) {
	tickets, err := s.listScoped(ctx, actor, filter)
	if err != nil {
		return nil, err
	}
	rows, err := s.project(ctx, tickets)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return rows, nil
}

// ExportTicketsCSV writes every matching ticket, ignoring pagination.
func (s *TicketService) ExportTicketsCSV(ctx context.Context, actor scope.Subject, filter TicketListFilter, w io.Writer) error {
	filter.Limit, filter.Offset = 0, 0
	rows, err := s.ListTickets(ctx, actor, filter)
	if err != nil {
		return err
	}
	return report.WriteTicketsCSV(w, rows, s.reportLoc)
}

func (s *TicketService) listScoped(ctx context.Context, actor scope.Subject, filter TicketListFilter) ([]domain.Ticket, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	ticketScope := scope.For(actor).Tickets()
	if ticketScope.IsEmpty() {
		return []domain.Ticket{}, nil
	}
	tickets, err := s.store.Tickets().List(ctx, repository.TicketFilter{
		Scope:       ticketScope,
		Statuses:    filter.Statuses,
		AssignedTo:  filter.AssignedTo,
		LocationID:  filter.LocationID,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

func (s *TicketService) project(ctx context.Context, tickets []domain.Ticket) ([]report.Row, error) {
	userIDs := map[string]struct{}{}
	for _, t := range tickets {
		if t.AssignedOwnerID != nil {
			userIDs[*t.AssignedOwnerID] = struct{}{}
		}
		if t.ReassignedToID != nil {
			userIDs[*t.ReassignedToID] = struct{}{}
		}
	}
	users, err := userNames(ctx, s.store.Users(), userIDs)
	if err != nil {
		return nil, err
	}
	locations, err := s.store.Locations().List(ctx)
	if err != nil {
		return nil, err
	}
	locationNames := make(map[string]string, len(locations))
	for _, l := range locations {
		locationNames[l.ID] = l.Name
	}
	return report.BuildRows(tickets, report.Names{Users: users, Locations: locationNames}, s.now(), s.reportLoc), nil
}

// ReassignCandidates lists the active users a ticket may be reassigned to.
func (s *TicketService) ReassignCandidates(ctx context.Context, actor scope.Subject) ([]domain.User, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	if actor.User.Role != domain.RoleOwner && actor.User.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("only owners can reassign tickets")
	}
	active := true
	users, err := s.store.Users().List(ctx, repository.UserFilter{
		Roles:  []domain.Role{domain.RoleOwner, domain.RoleClusterManager},
		Active: &active,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// Summary returns the admin dashboard counters.
func (s *TicketService) Summary(ctx context.Context, actor scope.Subject) (*Summary, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	active, inactive := true, false
	var summary Summary
	var err error
	counts := []struct {
		dst *int
		run func() (int, error)
	}{
		{&summary.UsersTotal, func() (int, error) { return s.store.Users().Count(ctx, repository.UserFilter{}) }},
		{&summary.UsersActive, func() (int, error) { return s.store.Users().Count(ctx, repository.UserFilter{Active: &active}) }},
		{&summary.UsersInactive, func() (int, error) { return s.store.Users().Count(ctx, repository.UserFilter{Active: &inactive}) }},
		{&summary.TicketsTotal, func() (int, error) { return s.countTickets(ctx) }},
		{&summary.TicketsPending, func() (int, error) { return s.countTickets(ctx, domain.TicketStatusPending) }},
		{&summary.TicketsResolved, func() (int, error) { return s.countTickets(ctx, domain.TicketStatusResolved) }},
	}
	for _, c := range counts {
		if *c.dst, err = c.run(); err != nil {
			return nil, apperrors.MapError(err)
		}
	}
	return &summary, nil
}

func (s *TicketService) countTickets(ctx context.Context, statuses ...domain.TicketStatus) (int, error) {
	return s.store.Tickets().Count(ctx, repository.TicketFilter{
		Scope:    repository.TicketScope{All: true},
		Statuses: statuses,
	})
}

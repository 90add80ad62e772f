package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ops-portal/internal/domain"
)

// TicketScope is a disjunction of visibility conditions. A ticket is visible
// when any set condition holds; a scope with nothing set matches no ticket.
type TicketScope struct {
	All             bool
	EmployeeID      *string
	RaisedByID      *string
	AssignedOwnerID *string
	ReassignedToID  *string
	LocationIDs     []string
}

// IsEmpty reports whether the scope can match nothing.
func (s TicketScope) IsEmpty() bool {
	return !s.All && s.EmployeeID == nil && s.RaisedByID == nil && s.AssignedOwnerID == nil &&
		s.ReassignedToID == nil && len(s.LocationIDs) == 0
}

// Matches evaluates the scope against a single ticket.
func (s TicketScope) Matches(t *domain.Ticket) bool {
	if s.All {
		return true
	}
	if s.EmployeeID != nil && t.EmployeeID == *s.EmployeeID {
		return true
	}
	if s.RaisedByID != nil && t.RaisedByID == *s.RaisedByID {
		return true
	}
	if s.AssignedOwnerID != nil && t.AssignedOwnerID != nil && *t.AssignedOwnerID == *s.AssignedOwnerID {
		return true
	}
	if s.ReassignedToID != nil && t.ReassignedToID != nil && *t.ReassignedToID == *s.ReassignedToID {
		return true
	}
	if len(s.LocationIDs) > 0 && t.LocationID != nil && containsString(s.LocationIDs, *t.LocationID) {
		return true
	}
	return false
}

func (s TicketScope) clause(args *[]any) string {
	if s.All {
		return "TRUE"
	}
	var ors []string
	add := func(column string, value any) {
		*args = append(*args, value)
		ors = append(ors, fmt.Sprintf("%s=$%d", column, len(*args)))
	}
	if s.EmployeeID != nil {
		add("employee_id", *s.EmployeeID)
	}
	if s.RaisedByID != nil {
		add("raised_by_id", *s.RaisedByID)
	}
	if s.AssignedOwnerID != nil {
		add("assigned_owner_id", *s.AssignedOwnerID)
	}
	if s.ReassignedToID != nil {
		add("reassigned_to_id", *s.ReassignedToID)
	}
	if len(s.LocationIDs) > 0 {
		*args = append(*args, s.LocationIDs)
		ors = append(ors, fmt.Sprintf("location_id = ANY($%d::uuid[])", len(*args)))
	}
	if len(ors) == 0 {
		return "FALSE"
	}
	return "(" + strings.Join(ors, " OR ") + ")"
}

// TicketFilter layers explicit filters on top of a visibility scope.
type TicketFilter struct {
	Scope    TicketScope
	Statuses []domain.TicketStatus
	// AssignedTo matches either the assigned owner or the reassignee.
	AssignedTo  *string
	LocationID  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// Matches evaluates scope and filters against a single ticket.
func (f TicketFilter) Matches(t *domain.Ticket) bool {
	if !f.Scope.Matches(t) {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, status := range f.Statuses {
			if t.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.AssignedTo != nil {
		owner := t.AssignedOwnerID != nil && *t.AssignedOwnerID == *f.AssignedTo
		reassigned := t.ReassignedToID != nil && *t.ReassignedToID == *f.AssignedTo
		if !owner && !reassigned {
			return false
		}
	}
	if f.LocationID != nil && (t.LocationID == nil || *t.LocationID != *f.LocationID) {
		return false
	}
	if f.CreatedFrom != nil && t.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && t.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	return true
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	// NextNumber increments the ticket counter. Call it inside the creation
	// transaction so a rollback returns the number.
	NextNumber(ctx context.Context) (int64, error)
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, number string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Count(ctx context.Context, filter TicketFilter) (int, error)
}

type ticketRepository struct {
	db DBTX
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db DBTX) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `id, number, employee_id, employee_code, employee_name, raised_by_id, location_id,
               concern, category, description, mobile_number, status, assigned_owner_id, reassigned_to_id,
               staff_remarks, owner_remarks, owner_closer_remarks, closing_remarks, rejection_reason, rejected_by_id,
               staff_confirmed, created_at, updated_at, resolved_at, closed_at, staff_confirmed_at`

func (r *ticketRepository) NextNumber(ctx context.Context) (int64, error) {
	const query = `UPDATE ticket_counters SET value = value + 1 WHERE name = 'ticket' RETURNING value`
	var value int64
	err := r.db.QueryRow(ctx, query).Scan(&value)
	return value, err
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (number, employee_id, employee_code, employee_name, raised_by_id, location_id,
            concern, category, description, mobile_number, status, assigned_owner_id, reassigned_to_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		ticket.Number,
		ticket.EmployeeID,
		ticket.EmployeeCode,
		ticket.EmployeeName,
		ticket.RaisedByID,
		ticket.LocationID,
		ticket.Concern,
		ticket.Category,
		ticket.Description,
		ticket.MobileNumber,
		ticket.Status,
		ticket.AssignedOwnerID,
		ticket.ReassignedToID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

// Update writes the mutable lifecycle columns. Number and the employee
// snapshot are never rewritten.
func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET status=$1, assigned_owner_id=$2, reassigned_to_id=$3, staff_remarks=$4,
            owner_remarks=$5, owner_closer_remarks=$6, closing_remarks=$7, rejection_reason=$8,
            rejected_by_id=$9, staff_confirmed=$10, resolved_at=$11, closed_at=$12, staff_confirmed_at=$13,
            updated_at=NOW()
        WHERE id=$14
        RETURNING updated_at`
	return r.db.QueryRow(ctx, query,
		ticket.Status,
		ticket.AssignedOwnerID,
		ticket.ReassignedToID,
		ticket.StaffRemarks,
		ticket.OwnerRemarks,
		ticket.OwnerCloserRemarks,
		ticket.ClosingRemarks,
		ticket.RejectionReason,
		ticket.RejectedByID,
		ticket.StaffConfirmed,
		ticket.ResolvedAt,
		ticket.ClosedAt,
		ticket.StaffConfirmedAt,
		ticket.ID,
	).Scan(&ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return scanTicket(r.db.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id))
}

func (r *ticketRepository) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	return scanTicket(r.db.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE number=$1`, number))
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	where, args := ticketWhere(filter)
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ` + where + ` ORDER BY created_at DESC, number DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *ticket)
	}
	return tickets, rows.Err()
}

func (r *ticketRepository) Count(ctx context.Context, filter TicketFilter) (int, error) {
	where, args := ticketWhere(filter)
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE `+where, args...).Scan(&count)
	return count, err
}

func ticketWhere(filter TicketFilter) (string, []any) {
	args := []any{}
	clauses := []string{filter.Scope.clause(&args)}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("(assigned_owner_id=$%[1]d OR reassigned_to_id=$%[1]d)", len(args)))
	}
	if filter.LocationID != nil {
		args = append(args, *filter.LocationID)
		clauses = append(clauses, fmt.Sprintf("location_id=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var t domain.Ticket
	if err := row.Scan(
		&t.ID,
		&t.Number,
		&t.EmployeeID,
		&t.EmployeeCode,
		&t.EmployeeName,
		&t.RaisedByID,
		&t.LocationID,
		&t.Concern,
		&t.Category,
		&t.Description,
		&t.MobileNumber,
		&t.Status,
		&t.AssignedOwnerID,
		&t.ReassignedToID,
		&t.StaffRemarks,
		&t.OwnerRemarks,
		&t.OwnerCloserRemarks,
		&t.ClosingRemarks,
		&t.RejectionReason,
		&t.RejectedByID,
		&t.StaffConfirmed,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.ResolvedAt,
		&t.ClosedAt,
		&t.StaffConfirmedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

package memory

import (
	"context"
	"sort"

	"github.com/spec-kit/ops-portal/internal/domain"
	"github.com/spec-kit/ops-portal/internal/repository"
)

type ticketRepo struct{ st *state }

func (r *ticketRepo) NextNumber(_ context.Context) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	r.st.d.counter++
	return r.st.d.counter, nil
}

func (r *ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, existing := range r.st.d.tickets {
		if existing.Number == ticket.Number {
			return repository.UniqueViolation("tickets_number_key")
		}
	}
	ticket.ID = newID()
	now := r.st.now()
	ticket.CreatedAt, ticket.UpdatedAt = now, now
	r.st.d.tickets[ticket.ID] = *ticket
	return nil
}

func (r *ticketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	existing, ok := r.st.d.tickets[ticket.ID]
	if !ok {
		return repository.ErrNotFound
	}
	updated := *ticket
	updated.Number = existing.Number
	updated.EmployeeID = existing.EmployeeID
	updated.EmployeeCode = existing.EmployeeCode
	updated.EmployeeName = existing.EmployeeName
	updated.RaisedByID = existing.RaisedByID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = r.st.now()
	r.st.d.tickets[ticket.ID] = updated
	ticket.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r *ticketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	ticket, ok := r.st.d.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ticket, nil
}

func (r *ticketRepo) GetByNumber(_ context.Context, number string) (*domain.Ticket, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, ticket := range r.st.d.tickets {
		if ticket.Number == number {
			t := ticket
			return &t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *ticketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.st.d.tickets {
		t := ticket
		if filter.Matches(&t) {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].Number > result[j].Number
	})
	return paginate(result, filter.Limit, filter.Offset), nil
}

func (r *ticketRepo) Count(ctx context.Context, filter repository.TicketFilter) (int, error) {
	filter.Limit, filter.Offset = 0, 0
	tickets, err := r.List(ctx, filter)
	return len(tickets), err
}

type historyRepo struct{ st *state }

func (r *historyRepo) Create(_ context.Context, history *domain.TicketHistory) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	history.ID = newID()
	history.CreatedAt = r.st.now()
	r.st.d.history = append(r.st.d.history, *history)
	return nil
}

func (r *historyRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketHistory, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var result []domain.TicketHistory
	for _, h := range r.st.d.history {
		if h.TicketID == ticketID {
			result = append(result, h)
		}
	}
	return result, nil
}

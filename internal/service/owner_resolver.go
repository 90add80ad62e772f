package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"golang.org/x/text/cases"

	"github.com/spec-kit/ops-portal/internal/domain"
	"github.com/spec-kit/ops-portal/internal/repository"
)

// OwnerResolver routes a concern category to the owner who handles it.
// The mapping is fixed at construction.
type OwnerResolver struct {
	mapping map[string]string
}

// NewOwnerResolver builds a resolver from category label to owner employee id.
func NewOwnerResolver(mapping map[string]string) *OwnerResolver {
	folded := make(map[string]string, len(mapping))
	for category, employeeID := range mapping {
		folded[foldCategory(category)] = strings.TrimSpace(employeeID)
	}
	return &OwnerResolver{mapping: folded}
}

// foldCategory normalizes a label for matching. Casers keep state, so each
// call gets its own.
func foldCategory(category string) string {
	return cases.Fold().String(strings.TrimSpace(category))
}

// MappedEmployeeID returns the configured owner employee id for category.
func (r *OwnerResolver) MappedEmployeeID(category string) (string, bool) {
	id, ok := r.mapping[foldCategory(category)]
	return id, ok && id != ""
}

// Resolve returns the owner for category: the mapped owner when it is an
// active user with the owner role, otherwise the active owner with the
// fewest assigned tickets (ties to the lowest id). It returns nil when no
// active owner exists. Pass the transaction-bound repository so the workload
// read shares the creating transaction.
func (r *OwnerResolver) Resolve(ctx context.Context, users repository.UserRepository, category string) (*domain.User, error) {
	if employeeID, ok := r.MappedEmployeeID(category); ok {
		owner, err := users.GetByEmployeeID(ctx, employeeID)
		switch {
		case err == nil:
			if owner.Role == domain.RoleOwner && owner.Active {
				return owner, nil
			}
		case !errors.Is(err, pgx.ErrNoRows):
			return nil, err
		}
	}

	workloads, err := users.OwnerWorkloads(ctx)
	if err != nil {
		return nil, err
	}
	if len(workloads) == 0 {
		return nil, nil
	}
	owner := workloads[0].Owner
	return &owner, nil
}

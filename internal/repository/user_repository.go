package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ops-portal/internal/domain"
)

// UserFilter narrows user listings. Zero values do not filter.
type UserFilter struct {
	Roles       []domain.Role
	LocationIDs []string
	Active      *bool
	Limit       int
	Offset      int
}

// Matches reports whether user satisfies the filter.
func (f UserFilter) Matches(user *domain.User) bool {
	if len(f.Roles) > 0 {
		found := false
		for _, role := range f.Roles {
			if user.Role == role {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.LocationIDs) > 0 {
		if user.LocationID == nil || !containsString(f.LocationIDs, *user.LocationID) {
			return false
		}
	}
	if f.Active != nil && user.Active != *f.Active {
		return false
	}
	return true
}

// OwnerWorkload pairs an active owner with the number of tickets assigned to them.
type OwnerWorkload struct {
	Owner   domain.User
	Tickets int
}

// UserRepository defines persistence access for employee accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	Count(ctx context.Context, filter UserFilter) (int, error)
	// OwnerWorkloads lists active owners ordered by ticket count, then id.
	OwnerWorkloads(ctx context.Context) ([]OwnerWorkload, error)
}

type userRepository struct {
	db DBTX
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, employee_id, username, full_name, role, location_id, password_hash, active, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (employee_id, username, full_name, role, location_id, password_hash, active)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		user.EmployeeID,
		user.Username,
		user.FullName,
		user.Role,
		user.LocationID,
		user.PasswordHash,
		user.Active,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET username=$1, full_name=$2, location_id=$3, password_hash=$4, active=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		user.Username,
		user.FullName,
		user.LocationID,
		user.PasswordHash,
		user.Active,
		user.ID,
	).Scan(&user.UpdatedAt)
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE employee_id=$1`
	return scanUser(r.db.QueryRow(ctx, query, employeeID))
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	where, args := userWhere(filter)
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where + ` ORDER BY full_name, employee_id`
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

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *userRepository) Count(ctx context.Context, filter UserFilter) (int, error) {
	where, args := userWhere(filter)
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE `+where, args...).Scan(&count)
	return count, err
}

func (r *userRepository) OwnerWorkloads(ctx context.Context) ([]OwnerWorkload, error) {
	const query = `
        SELECT u.id, u.employee_id, u.username, u.full_name, u.role, u.location_id, u.password_hash,
               u.active, u.created_at, u.updated_at, COUNT(t.id) AS owned
        FROM users u
        LEFT JOIN tickets t ON t.assigned_owner_id = u.id
        WHERE u.role = 'owner' AND u.active
        GROUP BY u.id
        ORDER BY owned ASC, u.id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []OwnerWorkload
	for rows.Next() {
		var w OwnerWorkload
		if err := rows.Scan(
			&w.Owner.ID,
			&w.Owner.EmployeeID,
			&w.Owner.Username,
			&w.Owner.FullName,
			&w.Owner.Role,
			&w.Owner.LocationID,
			&w.Owner.PasswordHash,
			&w.Owner.Active,
			&w.Owner.CreatedAt,
			&w.Owner.UpdatedAt,
			&w.Tickets,
		); err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

func userWhere(filter UserFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Roles) > 0 {
		roles := make([]string, len(filter.Roles))
		for i, role := range filter.Roles {
			roles[i] = string(role)
		}
		args = append(args, roles)
		clauses = append(clauses, fmt.Sprintf("role = ANY($%d)", len(args)))
	}
	if len(filter.LocationIDs) > 0 {
		args = append(args, filter.LocationIDs)
		clauses = append(clauses, fmt.Sprintf("location_id = ANY($%d::uuid[])", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("active=$%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.EmployeeID,
		&user.Username,
		&user.FullName,
		&user.Role,
		&user.LocationID,
		&user.PasswordHash,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

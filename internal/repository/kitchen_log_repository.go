package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ops-portal/internal/domain"
)

// KitchenLogFilter combines a visibility disjunction with search terms.
// A log is visible when All is set, its location code is listed, it links to
// StaffUserID, or it carries StaffEmployeeID.
type KitchenLogFilter struct {
	All             bool
	LocationCodes   []string
	StaffUserID     *string
	StaffEmployeeID *string
	NameQuery       string
	EmpIDQuery      string
	Limit           int
	Offset          int
}

// Matches evaluates the filter against a single log.
func (f KitchenLogFilter) Matches(log *domain.KitchenLog) bool {
	visible := f.All ||
		(len(f.LocationCodes) > 0 && containsString(f.LocationCodes, log.LocationCode)) ||
		(f.StaffUserID != nil && log.StaffID != nil && *log.StaffID == *f.StaffUserID) ||
		(f.StaffEmployeeID != nil && log.EmpID == *f.StaffEmployeeID)
	if !visible {
		return false
	}
	if q := strings.TrimSpace(f.NameQuery); q != "" && !strings.Contains(strings.ToLower(log.EmpName), strings.ToLower(q)) {
		return false
	}
	if q := strings.TrimSpace(f.EmpIDQuery); q != "" && !strings.Contains(strings.ToLower(log.EmpID), strings.ToLower(q)) {
		return false
	}
	return true
}

// KitchenLogRepository persists incident logs.
type KitchenLogRepository interface {
	Create(ctx context.Context, log *domain.KitchenLog) error
	GetByID(ctx context.Context, id string) (*domain.KitchenLog, error)
	Acknowledge(ctx context.Context, log *domain.KitchenLog) error
	List(ctx context.Context, filter KitchenLogFilter) ([]domain.KitchenLog, error)
}

type kitchenLogRepository struct {
	db DBTX
}

// NewKitchenLogRepository constructs repository.
func NewKitchenLogRepository(db DBTX) KitchenLogRepository {
	return &kitchenLogRepository{db: db}
}

const kitchenLogColumns = `id, staff_id, emp_id, emp_name, location_code, category, remarks, log_date,
               created_by_id, is_acknowledged, acknowledged_at, created_at`

func (r *kitchenLogRepository) Create(ctx context.Context, log *domain.KitchenLog) error {
	const query = `
        INSERT INTO kitchen_logs (staff_id, emp_id, emp_name, location_code, category, remarks, log_date, created_by_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		log.StaffID,
		log.EmpID,
		log.EmpName,
		log.LocationCode,
		log.Category,
		log.Remarks,
		log.LogDate,
		log.CreatedByID,
	).Scan(&log.ID, &log.CreatedAt)
}

func (r *kitchenLogRepository) GetByID(ctx context.Context, id string) (*domain.KitchenLog, error) {
	return scanKitchenLog(r.db.QueryRow(ctx, `SELECT `+kitchenLogColumns+` FROM kitchen_logs WHERE id=$1`, id))
}

func (r *kitchenLogRepository) Acknowledge(ctx context.Context, log *domain.KitchenLog) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE kitchen_logs SET is_acknowledged=$1, acknowledged_at=$2 WHERE id=$3`,
		log.IsAcknowledged, log.AcknowledgedAt, log.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *kitchenLogRepository) List(ctx context.Context, filter KitchenLogFilter) ([]domain.KitchenLog, error) {
	args := []any{}
	var ors []string
	if filter.All {
		ors = append(ors, "TRUE")
	}
	if len(filter.LocationCodes) > 0 {
		args = append(args, filter.LocationCodes)
		ors = append(ors, fmt.Sprintf("location_code = ANY($%d)", len(args)))
	}
	if filter.StaffUserID != nil {
		args = append(args, *filter.StaffUserID)
		ors = append(ors, fmt.Sprintf("staff_id=$%d", len(args)))
	}
	if filter.StaffEmployeeID != nil {
		args = append(args, *filter.StaffEmployeeID)
		ors = append(ors, fmt.Sprintf("emp_id=$%d", len(args)))
	}
	if len(ors) == 0 {
		return nil, nil
	}
	clauses := []string{"(" + strings.Join(ors, " OR ") + ")"}

	if q := strings.TrimSpace(filter.NameQuery); q != "" {
		args = append(args, "%"+q+"%")
		clauses = append(clauses, fmt.Sprintf("emp_name ILIKE $%d", len(args)))
	}
	if q := strings.TrimSpace(filter.EmpIDQuery); q != "" {
		args = append(args, "%"+q+"%")
		clauses = append(clauses, fmt.Sprintf("emp_id ILIKE $%d", len(args)))
	}

	query := `SELECT ` + kitchenLogColumns + ` FROM kitchen_logs WHERE ` + strings.Join(clauses, " AND ") +
		` ORDER BY log_date DESC, created_at DESC`
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

	var result []domain.KitchenLog
	for rows.Next() {
		log, err := scanKitchenLog(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *log)
	}
	return result, rows.Err()
}

func scanKitchenLog(row pgx.Row) (*domain.KitchenLog, error) {
	var log domain.KitchenLog
	if err := row.Scan(
		&log.ID,
		&log.StaffID,
		&log.EmpID,
		&log.EmpName,
		&log.LocationCode,
		&log.Category,
		&log.Remarks,
		&log.LogDate,
		&log.CreatedByID,
		&log.IsAcknowledged,
		&log.AcknowledgedAt,
		&log.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &log, nil
}

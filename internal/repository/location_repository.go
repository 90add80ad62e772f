package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ops-portal/internal/domain"
)

// LocationRepository persists kitchen sites and cluster territories.
type LocationRepository interface {
	Create(ctx context.Context, location *domain.Location) error
	GetByID(ctx context.Context, id string) (*domain.Location, error)
	GetByCode(ctx context.Context, code string) (*domain.Location, error)
	List(ctx context.Context) ([]domain.Location, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.Location, error)
	GetClusterProfile(ctx context.Context, userID string) (*domain.ClusterManagerProfile, error)
	SaveClusterProfile(ctx context.Context, profile *domain.ClusterManagerProfile) error
}

type locationRepository struct {
	db DBTX
}

// NewLocationRepository constructs repository.
func NewLocationRepository(db DBTX) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) Create(ctx context.Context, location *domain.Location) error {
	const query = `
        INSERT INTO locations (code, name)
        VALUES ($1, $2)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query, location.Code, location.Name).Scan(&location.ID, &location.CreatedAt)
}

func (r *locationRepository) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	const query = `SELECT id, code, name, created_at FROM locations WHERE id=$1`
	return scanLocation(r.db.QueryRow(ctx, query, id))
}

func (r *locationRepository) GetByCode(ctx context.Context, code string) (*domain.Location, error) {
	const query = `SELECT id, code, name, created_at FROM locations WHERE code=$1`
	return scanLocation(r.db.QueryRow(ctx, query, code))
}

func (r *locationRepository) List(ctx context.Context) ([]domain.Location, error) {
	return r.list(ctx, `SELECT id, code, name, created_at FROM locations ORDER BY code`)
}

func (r *locationRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.Location, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, `SELECT id, code, name, created_at FROM locations WHERE id = ANY($1::uuid[]) ORDER BY code`, ids)
}

func (r *locationRepository) list(ctx context.Context, query string, args ...any) ([]domain.Location, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Location
	for rows.Next() {
		location, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *location)
	}
	return result, rows.Err()
}

func (r *locationRepository) GetClusterProfile(ctx context.Context, userID string) (*domain.ClusterManagerProfile, error) {
	const query = `
        SELECT p.user_id, p.updated_at, COALESCE(array_agg(l.location_id::text) FILTER (WHERE l.location_id IS NOT NULL), '{}')
        FROM cluster_manager_profiles p
        LEFT JOIN cluster_manager_locations l ON l.user_id = p.user_id
        WHERE p.user_id=$1
        GROUP BY p.user_id, p.updated_at`
	var profile domain.ClusterManagerProfile
	if err := r.db.QueryRow(ctx, query, userID).Scan(&profile.UserID, &profile.UpdatedAt, &profile.LocationIDs); err != nil {
		return nil, err
	}
	return &profile, nil
}

// SaveClusterProfile replaces the territory of the profile owner. Callers run
// it inside Store.InTx so the delete and inserts land together.
func (r *locationRepository) SaveClusterProfile(ctx context.Context, profile *domain.ClusterManagerProfile) error {
	const upsert = `
        INSERT INTO cluster_manager_profiles (user_id) VALUES ($1)
        ON CONFLICT (user_id) DO UPDATE SET updated_at=NOW()
        RETURNING updated_at`
	if err := r.db.QueryRow(ctx, upsert, profile.UserID).Scan(&profile.UpdatedAt); err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM cluster_manager_locations WHERE user_id=$1`, profile.UserID); err != nil {
		return err
	}
	for _, locationID := range profile.LocationIDs {
		if _, err := r.db.Exec(ctx,
			`INSERT INTO cluster_manager_locations (user_id, location_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			profile.UserID, locationID,
		); err != nil {
			return err
		}
	}
	return nil
}

func scanLocation(row pgx.Row) (*domain.Location, error) {
	var location domain.Location
	if err := row.Scan(&location.ID, &location.Code, &location.Name, &location.CreatedAt); err != nil {
		return nil, err
	}
	return &location, nil
}

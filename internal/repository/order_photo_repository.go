package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/ops-portal/internal/domain"
)

// OrderPhotoFilter restricts photos to allowed locations and search terms.
type OrderPhotoFilter struct {
	All           bool
	LocationIDs   []string
	UploadedFrom  *time.Time
	UploadedTo    *time.Time
	OrderID       string
	UploaderQuery string
	LocationQuery string
}

// Matches evaluates the filter against a photo with its read-side names populated.
func (f OrderPhotoFilter) Matches(photo *domain.OrderPhoto) bool {
	if !f.All && (photo.LocationID == nil || !containsString(f.LocationIDs, *photo.LocationID)) {
		return false
	}
	if f.UploadedFrom != nil && photo.UploadedAt.Before(*f.UploadedFrom) {
		return false
	}
	if f.UploadedTo != nil && photo.UploadedAt.After(*f.UploadedTo) {
		return false
	}
	if q := strings.TrimSpace(f.OrderID); q != "" && !containsFold(photo.OrderID, q) {
		return false
	}
	if q := strings.TrimSpace(f.UploaderQuery); q != "" && !containsFold(photo.UploaderName, q) {
		return false
	}
	if q := strings.TrimSpace(f.LocationQuery); q != "" && !containsFold(photo.LocationName, q) {
		return false
	}
	return true
}

// OrderPhotoRepository persists order photo metadata.
type OrderPhotoRepository interface {
	Create(ctx context.Context, photo *domain.OrderPhoto) error
	List(ctx context.Context, filter OrderPhotoFilter) ([]domain.OrderPhoto, error)
}

type orderPhotoRepository struct {
	db DBTX
}

// NewOrderPhotoRepository constructs repository.
func NewOrderPhotoRepository(db DBTX) OrderPhotoRepository {
	return &orderPhotoRepository{db: db}
}

func (r *orderPhotoRepository) Create(ctx context.Context, photo *domain.OrderPhoto) error {
	const query = `
        INSERT INTO order_photos (order_id, storage_key, image_url, uploaded_by_id, location_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, uploaded_at`
	return r.db.QueryRow(ctx, query,
		photo.OrderID,
		photo.StorageKey,
		photo.ImageURL,
		photo.UploadedByID,
		photo.LocationID,
	).Scan(&photo.ID, &photo.UploadedAt)
}

func (r *orderPhotoRepository) List(ctx context.Context, filter OrderPhotoFilter) ([]domain.OrderPhoto, error) {
	if !filter.All && len(filter.LocationIDs) == 0 {
		return nil, nil
	}
	clauses := []string{"TRUE"}
	args := []any{}

	if !filter.All {
		args = append(args, filter.LocationIDs)
		clauses = append(clauses, fmt.Sprintf("p.location_id = ANY($%d::uuid[])", len(args)))
	}
	if filter.UploadedFrom != nil {
		args = append(args, *filter.UploadedFrom)
		clauses = append(clauses, fmt.Sprintf("p.uploaded_at >= $%d", len(args)))
	}
	if filter.UploadedTo != nil {
		args = append(args, *filter.UploadedTo)
		clauses = append(clauses, fmt.Sprintf("p.uploaded_at <= $%d", len(args)))
	}
	if q := strings.TrimSpace(filter.OrderID); q != "" {
		args = append(args, "%"+q+"%")
		clauses = append(clauses, fmt.Sprintf("p.order_id ILIKE $%d", len(args)))
	}
	if q := strings.TrimSpace(filter.UploaderQuery); q != "" {
		args = append(args, "%"+q+"%")
		clauses = append(clauses, fmt.Sprintf("COALESCE(NULLIF(u.full_name, ''), u.username) ILIKE $%d", len(args)))
	}
	if q := strings.TrimSpace(filter.LocationQuery); q != "" {
		args = append(args, "%"+q+"%")
		clauses = append(clauses, fmt.Sprintf("l.name ILIKE $%d", len(args)))
	}

	query := `
        SELECT p.id, p.order_id, p.storage_key, p.image_url, p.uploaded_by_id, p.location_id, p.uploaded_at,
               COALESCE(NULLIF(u.full_name, ''), u.username, ''), COALESCE(l.name, '')
        FROM order_photos p
        LEFT JOIN users u ON u.id = p.uploaded_by_id
        LEFT JOIN locations l ON l.id = p.location_id
        WHERE ` + strings.Join(clauses, " AND ") + `
        ORDER BY p.uploaded_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.OrderPhoto
	for rows.Next() {
		var photo domain.OrderPhoto
		if err := rows.Scan(
			&photo.ID,
			&photo.OrderID,
			&photo.StorageKey,
			&photo.ImageURL,
			&photo.UploadedByID,
			&photo.LocationID,
			&photo.UploadedAt,
			&photo.UploaderName,
			&photo.LocationName,
		); err != nil {
			return nil, err
		}
		result = append(result, photo)
	}
	return result, rows.Err()
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

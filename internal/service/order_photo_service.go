package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/ops-portal/internal/domain"
	"github.com/spec-kit/ops-portal/internal/report"
	"github.com/spec-kit/ops-portal/internal/repository"
	"github.com/spec-kit/ops-portal/internal/scope"
	apperrors "github.com/spec-kit/ops-portal/pkg/util"
)

// OrderPhotoService records order photo metadata. The files themselves are
// stored elsewhere and referenced by key and URL.
type OrderPhotoService struct {
	store  repository.Store
	logger *zap.Logger
	loc    *time.Location
}

// OrderPhotoDependencies bundles collaborators for the photo service.
type OrderPhotoDependencies struct {
	Store    repository.Store
	Logger   *zap.Logger
	Location *time.Location
}

// NewOrderPhotoService constructs the service.
func NewOrderPhotoService(deps OrderPhotoDependencies) *OrderPhotoService {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	return &OrderPhotoService{store: deps.Store, logger: loggerOrNop(deps.Logger), loc: loc}
}

// PhotoInput describes an uploaded photo. LocationID is read only for global
// roles, who must pick one.
type PhotoInput struct {
	OrderID    string
	StorageKey string
	ImageURL   string
	LocationID *string
}

// PhotoSearch filters photo listings. Dates are compared by calendar day.
type PhotoSearch struct {
	DateAfter  *time.Time
	DateBefore *time.Time
	OrderID    string
	Uploader   string
	Location   string
}

// Record stores photo metadata against the uploader's location.
func (s *OrderPhotoService) Record(ctx context.Context, actor scope.Subject, input PhotoInput) (*domain.OrderPhoto, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	orderID := strings.TrimSpace(input.OrderID)
	if orderID == "" {
		return nil, apperrors.NewValidationError("order id is required", map[string]any{"field": "order_id"})
	}
	if strings.TrimSpace(input.StorageKey) == "" && strings.TrimSpace(input.ImageURL) == "" {
		return nil, apperrors.NewValidationError("storage key or image url is required", map[string]any{"field": "image_url"})
	}

	locationID, err := s.uploadLocation(ctx, scope.For(actor), input.LocationID)
	if err != nil {
		return nil, err
	}
	photo := &domain.OrderPhoto{
		OrderID:      orderID,
		StorageKey:   strings.TrimSpace(input.StorageKey),
		ImageURL:     strings.TrimSpace(input.ImageURL),
		UploadedByID: strPtr(actor.User.ID),
		LocationID:   strPtr(locationID),
	}
	if err := s.store.Photos().Create(ctx, photo); err != nil {
		return nil, apperrors.MapError(err)
	}
	return photo, nil
}

func (s *OrderPhotoService) uploadLocation(ctx context.Context, sc scope.Scope, selected *string) (string, error) {
	if sc.Global() {
		if selected == nil || *selected == "" {
			return "", apperrors.NewValidationError("select a location", map[string]any{"field": "location_id"})
		}
		if _, err := s.store.Locations().GetByID(ctx, *selected); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return "", apperrors.NewValidationError("unknown location", map[string]any{"location_id": *selected})
			}
			return "", apperrors.MapError(err)
		}
		return *selected, nil
	}
	allowed := sc.AllowedLocations()
	if len(allowed) == 0 {
		return "", apperrors.NewValidationError("no location is assigned to your account", nil)
	}
	locations, err := s.store.Locations().ListByIDs(ctx, allowed)
	if err != nil {
		return "", apperrors.MapError(err)
	}
	if len(locations) == 0 {
		return "", apperrors.NewValidationError("no location is assigned to your account", nil)
	}
	return locations[0].ID, nil
}

// List returns photos in the actor's locations, newest first.
func (s *OrderPhotoService) List(ctx context.Context, actor scope.Subject, search PhotoSearch) ([]domain.OrderPhoto, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	sc := scope.For(actor)
	if !sc.Global() && len(sc.AllowedLocations()) == 0 {
		return nil, apperrors.NewValidationError("no location is assigned to your account", nil)
	}
	filter := sc.Photos()
	filter.OrderID = search.OrderID
	filter.UploaderQuery = search.Uploader
	filter.LocationQuery = search.Location
	if search.DateAfter != nil {
		from := s.startOfDay(*search.DateAfter)
		filter.UploadedFrom = &from
	}
	if search.DateBefore != nil {
		to := s.startOfDay(*search.DateBefore).AddDate(0, 0, 1).Add(-time.Nanosecond)
		filter.UploadedTo = &to
	}

	photos, err := s.store.Photos().List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return photos, nil
}

// ExportCSV writes the filtered photos as CSV.
func (s *OrderPhotoService) ExportCSV(ctx context.Context, actor scope.Subject, search PhotoSearch, w io.Writer) error {
	photos, err := s.List(ctx, actor, search)
	if err != nil {
		return err
	}
	return report.WriteOrderPhotosCSV(w, photos, s.loc)
}

func (s *OrderPhotoService) startOfDay(t time.Time) time.Time {
	y, m, d := t.In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}

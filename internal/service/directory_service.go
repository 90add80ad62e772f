package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/ops-portal/internal/auth"
	"github.com/spec-kit/ops-portal/internal/domain"
	"github.com/spec-kit/ops-portal/internal/repository"
	"github.com/spec-kit/ops-portal/internal/scope"
	apperrors "github.com/spec-kit/ops-portal/pkg/util"
)

// DirectoryService manages accounts, locations and cluster territories.
type DirectoryService struct {
	store      repository.Store
	bcryptCost int
	logger     *zap.Logger
}

// DirectoryDependencies bundles collaborators for the directory service.
type DirectoryDependencies struct {
	Store      repository.Store
	BcryptCost int
	Logger     *zap.Logger
}

// NewDirectoryService constructs the service.
func NewDirectoryService(deps DirectoryDependencies) *DirectoryService {
	return &DirectoryService{
		store:      deps.Store,
		bcryptCost: deps.BcryptCost,
		logger:     loggerOrNop(deps.Logger),
	}
}

// CreateUserInput provisions an account.
type CreateUserInput struct {
	EmployeeID string
	Username   string
	FullName   string
	Role       domain.Role
	LocationID *string
	Password   string
}

// UserListFilter holds the explicit user list filters.
type UserListFilter struct {
	Role       *domain.Role
	LocationID *string
	Active     *bool
	Limit      int
	Offset     int
}

// CreateUser provisions a new account. Employee ids are unique.
func (s *DirectoryService) CreateUser(ctx context.Context, actor scope.Subject, input CreateUserInput) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	employeeID := strings.TrimSpace(input.EmployeeID)
	if employeeID == "" {
		return nil, apperrors.NewValidationError("employee id is required", map[string]any{"field": "employee_id"})
	}
	if !input.Role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": input.Role})
	}
	if input.LocationID != nil && *input.LocationID != "" {
		if _, err := s.store.Locations().GetByID(ctx, *input.LocationID); err != nil {
			return nil, notFoundOr(err, "location", map[string]any{"location_id": *input.LocationID})
		}
	} else {
		input.LocationID = nil
	}
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		if errors.Is(err, auth.ErrWeakPassword) {
			return nil, apperrors.NewValidationError(err.Error(), map[string]any{"field": "password"})
		}
		return nil, apperrors.NewInternalError(err)
	}

	username := strings.TrimSpace(input.Username)
	if username == "" {
		username = employeeID
	}
	user := &domain.User{
		EmployeeID:   employeeID,
		Username:     username,
		FullName:     strings.TrimSpace(input.FullName),
		Role:         input.Role,
		LocationID:   input.LocationID,
		PasswordHash: hash,
		Active:       true,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("employee id already exists", map[string]any{"employee_id": employeeID})
		}
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("user provisioned",
		zap.String("user_id", user.ID),
		zap.String("employee_id", user.EmployeeID),
		zap.String("role", string(user.Role)))
	return user, nil
}

// EnsureAdmin provisions an active admin with employeeID when no account
// holds that id yet. It reports whether an account was created.
func (s *DirectoryService) EnsureAdmin(ctx context.Context, employeeID, password string) (bool, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return false, nil
	}
	if _, err := s.store.Users().GetByEmployeeID(ctx, employeeID); err == nil {
		return false, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return false, apperrors.MapError(err)
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return false, err
	}
	admin := &domain.User{
		EmployeeID:   employeeID,
		Username:     employeeID,
		FullName:     "Administrator",
		Role:         domain.RoleAdmin,
		PasswordHash: hash,
		Active:       true,
	}
	if err := s.store.Users().Create(ctx, admin); err != nil {
		if repository.IsUniqueViolation(err) {
			return false, nil
		}
		return false, apperrors.MapError(err)
	}
	s.logger.Info("bootstrap admin created", zap.String("employee_id", employeeID))
	return true, nil
}

// DeactivateUser disables an account. Accounts are never deleted; repeating
// the call is a no-op.
func (s *DirectoryService) DeactivateUser(ctx context.Context, actor scope.Subject, userID string) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if userID == actor.User.ID {
		return nil, apperrors.NewValidationError("cannot deactivate your own account", nil)
	}
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user", map[string]any{"user_id": userID})
	}
	if !user.Active {
		return user, nil
	}
	user.Active = false
	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// ListUsers lists accounts. Admins see everyone; cluster managers see the
// kitchen managers and staff of their territory.
func (s *DirectoryService) ListUsers(ctx context.Context, actor scope.Subject, filter UserListFilter) ([]domain.User, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	repoFilter := repository.UserFilter{Active: filter.Active, Limit: filter.Limit, Offset: filter.Offset}
	if filter.Role != nil {
		repoFilter.Roles = []domain.Role{*filter.Role}
	}
	if filter.LocationID != nil && *filter.LocationID != "" {
		repoFilter.LocationIDs = []string{*filter.LocationID}
	}

	switch actor.User.Role {
	case domain.RoleAdmin:
	case domain.RoleClusterManager:
		territory := scope.For(actor).AllowedLocations()
		if len(territory) == 0 {
			return []domain.User{}, nil
		}
		if len(repoFilter.LocationIDs) > 0 {
			if !containsID(territory, repoFilter.LocationIDs[0]) {
				return []domain.User{}, nil
			}
		} else {
			repoFilter.LocationIDs = territory
		}
		allowedRoles := []domain.Role{domain.RoleKitchenManager, domain.RoleKitchenStaff}
		if filter.Role != nil {
			if *filter.Role != domain.RoleKitchenManager && *filter.Role != domain.RoleKitchenStaff {
				return []domain.User{}, nil
			}
		} else {
			repoFilter.Roles = allowedRoles
		}
	default:
		return nil, apperrors.NewForbidden("not allowed to list users")
	}

	users, err := s.store.Users().List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// CreateLocation registers a location. Codes are stored upper-case and unique.
func (s *DirectoryService) CreateLocation(ctx context.Context, actor scope.Subject, code, name string) (*domain.Location, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	name = strings.TrimSpace(name)
	if code == "" || name == "" {
		return nil, apperrors.NewValidationError("code and name are required", nil)
	}
	location := &domain.Location{Code: code, Name: name}
	if err := s.store.Locations().Create(ctx, location); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("location code already exists", map[string]any{"code": code})
		}
		return nil, apperrors.MapError(err)
	}
	return location, nil
}

// ListLocations returns the locations the actor may act on.
func (s *DirectoryService) ListLocations(ctx context.Context, actor scope.Subject) ([]domain.Location, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	sc := scope.For(actor)
	var (
		locations []domain.Location
		err       error
	)
	if sc.Global() {
		locations, err = s.store.Locations().List(ctx)
	} else {
		allowed := sc.AllowedLocations()
		if len(allowed) == 0 {
			return []domain.Location{}, nil
		}
		locations, err = s.store.Locations().ListByIDs(ctx, allowed)
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return locations, nil
}

// AssignTerritory replaces the location set of a cluster manager.
func (s *DirectoryService) AssignTerritory(ctx context.Context, actor scope.Subject, clusterManagerID string, locationIDs []string) (*domain.ClusterManagerProfile, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.store.Users().GetByID(ctx, clusterManagerID)
	if err != nil {
		return nil, notFoundOr(err, "user", map[string]any{"user_id": clusterManagerID})
	}
	if user.Role != domain.RoleClusterManager {
		return nil, apperrors.NewValidationError("territories can only be assigned to cluster managers",
			map[string]any{"user_id": clusterManagerID, "role": user.Role})
	}

	ids := make([]string, 0, len(locationIDs))
	seen := make(map[string]struct{}, len(locationIDs))
	for _, id := range locationIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) > 0 {
		found, err := s.store.Locations().ListByIDs(ctx, ids)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if len(found) != len(ids) {
			return nil, apperrors.NewValidationError("unknown location in territory", map[string]any{"location_ids": ids})
		}
	}

	profile := &domain.ClusterManagerProfile{UserID: user.ID, LocationIDs: ids}
	if err := s.store.InTx(ctx, func(tx repository.Store) error {
		return tx.Locations().SaveClusterProfile(ctx, profile)
	}); err != nil {
		return nil, apperrors.MapError(err)
	}
	return profile, nil
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

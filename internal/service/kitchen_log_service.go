package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/ops-portal/internal/domain"
	"github.com/spec-kit/ops-portal/internal/events"
	"github.com/spec-kit/ops-portal/internal/repository"
	"github.com/spec-kit/ops-portal/internal/scope"
	apperrors "github.com/spec-kit/ops-portal/pkg/util"
)

// KitchenLogService records and lists staff incident logs.
type KitchenLogService struct {
	store  repository.Store
	events publisher
	logger *zap.Logger
	now    Clock
	loc    *time.Location
}

// KitchenLogDependencies bundles collaborators for the kitchen log service.
type KitchenLogDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      Clock
	// Location decides the calendar day of LogDate when none is given.
	Location *time.Location
}

// NewKitchenLogService constructs the service.
func NewKitchenLogService(deps KitchenLogDependencies) *KitchenLogService {
	logger := loggerOrNop(deps.Logger)
	now := clockOrNow(deps.Clock)
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	return &KitchenLogService{
		store:  deps.Store,
		events: publisher{dispatcher: deps.Dispatcher, logger: logger, now: now},
		logger: logger,
		now:    now,
		loc:    loc,
	}
}

// KitchenLogInput describes a new log. With StaffID set the employee snapshot
// comes from that user; otherwise EmpID and EmpName are used as given.
type KitchenLogInput struct {
	StaffID  *string
	EmpID    string
	EmpName  string
	Category string
	Remarks  string
	LogDate  *time.Time
}

// KitchenLogSearch holds the list search terms.
type KitchenLogSearch struct {
	Name   string
	EmpID  string
	Limit  int
	Offset int
}

// Create records a log. Only kitchen and cluster managers write logs.
func (s *KitchenLogService) Create(ctx context.Context, actor scope.Subject, input KitchenLogInput) (*domain.KitchenLog, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	user := actor.User
	if user.Role != domain.RoleKitchenManager && user.Role != domain.RoleClusterManager {
		return nil, apperrors.NewForbidden("only kitchen and cluster managers can record logs")
	}
	category := strings.TrimSpace(input.Category)
	if !domain.ValidKitchenLogCategory(category) {
		return nil, apperrors.NewValidationError("unknown log category",
			map[string]any{"category": category, "allowed": domain.KitchenLogCategories})
	}

	log := &domain.KitchenLog{
		EmpID:       strings.TrimSpace(input.EmpID),
		EmpName:     strings.TrimSpace(input.EmpName),
		Category:    category,
		Remarks:     strings.TrimSpace(input.Remarks),
		CreatedByID: user.ID,
	}

	var staff *domain.User
	if input.StaffID != nil && *input.StaffID != "" {
		var err error
		staff, err = s.store.Users().GetByID(ctx, *input.StaffID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewValidationError("unknown staff member", map[string]any{"staff_id": *input.StaffID})
			}
			return nil, apperrors.MapError(err)
		}
		if staff.Role != domain.RoleKitchenStaff {
			return nil, apperrors.NewValidationError("logs can only reference kitchen staff", map[string]any{"staff_id": staff.ID})
		}
		if staff.LocationID == nil || !scope.For(actor).AllowsLocation(*staff.LocationID) {
			return nil, apperrors.NewForbidden("staff member is outside your locations")
		}
		log.StaffID = strPtr(staff.ID)
		log.EmpID = staff.EmployeeID
		log.EmpName = staff.DisplayName()
	}
	if log.EmpID == "" {
		log.EmpID = "-"
	}
	if log.EmpName == "" {
		return nil, apperrors.NewValidationError("employee name is required", map[string]any{"field": "emp_name"})
	}

	code, err := s.logLocationCode(ctx, user, staff)
	if err != nil {
		return nil, err
	}
	log.LocationCode = code

	day := s.now()
	if input.LogDate != nil {
		day = *input.LogDate
	}
	y, m, d := day.In(s.loc).Date()
	log.LogDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	if err := s.store.KitchenLogs().Create(ctx, log); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.events.publish(ctx, events.Event{
		Type:      events.EventKitchenLogCreated,
		SubjectID: log.ID,
		Actor:     events.ActorFrom(user),
		Payload: events.KitchenLogCreatedPayload{
			StaffID:      log.StaffID,
			EmpID:        log.EmpID,
			Category:     log.Category,
			LocationCode: log.LocationCode,
		},
	})
	return log, nil
}

// logLocationCode stamps kitchen manager logs with the manager's location and
// cluster manager logs with the staff member's location.
func (s *KitchenLogService) logLocationCode(ctx context.Context, author, staff *domain.User) (string, error) {
	locationID := author.LocationID
	if author.Role == domain.RoleClusterManager {
		locationID = nil
		if staff != nil {
			locationID = staff.LocationID
		}
	}
	if locationID == nil || *locationID == "" {
		return domain.UnknownLocationCode, nil
	}
	location, err := s.store.Locations().GetByID(ctx, *locationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UnknownLocationCode, nil
		}
		return "", apperrors.MapError(err)
	}
	return location.Code, nil
}

// List returns logs visible to the actor, newest first.
func (s *KitchenLogService) List(ctx context.Context, actor scope.Subject, search KitchenLogSearch) ([]domain.KitchenLog, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	sc := scope.For(actor)
	var codes []string
	if !sc.Global() {
		if allowed := sc.AllowedLocations(); len(allowed) > 0 {
			locations, err := s.store.Locations().ListByIDs(ctx, allowed)
			if err != nil {
				return nil, apperrors.MapError(err)
			}
			for _, l := range locations {
				codes = append(codes, l.Code)
			}
		}
	}
	filter := sc.KitchenLogs(codes)
	filter.NameQuery = search.Name
	filter.EmpIDQuery = search.EmpID
	filter.Limit, filter.Offset = search.Limit, search.Offset

	logs, err := s.store.KitchenLogs().List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return logs, nil
}

// Acknowledge marks a log as seen by the staff member it references.
func (s *KitchenLogService) Acknowledge(ctx context.Context, actor scope.Subject, logID string) (*domain.KitchenLog, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	log, err := s.store.KitchenLogs().GetByID(ctx, logID)
	if err != nil {
		return nil, notFoundOr(err, "kitchen_log", map[string]any{"log_id": logID})
	}
	if log.StaffID == nil || *log.StaffID != actor.User.ID {
		return nil, apperrors.NewForbidden("only the referenced staff member can acknowledge this log")
	}
	if log.IsAcknowledged {
		return log, nil
	}
	now := s.now()
	log.IsAcknowledged = true
	log.AcknowledgedAt = &now
	if err := s.store.KitchenLogs().Acknowledge(ctx, log); err != nil {
		return nil, apperrors.MapError(err)
	}
	return log, nil
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/ops-portal/internal/domain"
	"github.com/spec-kit/ops-portal/internal/events"
	"github.com/spec-kit/ops-portal/internal/repository"
	"github.com/spec-kit/ops-portal/internal/scope"
	apperrors "github.com/spec-kit/ops-portal/pkg/util"
)

// Clock returns the current time. Services default to time.Now.
type Clock func() time.Time

func clockOrNow(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

func loggerOrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// publisher stamps and dispatches events. Dispatch failures are logged, never
// returned: the state change they describe has already committed.
type publisher struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        Clock
}

func (p publisher) publish(ctx context.Context, event events.Event) {
	if p.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	if err := p.dispatcher.Publish(ctx, event); err != nil {
		p.logger.Warn("publish event failed",
			zap.String("event_type", string(event.Type)),
			zap.String("subject_id", event.SubjectID),
			zap.Error(err))
	}
}

func requireUser(actor scope.Subject) error {
	if actor.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !actor.User.Active {
		return apperrors.NewUnauthorized("account is deactivated")
	}
	return nil
}

func requireAdmin(actor scope.Subject) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	if actor.User.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}

// notFoundOr maps a missing row to a NotFound error for resource.
func notFoundOr(err error, resource string, details map[string]any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, details)
	}
	return apperrors.MapError(err)
}

// userNames resolves display names for the given ids, skipping unknown ones.
func userNames(ctx context.Context, users repository.UserRepository, ids map[string]struct{}) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	for id := range ids {
		user, err := users.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return nil, err
		}
		names[id] = user.DisplayName()
	}
	return names, nil
}

func strPtr(s string) *string {
	return &s
}

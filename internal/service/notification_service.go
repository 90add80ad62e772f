package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ops-portal/internal/domain"
	"github.com/spec-kit/ops-portal/internal/events"
	"github.com/spec-kit/ops-portal/internal/repository"
	"github.com/spec-kit/ops-portal/internal/scope"
	apperrors "github.com/spec-kit/ops-portal/pkg/util"
)

// NotificationService turns domain events into in-app notifications and
// serves each user their inbox.
type NotificationService struct {
	dispatcher    events.Dispatcher
	notifications repository.NotificationRepository
	logger        *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, notifications repository.NotificationRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher:    dispatcher,
		notifications: notifications,
		logger:        loggerOrNop(logger),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketTransitioned, n.handleTicketTransitioned)
	n.dispatcher.Subscribe(events.EventKitchenLogCreated, n.handleKitchenLogCreated)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok || payload.AssignedOwnerID == nil {
		return nil
	}
	return n.notify(ctx, *payload.AssignedOwnerID,
		fmt.Sprintf("Ticket %s (%s) has been assigned to you", payload.Number, payload.Category),
		ticketLink(event.SubjectID))
}

func (n *NotificationService) handleTicketTransitioned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketTransitionedPayload)
	if !ok {
		return nil
	}
	link := ticketLink(event.SubjectID)
	switch payload.Action {
	case domain.ActionReassign:
		if payload.ReassignedToID == nil {
			return nil
		}
		return n.notify(ctx, *payload.ReassignedToID,
			fmt.Sprintf("Ticket %s has been reassigned to you", payload.Number), link)
	case domain.ActionResolve:
		return n.notify(ctx, payload.EmployeeID,
			fmt.Sprintf("Ticket %s has been resolved. Please confirm closure", payload.Number), link)
	case domain.ActionClose, domain.ActionClusterClose:
		return n.notify(ctx, payload.EmployeeID,
			fmt.Sprintf("Ticket %s has been closed", payload.Number), link)
	case domain.ActionReject:
		return n.notify(ctx, payload.EmployeeID,
			fmt.Sprintf("Ticket %s has been rejected", payload.Number), link)
	case domain.ActionConfirm:
		if payload.AssignedOwnerID == nil {
			return nil
		}
		return n.notify(ctx, *payload.AssignedOwnerID,
			fmt.Sprintf("Staff confirmed closure of ticket %s", payload.Number), link)
	}
	return nil
}

func (n *NotificationService) handleKitchenLogCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.KitchenLogCreatedPayload)
	if !ok || payload.StaffID == nil {
		return nil
	}
	return n.notify(ctx, *payload.StaffID,
		fmt.Sprintf("A %s log was recorded for you", payload.Category),
		"/kitchen-logs")
}

func (n *NotificationService) notify(ctx context.Context, userID, message, link string) error {
	if n.notifications == nil || userID == "" {
		return nil
	}
	if err := n.notifications.Create(ctx, &domain.Notification{UserID: userID, Message: message, Link: link}); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	n.logger.Debug("notification stored", zap.String("user_id", userID), zap.String("link", link))
	return nil
}

func ticketLink(ticketID string) string {
	return "/tickets/" + ticketID
}

// List returns the caller's notifications, newest first.
func (n *NotificationService) List(ctx context.Context, actor scope.Subject, unreadOnly bool) ([]domain.Notification, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	items, err := n.notifications.ListByUser(ctx, actor.User.ID, unreadOnly)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// MarkRead flags one of the caller's notifications as read.
func (n *NotificationService) MarkRead(ctx context.Context, actor scope.Subject, notificationID string) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	if err := n.notifications.MarkRead(ctx, actor.User.ID, notificationID); err != nil {
		return notFoundOr(err, "notification", map[string]any{"notification_id": notificationID})
	}
	return nil
}

package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ops-portal/internal/api/dto"
	"github.com/spec-kit/ops-portal/internal/service"
)

// NotificationsHandler serves the caller's inbox.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notifications *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

// List handles GET /notifications?unread=true.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	actor, err := subject(c)
	if err != nil {
		return err
	}
	unread := parseBool(c.Query("unread"))
	items, err := h.notifications.List(c.UserContext(), actor, unread != nil && *unread)
	if err != nil {
		return err
	}
	resp := make([]dto.NotificationResponse, 0, len(items))
	for _, n := range items {
		resp = append(resp, dto.NotificationResponse{
			ID:        n.ID,
			Message:   n.Message,
			Link:      n.Link,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": resp})
}

// MarkRead handles POST /notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	actor, err := subject(c)
	if err != nil {
		return err
	}
	notificationID, err := pathID(c, "notification")
	if err != nil {
		return err
	}
	if err := h.notifications.MarkRead(c.UserContext(), actor, notificationID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

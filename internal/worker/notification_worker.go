package worker

import (
	"github.com/spec-kit/ops-portal/internal/events"
	"github.com/spec-kit/ops-portal/internal/service"
)

// StartNotificationWorker registers the in-app notification handlers and, when
// configured, the Redis fan-out of every event.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *service.NotificationService, redisPublisher *events.RedisPublisher) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if redisPublisher != nil && dispatcher != nil {
		redisPublisher.Register(dispatcher)
	}
}

package worker

import (
	"go.uber.org/zap"

	"github.com/faya/preorder-api/internal/service"
)

// StartNotificationWorker subscribes the notification service to order and account events.
func StartNotificationWorker(notifications *service.NotificationService, logger *zap.Logger) {
	if notifications == nil {
		return
	}
	notifications.RegisterHandlers()
	if logger != nil {
		logger.Info("notification worker subscribed")
	}
}

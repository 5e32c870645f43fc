package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/faya/preorder-api/internal/config"
	"github.com/faya/preorder-api/internal/events"
)

// NotificationService turns order events into outbound notifications. Delivery is
// stubbed and only logged.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventOrderPlaced, n.handleOrderPlaced)
	n.dispatcher.Subscribe(events.EventOrderStatusChanged, n.handleOrderStatusChanged)
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("UserRegistered", zap.String("user_id", event.ActorID))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleOrderPlaced(ctx context.Context, event events.Event) error {
	n.logger.Info("OrderPlaced", zap.String("order_id", event.OrderID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleOrderStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("OrderStatusChanged", zap.String("order_id", event.OrderID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("order_id", event.OrderID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("order_id", event.OrderID),
		zap.String("event_type", string(event.Type)))
}

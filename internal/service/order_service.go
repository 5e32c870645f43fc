package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/faya/preorder-api/internal/auth"
	"github.com/faya/preorder-api/internal/domain"
	"github.com/faya/preorder-api/internal/events"
	"github.com/faya/preorder-api/internal/repository"
	"github.com/faya/preorder-api/pkg/apperrors"
)

// MaxItemQuantity caps the quantity of one line item.
const MaxItemQuantity = 50

// OrderLine is one requested item of a new order.
type OrderLine struct {
	FoodItemID string
	Quantity   int
}

// OrderListQuery filters a caller's order listing.
type OrderListQuery struct {
	Status *domain.OrderStatus
	Limit  int
	Offset int
}

// OrderService places orders and drives their lifecycle.
type OrderService struct {
	orders     repository.OrderRepository
	items      repository.FoodItemRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewOrderService builds the service.
func NewOrderService(orders repository.OrderRepository, items repository.FoodItemRepository, dispatcher events.Dispatcher, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{orders: orders, items: items, dispatcher: dispatcher, logger: logger}
}

// Place creates a PENDING order for the student. Repeated items are merged. Every item
// must exist, be available and belong to the same vendor. Prices are captured now.
func (s *OrderService) Place(ctx context.Context, student *auth.Principal, lines []OrderLine) (*domain.Order, error) {
	if student == nil {
		return nil, apperrors.NewAuthRequired("principal required")
	}
	if !student.HasRole(domain.RoleStudent) {
		return nil, apperrors.NewForbidden("only students place orders")
	}

	quantities := make(map[string]int, len(lines))
	var ids []string
	for _, line := range lines {
		if _, seen := quantities[line.FoodItemID]; !seen {
			ids = append(ids, line.FoodItemID)
		}
		quantities[line.FoodItemID] += line.Quantity
	}

	found, err := s.items.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	byID := make(map[string]domain.FoodItem, len(found))
	for _, item := range found {
		byID[item.ID] = item
	}

	order := &domain.Order{
		StudentID: student.ID,
		Status:    domain.OrderStatusPending,
	}
	for _, id := range ids {
		item, ok := byID[id]
		if !ok {
			return nil, apperrors.NewNotFound("FoodItem", "id", id)
		}
		if !item.Available {
			return nil, apperrors.NewConflict(fmt.Sprintf("Food item '%s' is not available", item.Name))
		}
		if order.VendorID == "" {
			order.VendorID = item.VendorID
		} else if order.VendorID != item.VendorID {
			return nil, apperrors.NewConflict("All items in an order must come from the same vendor")
		}
		qty := quantities[id]
		if qty > MaxItemQuantity {
			return nil, apperrors.NewConflict(fmt.Sprintf("Quantity of '%s' may not exceed %d", item.Name, MaxItemQuantity))
		}
		order.Items = append(order.Items, domain.OrderItem{
			FoodItemID:           id,
			Quantity:             qty,
			PriceAtPurchaseCents: item.PriceCents,
		})
		order.TotalAmountCents += item.PriceCents * int64(qty)
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.publish(ctx, events.EventOrderPlaced, student.ID, order, events.OrderPlacedPayload{
		VendorID:         order.VendorID,
		StudentID:        order.StudentID,
		ItemCount:        len(order.Items),
		TotalAmountCents: order.TotalAmountCents,
	})
	return order, nil
}

// List returns the orders visible to the caller and the total count. Students see their
// own, vendors the ones addressed to them, admins all.
func (s *OrderService) List(ctx context.Context, caller *auth.Principal, q OrderListQuery) ([]domain.Order, int, error) {
	if caller == nil {
		return nil, 0, apperrors.NewAuthRequired("principal required")
	}
	filter := repository.OrderFilter{
		Status: q.Status,
		Page:   repository.Page{Limit: q.Limit, Offset: q.Offset},
	}
	switch {
	case caller.HasRole(domain.RoleAdmin):
	case caller.HasRole(domain.RoleVendor):
		filter.VendorID = &caller.ID
	case caller.HasRole(domain.RoleStudent):
		filter.StudentID = &caller.ID
	default:
		return nil, 0, apperrors.NewForbidden("no role permits listing orders")
	}

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, total, nil
}

// Get returns one order if the caller placed it, fulfils it or is an admin.
func (s *OrderService) Get(ctx context.Context, caller *auth.Principal, id string) (*domain.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(caller, order) {
		return nil, apperrors.NewForbidden("order not visible to caller")
	}
	return order, nil
}

// Cancel moves the student's own PENDING order to CANCELLED.
func (s *OrderService) Cancel(ctx context.Context, caller *auth.Principal, id string) (*domain.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller == nil || order.StudentID != caller.ID {
		return nil, apperrors.NewForbidden("only the ordering student may cancel")
	}
	if !order.Status.CanTransition(domain.OrderStatusCancelled) {
		return nil, apperrors.NewConflict("Only pending orders can be cancelled")
	}
	return s.transition(ctx, caller, order, domain.OrderStatusCancelled)
}

// UpdateStatus advances an order. Only its vendor or an admin may do so.
func (s *OrderService) UpdateStatus(ctx context.Context, caller *auth.Principal, id string, next domain.OrderStatus) (*domain.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller == nil || !(caller.HasRole(domain.RoleAdmin) || (caller.HasRole(domain.RoleVendor) && order.VendorID == caller.ID)) {
		return nil, apperrors.NewForbidden("only the order's vendor may change its status")
	}
	if !order.Status.CanTransition(next) {
		return nil, apperrors.NewConflict(fmt.Sprintf("Cannot change order status from %s to %s", order.Status, next))
	}
	return s.transition(ctx, caller, order, next)
}

func (s *OrderService) transition(ctx context.Context, caller *auth.Principal, order *domain.Order, next domain.OrderStatus) (*domain.Order, error) {
	updated, err := s.orders.UpdateStatus(ctx, order.ID, order.Status, next)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrStaleState):
			return nil, apperrors.NewConflict("Order was modified concurrently; reload and retry")
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NewNotFound("Order", "id", order.ID)
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	s.publish(ctx, events.EventOrderStatusChanged, caller.ID, updated, events.OrderStatusChangedPayload{
		OldStatus: order.Status,
		NewStatus: next,
	})
	return updated, nil
}

func (s *OrderService) load(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("Order", "id", id)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

func (s *OrderService) publish(ctx context.Context, eventType events.EventType, actorID string, order *domain.Order, payload any) {
	if s.dispatcher == nil {
		return
	}
	event := events.New(eventType, actorID, payload)
	event.OrderID = order.ID
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

func canView(caller *auth.Principal, order *domain.Order) bool {
	if caller == nil {
		return false
	}
	switch {
	case caller.HasRole(domain.RoleAdmin):
		return true
	case caller.HasRole(domain.RoleVendor) && order.VendorID == caller.ID:
		return true
	default:
		return order.StudentID == caller.ID
	}
}

package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/faya/preorder-api/internal/api/dto"
	"github.com/faya/preorder-api/internal/auth"
	"github.com/faya/preorder-api/internal/domain"
	"github.com/faya/preorder-api/internal/service"
	"github.com/faya/preorder-api/pkg/apperrors"
)

// OrdersHandler exposes order placement and lifecycle endpoints.
type OrdersHandler struct {
	orders *service.OrderService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orders *service.OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

// Create handles POST /api/v1/orders.
func (h *OrdersHandler) Create(c *fiber.Ctx) error {
	req := new(dto.CreateOrderRequest)
	if err := bind(c, req); err != nil {
		return err
	}
	principal, _ := auth.PrincipalFromContext(c)

	lines := make([]service.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, service.OrderLine{FoodItemID: item.FoodItemID, Quantity: item.Quantity})
	}

	order, err := h.orders.Place(c.UserContext(), principal, lines)
	if err != nil {
		return err
	}
	c.Location("/api/v1/orders/" + order.ID)
	return respond(c, fiber.StatusCreated, "Order placed", dto.NewOrderResponse(order))
}

// List handles GET /api/v1/orders.
func (h *OrdersHandler) List(c *fiber.Ctx) error {
	limit, offset, err := page(c)
	if err != nil {
		return err
	}
	q := service.OrderListQuery{Limit: limit, Offset: offset}
	if raw := c.Query("status"); raw != "" {
		status := domain.OrderStatus(raw)
		if !status.Valid() {
			return apperrors.NewTypeMismatch("status", "OrderStatus", nil)
		}
		q.Status = &status
	}

	principal, _ := auth.PrincipalFromContext(c)
	orders, total, err := h.orders.List(c.UserContext(), principal, q)
	if err != nil {
		return err
	}
	c.Set("X-Total-Count", strconv.Itoa(total))
	return respond(c, fiber.StatusOK, "Orders retrieved", dto.NewOrderList(orders))
}

// Get handles GET /api/v1/orders/:id.
func (h *OrdersHandler) Get(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	principal, _ := auth.PrincipalFromContext(c)
	order, err := h.orders.Get(c.UserContext(), principal, id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Order retrieved", dto.NewOrderResponse(order))
}

// Cancel handles POST /api/v1/orders/:id/cancel.
func (h *OrdersHandler) Cancel(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	principal, _ := auth.PrincipalFromContext(c)
	order, err := h.orders.Cancel(c.UserContext(), principal, id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Order cancelled", dto.NewOrderResponse(order))
}

// UpdateStatus handles PATCH /api/v1/orders/:id/status.
func (h *OrdersHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	req := new(dto.UpdateOrderStatusRequest)
	if err := bind(c, req); err != nil {
		return err
	}
	principal, _ := auth.PrincipalFromContext(c)
	order, err := h.orders.UpdateStatus(c.UserContext(), principal, id, req.Status)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Order status updated", dto.NewOrderResponse(order))
}

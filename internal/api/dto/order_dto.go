package dto

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/faya/preorder-api/internal/domain"
)

const (
	maxOrderLines   = 20
	maxLineQuantity = 50
)

// OrderLineRequest is one requested item.
type OrderLineRequest struct {
	FoodItemID string `json:"foodItemId"`
	Quantity   int    `json:"quantity"`
}

// CreateOrderRequest payload for placing an order.
type CreateOrderRequest struct {
	Items []OrderLineRequest `json:"items"`
}

// Validate checks the order payload. Nested fields use dot paths, e.g. items[0].quantity.
func (r CreateOrderRequest) Validate() error {
	var v violations
	switch {
	case len(r.Items) == 0:
		v.add("items", nil, "Order must contain at least one item")
	case len(r.Items) > maxOrderLines:
		v.add("items", len(r.Items), fmt.Sprintf("Order may contain at most %d items", maxOrderLines))
	}
	for i, line := range r.Items {
		prefix := fmt.Sprintf("items[%d]", i)
		if _, err := uuid.Parse(line.FoodItemID); err != nil {
			v.add(prefix+".foodItemId", line.FoodItemID, "Food item id must be a valid UUID")
		}
		if line.Quantity < 1 || line.Quantity > maxLineQuantity {
			v.add(prefix+".quantity", line.Quantity, fmt.Sprintf("Quantity must be between 1 and %d", maxLineQuantity))
		}
	}
	return v.err()
}

// UpdateOrderStatusRequest payload for vendor status changes.
type UpdateOrderStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

// Validate checks the status payload.
func (r UpdateOrderStatusRequest) Validate() error {
	var v violations
	switch {
	case r.Status == "":
		v.add("status", nil, "Status is required")
	case !r.Status.Valid():
		v.add("status", r.Status, "Status must be one of PENDING, CONFIRMED, READY, COMPLETED, CANCELLED")
	}
	return v.err()
}

// OrderItemResponse is one line of an order.
type OrderItemResponse struct {
	FoodItemID           string `json:"foodItemId"`
	Quantity             int    `json:"quantity"`
	PriceAtPurchaseCents int64  `json:"priceAtPurchaseCents"`
}

// OrderResponse is the public view of an order.
type OrderResponse struct {
	ID               string              `json:"id"`
	StudentID        string              `json:"studentId"`
	VendorID         string              `json:"vendorId"`
	Status           domain.OrderStatus  `json:"status"`
	TotalAmountCents int64               `json:"totalAmountCents"`
	Items            []OrderItemResponse `json:"items"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

// NewOrderResponse projects an order.
func NewOrderResponse(o *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			FoodItemID:           item.FoodItemID,
			Quantity:             item.Quantity,
			PriceAtPurchaseCents: item.PriceAtPurchaseCents,
		})
	}
	return OrderResponse{
		ID:               o.ID,
		StudentID:        o.StudentID,
		VendorID:         o.VendorID,
		Status:           o.Status,
		TotalAmountCents: o.TotalAmountCents,
		Items:            items,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

// NewOrderList projects a listing, never returning nil.
func NewOrderList(orders []domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderResponse(&orders[i]))
	}
	return out
}

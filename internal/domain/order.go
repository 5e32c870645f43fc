package domain

import "time"

// OrderStatus enumerates order lifecycle states.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusReady     OrderStatus = "READY"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// orderTransitions lists the forward moves a vendor may make.
var orderTransitions = map[OrderStatus]OrderStatus{
	OrderStatusPending:   OrderStatusConfirmed,
	OrderStatusConfirmed: OrderStatusReady,
	OrderStatusReady:     OrderStatusCompleted,
}

// CanTransition reports whether an order may move from s to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if next == OrderStatusCancelled {
		return s == OrderStatusPending
	}
	return orderTransitions[s] == next
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusReady, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is a student's pre-order placed with a single vendor.
type Order struct {
	ID               string
	StudentID        string
	VendorID         string
	Status           OrderStatus
	TotalAmountCents int64
	Items            []OrderItem
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OrderItem snapshots the price of a food item at purchase time.
type OrderItem struct {
	ID                   string
	OrderID              string
	FoodItemID           string
	Quantity             int
	PriceAtPurchaseCents int64
}

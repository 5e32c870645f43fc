package domain

import "time"

// FoodItem is a vendor's menu entry.
type FoodItem struct {
	ID          string
	VendorID    string
	Name        string
	Description string
	// PriceCents avoids floating point money.
	PriceCents int64
	Available  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

package dto

import (
	"time"

	"github.com/faya/preorder-api/internal/domain"
)

// FoodItemResponse is the public view of a menu item.
type FoodItemResponse struct {
	ID          string    `json:"id"`
	VendorID    string    `json:"vendorId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"priceCents"`
	Available   bool      `json:"available"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewFoodItemResponse projects a food item.
func NewFoodItemResponse(item domain.FoodItem) FoodItemResponse {
	return FoodItemResponse{
		ID:          item.ID,
		VendorID:    item.VendorID,
		Name:        item.Name,
		Description: item.Description,
		PriceCents:  item.PriceCents,
		Available:   item.Available,
		UpdatedAt:   item.UpdatedAt,
	}
}

// NewFoodItemList projects a listing, never returning nil.
func NewFoodItemList(items []domain.FoodItem) []FoodItemResponse {
	out := make([]FoodItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewFoodItemResponse(item))
	}
	return out
}

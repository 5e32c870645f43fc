package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/faya/preorder-api/internal/api/dto"
	"github.com/faya/preorder-api/internal/service"
)

// MenuHandler serves the public menu catalogue.
type MenuHandler struct {
	menu *service.MenuService
}

// NewMenuHandler constructs handler.
func NewMenuHandler(menu *service.MenuService) *MenuHandler {
	return &MenuHandler{menu: menu}
}

// List handles GET /api/v1/menu.
func (h *MenuHandler) List(c *fiber.Ctx) error {
	vendorID, err := optionalUUIDQuery(c, "vendorId")
	if err != nil {
		return err
	}
	limit, offset, err := page(c)
	if err != nil {
		return err
	}

	items, err := h.menu.List(c.UserContext(), service.MenuQuery{VendorID: vendorID, Limit: limit, Offset: offset})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Menu retrieved", dto.NewFoodItemList(items))
}

// Get handles GET /api/v1/menu/:id.
func (h *MenuHandler) Get(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	item, err := h.menu.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Menu item retrieved", dto.NewFoodItemResponse(*item))
}

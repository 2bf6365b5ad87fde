package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tastegent/tastegent/internal/domain"
	"github.com/tastegent/tastegent/internal/service"
)

// MenuHandler handles public menu reads and admin catalog mutations
type MenuHandler struct {
	menuService *service.MenuService
}

// NewMenuHandler creates a new MenuHandler
func NewMenuHandler(menuService *service.MenuService) *MenuHandler {
	return &MenuHandler{menuService: menuService}
}

// ListMenu handles GET /menu
// Returns the full catalog, ordered by insertion
func (h *MenuHandler) ListMenu(c *fiber.Ctx) error {
	items, err := h.menuService.List(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(items)
}

// GetMenuItem handles GET /menu/:id
func (h *MenuHandler) GetMenuItem(c *fiber.Ctx) error {
	item, err := h.menuService.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return menuError(c, err)
	}
	return c.JSON(item)
}

// CreateMenuItem handles POST /admin/menu
func (h *MenuHandler) CreateMenuItem(c *fiber.Ctx) error {
	var item domain.MenuItem
	if err := c.BodyParser(&item); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	created, err := h.menuService.Create(c.UserContext(), &item)
	if err != nil {
		return menuError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateMenuItem handles PUT /admin/menu/:id
// Replaces the item's editable fields; the image URL survives unless sent
func (h *MenuHandler) UpdateMenuItem(c *fiber.Ctx) error {
	var item domain.MenuItem
	if err := c.BodyParser(&item); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	item.ID = c.Params("id")

	updated, err := h.menuService.Update(c.UserContext(), &item)
	if err != nil {
		return menuError(c, err)
	}

	return c.JSON(updated)
}

// AssociateImageRequest is the body for the image association endpoint
type AssociateImageRequest struct {
	ImageURL string `json:"imageUrl"`
}

// AssociateImage handles PUT /admin/menu/:id/image
// Narrow mutation: sets only the item's image URL, leaving other fields alone
func (h *MenuHandler) AssociateImage(c *fiber.Ctx) error {
	var req AssociateImageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := h.menuService.AssociateImage(c.UserContext(), c.Params("id"), req.ImageURL); err != nil {
		return menuError(c, err)
	}

	item, err := h.menuService.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return menuError(c, err)
	}

	return c.JSON(item)
}

// DeleteMenuItem handles DELETE /admin/menu/:id
func (h *MenuHandler) DeleteMenuItem(c *fiber.Ctx) error {
	if err := h.menuService.Delete(c.UserContext(), c.Params("id")); err != nil {
		return menuError(c, err)
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}

// menuError maps catalog errors to HTTP status codes
func menuError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrMenuItemNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Menu item not found"})
	case errors.Is(err, domain.ErrInvalidID), errors.Is(err, domain.ErrInvalidMenuItem):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrDuplicateMenuItem):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Menu item with this name already exists"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

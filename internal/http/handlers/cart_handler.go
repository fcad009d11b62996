package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "bazaar/internal/log"
	"bazaar/internal/services"
	"bazaar/internal/validate"
)

type CartHandler struct {
	Cart    *services.CartService
	Catalog *services.CatalogService
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	u := currentUser(c)
	items, err := h.Cart.List(c.Context(), u.ID)
	if err != nil {
		applog.Error(c, "cart.view.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load cart"})
	}
	total, err := h.Cart.Total(c.Context(), u.ID)
	if err != nil {
		applog.Error(c, "cart.total.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load cart"})
	}
	return c.JSON(fiber.Map{"items": items, "total": total})
}

type addToCartRequest struct {
	ProductID string `json:"productId"`
}

// Add puts one unit of the product in the cart, capped at the product's
// current stock.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	u := currentUser(c)
	var req addToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad request body"})
	}
	id, ok := validate.ID(req.ProductID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}

	p, err := h.Catalog.Get(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}

	if err := h.Cart.AddOrIncrement(c.Context(), u.ID, p); err != nil {
		if errors.Is(err, services.ErrCartLimit) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "cannot add more", "maxQuantity": p.Quantity,
			})
		}
		applog.Error(c, "cart.add.fail", err, map[string]any{"product_id": id})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not update cart"})
	}
	return c.JSON(fiber.Map{"ok": true})
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) SetQuantity(c *fiber.Ctx) error {
	u := currentUser(c)
	id, ok := validate.ID(c.Params("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	var req setQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad request body"})
	}

	err := h.Cart.SetQuantity(c.Context(), u.ID, id, req.Quantity)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"ok": true})
	case errors.Is(err, services.ErrBadQuantity):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "quantity must be at least 1"})
	case errors.Is(err, services.ErrCartLimit):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "cannot add more"})
	default:
		applog.Error(c, "cart.set.fail", err, map[string]any{"product_id": id})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not update cart"})
	}
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	u := currentUser(c)
	id, ok := validate.ID(c.Params("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	if err := h.Cart.Remove(c.Context(), u.ID, id); err != nil {
		applog.Error(c, "cart.remove.fail", err, map[string]any{"product_id": id})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not update cart"})
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	u := currentUser(c)
	if err := h.Cart.Clear(c.Context(), u.ID); err != nil {
		applog.Error(c, "cart.clear.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not clear cart"})
	}
	return c.JSON(fiber.Map{"ok": true})
}

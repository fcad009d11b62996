package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "bazaar/internal/log"
	"bazaar/internal/services"
)

type CheckoutHandler struct {
	Checkout *services.CheckoutService
}

// Place runs the cart through the purchase workflow and reports per-item
// outcome counts. Partial failures are a 200 with a non-zero failed count;
// the failed items stay in the cart for retry.
func (h *CheckoutHandler) Place(c *fiber.Ctx) error {
	u := currentUser(c)
	res, err := h.Checkout.Checkout(c.Context(), u.ID)
	if err != nil {
		if errors.Is(err, services.ErrCartEmpty) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cart is empty"})
		}
		applog.Error(c, "checkout.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not complete checkout"})
	}
	applog.Audit(c, "checkout.place", map[string]any{
		"succeeded": res.Succeeded,
		"failed":    res.Failed,
	})
	return c.JSON(res)
}

// History lists the user's purchases, newest first.
func (h *CheckoutHandler) History(c *fiber.Ctx) error {
	u := currentUser(c)
	purchases, err := h.Checkout.History(u.ID)
	if err != nil {
		applog.Error(c, "history.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load history"})
	}
	return c.JSON(purchases)
}

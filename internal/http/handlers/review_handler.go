package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "bazaar/internal/log"
	"bazaar/internal/services"
	"bazaar/internal/validate"
)

type ReviewHandler struct {
	Reviews *services.ReviewService
	Catalog *services.CatalogService
}

func (h *ReviewHandler) List(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	reviews, err := h.Reviews.ListForProduct(id)
	if err != nil {
		applog.Error(c, "reviews.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load reviews"})
	}
	return c.JSON(reviews)
}

type addReviewRequest struct {
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
}

func (h *ReviewHandler) Add(c *fiber.Ctx) error {
	u := currentUser(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	var req addReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad request body"})
	}
	if !validate.Rating(req.Rating) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "rating must be between 1 and 5"})
	}
	if _, err := h.Catalog.Get(id); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}

	err := h.Reviews.Add(u, id, req.Rating, req.Comment)
	switch {
	case err == nil:
		applog.Audit(c, "reviews.add", map[string]any{"product_id": id})
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true})
	case errors.Is(err, services.ErrNotPurchased):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "purchase the product before reviewing it"})
	case errors.Is(err, services.ErrAlreadyReviewed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "you already reviewed this product"})
	default:
		applog.Error(c, "reviews.add.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not save review"})
	}
}

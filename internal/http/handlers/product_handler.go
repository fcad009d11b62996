package handlers

import (
	"database/sql"
	"errors"

	"github.com/gofiber/fiber/v2"

	"bazaar/internal/domain"
	applog "bazaar/internal/log"
	"bazaar/internal/services"
	"bazaar/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

type productRequest struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	ImageURL    string  `json:"imageUrl"`
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	products, err := h.Catalog.ListAll()
	if err != nil {
		applog.Error(c, "products.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load products"})
	}
	return c.JSON(products)
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	p, err := h.Catalog.Get(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	return c.JSON(p)
}

// ListMine returns the seller's own products; loading the list also runs the
// low-stock batch scan.
func (h *ProductHandler) ListMine(c *fiber.Ctx) error {
	u := currentUser(c)
	products, err := h.Catalog.ListBySeller(c.Context(), u.ID)
	if err != nil {
		applog.Error(c, "products.mine.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load products"})
	}
	return c.JSON(products)
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	u := currentUser(c)
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad request body"})
	}
	name, ok := validate.Name(req.Name)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name must be 1-50 characters"})
	}
	if !validate.Price(req.Price) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid price"})
	}
	if req.Quantity < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "quantity must be non-negative"})
	}

	p, err := h.Catalog.Add(u, domain.Product{
		Name:        name,
		Price:       req.Price,
		Description: req.Description,
		Quantity:    req.Quantity,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		applog.Error(c, "products.create.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not create product"})
	}
	applog.Audit(c, "products.create", map[string]any{"product_id": p.ProductID})
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	u := currentUser(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad request body"})
	}
	name, ok := validate.Name(req.Name)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name must be 1-50 characters"})
	}
	if !validate.Price(req.Price) || req.Quantity < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid price or quantity"})
	}

	err := h.Catalog.Update(c.Context(), u.ID, domain.Product{
		ProductID:     id,
		Name:          name,
		Price:         req.Price,
		Description:   req.Description,
		Quantity:      req.Quantity,
		ImageURL:      req.ImageURL,
		SellerCompany: u.CompanyName,
	})
	switch {
	case err == nil:
		applog.Audit(c, "products.update", map[string]any{"product_id": id})
		return c.JSON(fiber.Map{"ok": true})
	case errors.Is(err, services.ErrNotOwner):
		applog.Security(c, "access.denied.product", map[string]any{"product_id": id})
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not your product"})
	case errors.Is(err, sql.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	default:
		applog.Error(c, "products.update.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not update product"})
	}
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	u := currentUser(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	err := h.Catalog.Delete(u.ID, id)
	switch {
	case err == nil:
		applog.Audit(c, "products.delete", map[string]any{"product_id": id})
		return c.JSON(fiber.Map{"ok": true})
	case errors.Is(err, services.ErrNotOwner):
		applog.Security(c, "access.denied.product", map[string]any{"product_id": id})
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not your product"})
	case errors.Is(err, sql.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	default:
		applog.Error(c, "products.delete.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not delete product"})
	}
}

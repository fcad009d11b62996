package services

import (
	"context"
	"errors"

	"bazaar/internal/domain"
	"bazaar/internal/kvstore"
)

// ErrCartLimit signals that adding one more unit would exceed the product's
// last-known available stock.
var ErrCartLimit = errors.New("cart quantity limit reached")

var ErrBadQuantity = errors.New("quantity must be at least 1")

const cartNamespace = "cart_data"

// CartService owns all cart state. Every cart entry is a field group in the
// buyer's key-value namespace plus a membership in the product-id set; the
// two are kept in step on every mutation, and List drops any entry where
// they drifted apart.
type CartService struct {
	Store *kvstore.Store
}

func NewCartService(store *kvstore.Store) *CartService { return &CartService{Store: store} }

func cartNS(userID string) string { return cartNamespace + ":" + userID }

func itemKey(productID, field string) string { return "product_" + productID + "_" + field }

// AddOrIncrement adds one unit of the product to the buyer's cart. The
// product carries its current stock count, which becomes the cart item's
// max-quantity snapshot; when the stored quantity has already reached that
// snapshot the call is a no-op and reports ErrCartLimit. All item fields are
// rewritten on every call so a fresher stock snapshot always wins.
func (s *CartService) AddOrIncrement(ctx context.Context, userID string, p domain.Product) error {
	if p.ProductID == "" {
		return errors.New("missing product id")
	}

	ns := cartNS(userID)
	current, err := s.Store.GetInt(ctx, ns, itemKey(p.ProductID, "quantity"))
	if err != nil {
		return err
	}
	if current >= p.Quantity {
		return ErrCartLimit
	}

	if err := s.Store.SetString(ctx, ns, itemKey(p.ProductID, "name"), p.Name); err != nil {
		return err
	}
	if err := s.Store.SetFloat(ctx, ns, itemKey(p.ProductID, "price"), p.Price); err != nil {
		return err
	}
	if err := s.Store.SetString(ctx, ns, itemKey(p.ProductID, "image"), p.ImageURL); err != nil {
		return err
	}
	if err := s.Store.SetInt(ctx, ns, itemKey(p.ProductID, "quantity"), current+1); err != nil {
		return err
	}
	if err := s.Store.SetInt(ctx, ns, itemKey(p.ProductID, "max_quantity"), p.Quantity); err != nil {
		return err
	}
	return s.Store.AddToSet(ctx, ns, "cart_product_ids", p.ProductID)
}

// SetQuantity sets an existing item's quantity directly, clamped into
// [1, max-quantity snapshot].
func (s *CartService) SetQuantity(ctx context.Context, userID, productID string, qty int) error {
	if qty < 1 {
		return ErrBadQuantity
	}
	ns := cartNS(userID)
	max, err := s.Store.GetInt(ctx, ns, itemKey(productID, "max_quantity"))
	if err != nil {
		return err
	}
	if qty > max {
		return ErrCartLimit
	}
	return s.Store.SetInt(ctx, ns, itemKey(productID, "quantity"), qty)
}

// Remove deletes the item's field group and its set membership.
func (s *CartService) Remove(ctx context.Context, userID, productID string) error {
	ns := cartNS(userID)
	if err := s.Store.Delete(ctx, ns,
		itemKey(productID, "name"),
		itemKey(productID, "price"),
		itemKey(productID, "image"),
		itemKey(productID, "quantity"),
		itemKey(productID, "max_quantity"),
	); err != nil {
		return err
	}
	return s.Store.RemoveFromSet(ctx, ns, "cart_product_ids", productID)
}

func (s *CartService) Clear(ctx context.Context, userID string) error {
	return s.Store.ClearNamespace(ctx, cartNS(userID))
}

// List materializes the cart from the store. Entries with an empty product
// id, empty name, or non-positive quantity are dropped without error; a
// half-written entry heals itself by disappearing.
func (s *CartService) List(ctx context.Context, userID string) ([]domain.CartItem, error) {
	ns := cartNS(userID)
	ids, err := s.Store.Members(ctx, ns, "cart_product_ids")
	if err != nil {
		return nil, err
	}

	items := make([]domain.CartItem, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		name, err := s.Store.GetString(ctx, ns, itemKey(id, "name"))
		if err != nil {
			return nil, err
		}
		qty, err := s.Store.GetInt(ctx, ns, itemKey(id, "quantity"))
		if err != nil {
			return nil, err
		}
		if name == "" || qty <= 0 {
			continue
		}
		price, err := s.Store.GetFloat(ctx, ns, itemKey(id, "price"))
		if err != nil {
			return nil, err
		}
		image, err := s.Store.GetString(ctx, ns, itemKey(id, "image"))
		if err != nil {
			return nil, err
		}
		max, err := s.Store.GetInt(ctx, ns, itemKey(id, "max_quantity"))
		if err != nil {
			return nil, err
		}
		items = append(items, domain.CartItem{
			ProductID:   id,
			ProductName: name,
			Price:       price,
			Quantity:    qty,
			ImageURL:    image,
			MaxQuantity: max,
		})
	}
	return items, nil
}

// Total sums price times quantity over the materialized cart.
func (s *CartService) Total(ctx context.Context, userID string) (float64, error) {
	items, err := s.List(ctx, userID)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return total, nil
}

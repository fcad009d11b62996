package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bazaar/internal/domain"
	applog "bazaar/internal/log"
	"bazaar/internal/notify"
	"bazaar/internal/repos"
)

var ErrCartEmpty = errors.New("cart is empty")

// CheckoutResult aggregates the per-item outcomes of a checkout.
type CheckoutResult struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// CheckoutService runs the inventory and purchase workflow: each cart item is
// converted independently into a stock decrement plus a purchase record, with
// no cross-item rollback.
type CheckoutService struct {
	Products  *repos.ProductRepo
	Purchases *repos.PurchaseRepo
	Cart      *CartService
	Gate      *notify.Gate
	Threshold int
}

func NewCheckoutService(products *repos.ProductRepo, purchases *repos.PurchaseRepo, cart *CartService, gate *notify.Gate, threshold int) *CheckoutService {
	return &CheckoutService{Products: products, Purchases: purchases, Cart: cart, Gate: gate, Threshold: threshold}
}

// ReduceQuantity decrements the product's stock by n, or returns
// repos.ErrInsufficientStock leaving the counter untouched. When the
// decrement moves the stock from above the low band into it, and the product
// belongs to the acting user, a low-stock alert is routed through the gate.
// A decrement that stays inside the band does not re-alert.
func (s *CheckoutService) ReduceQuantity(ctx context.Context, actorID, productID string, n int) error {
	p, err := s.Products.Get(productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repos.ErrInsufficientStock
		}
		return err
	}

	newQty, err := s.Products.DecrementQuantity(productID, n)
	if err != nil {
		return err
	}

	// prev is reconstructed from the guarded decrement's result, so the edge
	// check cannot double-fire under concurrent purchases.
	prev := newQty + n
	if newQty > 0 && newQty <= s.Threshold && prev > s.Threshold && p.SellerID == actorID {
		p.Quantity = newQty
		s.Gate.Notify(ctx, p)
	}
	return nil
}

// ProcessPurchase reduces stock for one item and appends the purchase record.
// If the record append fails after the decrement succeeded, the item is
// reported failed; stock and history diverge on that path and no compensation
// is attempted.
func (s *CheckoutService) ProcessPurchase(ctx context.Context, userID string, purchase domain.Purchase) error {
	if err := s.ReduceQuantity(ctx, userID, purchase.ProductID, purchase.Quantity); err != nil {
		return err
	}
	return s.Purchases.Append(userID, purchase)
}

// Checkout converts every cart item into a purchase, strictly sequentially.
// Each item that succeeds is removed from the cart immediately, so a partial
// failure leaves only the failed items behind; full success clears the cart
// wholesale.
func (s *CheckoutService) Checkout(ctx context.Context, userID string) (CheckoutResult, error) {
	items, err := s.Cart.List(ctx, userID)
	if err != nil {
		return CheckoutResult{}, err
	}
	if len(items) == 0 {
		return CheckoutResult{}, ErrCartEmpty
	}

	var res CheckoutResult
	date := currentDate()
	for _, it := range items {
		purchase := domain.Purchase{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Price:       it.Price,
			Quantity:    it.Quantity,
			Date:        date,
		}
		if err := s.ProcessPurchase(ctx, userID, purchase); err != nil {
			applog.Error(nil, "checkout.item.fail", err, map[string]any{"product_id": it.ProductID})
			res.Failed++
			continue
		}
		res.Succeeded++
		if err := s.Cart.Remove(ctx, userID, it.ProductID); err != nil {
			applog.Error(nil, "checkout.cart.remove.fail", err, map[string]any{"product_id": it.ProductID})
		}
	}

	if res.Failed == 0 {
		if err := s.Cart.Clear(ctx, userID); err != nil {
			applog.Error(nil, "checkout.cart.clear.fail", err, nil)
		}
	}
	return res, nil
}

// History returns the user's purchases, newest first.
func (s *CheckoutService) History(userID string) ([]domain.Purchase, error) {
	return s.Purchases.ListByUser(userID)
}

func currentDate() string {
	return time.Now().Format("2006-01-02")
}

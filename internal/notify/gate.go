package notify

import (
	"context"
	"time"

	"bazaar/internal/domain"
	"bazaar/internal/kvstore"
	applog "bazaar/internal/log"
)

const (
	prefsNamespace     = "notification_prefs"
	keyLastNotified    = "last_notification_time_" // + product id, epoch millis
	keySessionNotified = "session_notifications_shown"
)

// Gate decides whether a low-stock alert may fire for a product. Per-product
// cool-down timestamps and the per-session batch flag live in the key-value
// store under the seller's namespace.
type Gate struct {
	Store     *kvstore.Store
	Pub       Publisher
	Cooldown  time.Duration
	Threshold int
}

func NewGate(store *kvstore.Store, pub Publisher, cooldown time.Duration, threshold int) *Gate {
	return &Gate{Store: store, Pub: pub, Cooldown: cooldown, Threshold: threshold}
}

func prefsNS(sellerID string) string { return prefsNamespace + ":" + sellerID }

// ShouldNotify reports whether the cool-down window for this product has
// elapsed. Timestamps are epoch millis; the comparison goes through
// time.Duration so the window's unit is explicit.
func (g *Gate) ShouldNotify(ctx context.Context, sellerID, productID string) bool {
	last, err := g.Store.GetInt64(ctx, prefsNS(sellerID), keyLastNotified+productID)
	if err != nil {
		return false
	}
	elapsed := time.Duration(time.Now().UnixMilli()-last) * time.Millisecond
	return elapsed > g.Cooldown
}

// Notify publishes a low-stock alert for the product if the cool-down allows
// it, and records the publish time on success. Publish failures are logged
// and swallowed; alerting never breaks the calling workflow. Returns whether
// an alert actually fired.
func (g *Gate) Notify(ctx context.Context, p domain.Product) bool {
	if !g.ShouldNotify(ctx, p.SellerID, p.ProductID) {
		return false
	}
	alert := LowStockAlert{
		ProductID: p.ProductID,
		Name:      p.Name,
		Quantity:  p.Quantity,
		SellerID:  p.SellerID,
	}
	if err := g.Pub.PublishLowStock(ctx, alert); err != nil {
		applog.Error(nil, "notify.publish.fail", err, map[string]any{"product_id": p.ProductID})
		return false
	}
	if err := g.Store.SetInt64(ctx, prefsNS(p.SellerID), keyLastNotified+p.ProductID, time.Now().UnixMilli()); err != nil {
		applog.Error(nil, "notify.mark.fail", err, map[string]any{"product_id": p.ProductID})
	}
	return true
}

// BatchCheck scans a seller's products and alerts for every low-stock one.
// The whole batch fires at most once per session: if any alert went out, the
// session flag suppresses firing on subsequent scans until the seller logs
// out. The scan itself still runs so the flag is only set when warranted.
func (g *Gate) BatchCheck(ctx context.Context, sellerID string, products []domain.Product) {
	shown, err := g.Store.GetBool(ctx, prefsNS(sellerID), keySessionNotified)
	if err != nil || shown {
		return
	}

	fired := false
	for _, p := range products {
		if p.Quantity <= g.Threshold && p.Quantity >= 0 {
			if g.Notify(ctx, p) {
				fired = true
			}
		}
	}

	if fired {
		if err := g.Store.SetBool(ctx, prefsNS(sellerID), keySessionNotified, true); err != nil {
			applog.Error(nil, "notify.session.flag.fail", err, map[string]any{"seller_id": sellerID})
		}
	}
}

// ClearSession re-arms batch notification for the seller's next login.
func (g *Gate) ClearSession(ctx context.Context, sellerID string) {
	if err := g.Store.SetBool(ctx, prefsNS(sellerID), keySessionNotified, false); err != nil {
		applog.Error(nil, "notify.session.clear.fail", err, map[string]any{"seller_id": sellerID})
	}
}

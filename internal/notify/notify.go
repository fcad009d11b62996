// Package notify rate-limits low-stock alerts for sellers and publishes them
// to a message broker for out-of-band delivery.
package notify

import "context"

// LowStockAlert is the message published when a product's stock drops into
// the low band.
type LowStockAlert struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	SellerID  string `json:"sellerId"`
}

// Publisher delivers alerts to whatever transport is configured. Delivery is
// best-effort; the gate swallows publish errors.
type Publisher interface {
	PublishLowStock(ctx context.Context, alert LowStockAlert) error
}

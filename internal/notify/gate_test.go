package notify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bazaar/internal/domain"
	"bazaar/internal/kvstore"
	"bazaar/internal/notify"
)

type recordingPub struct {
	alerts []notify.LowStockAlert
	err    error
}

func (p *recordingPub) PublishLowStock(_ context.Context, a notify.LowStockAlert) error {
	if p.err != nil {
		return p.err
	}
	p.alerts = append(p.alerts, a)
	return nil
}

func newGateFixture(t *testing.T) (*kvstore.Store, *recordingPub, *notify.Gate) {
	t.Helper()
	mr := miniredis.RunT(t)
	kv := kvstore.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	pub := &recordingPub{}
	return kv, pub, notify.NewGate(kv, pub, 60*time.Second, 10)
}

func lowProduct(id string, qty int) domain.Product {
	return domain.Product{ProductID: id, Name: "Thing " + id, Quantity: qty, SellerID: "u-seller"}
}

func TestNotifyRespectsCooldown(t *testing.T) {
	ctx := context.Background()
	kv, pub, gate := newGateFixture(t)

	assert.True(t, gate.Notify(ctx, lowProduct("p-1", 4)))
	assert.False(t, gate.Notify(ctx, lowProduct("p-1", 3)))
	assert.Len(t, pub.alerts, 1)

	// backdate the last-fired timestamp past the window
	stale := time.Now().Add(-2 * time.Minute).UnixMilli()
	require.NoError(t, kv.SetInt64(ctx, "notification_prefs:u-seller", "last_notification_time_p-1", stale))

	assert.True(t, gate.Notify(ctx, lowProduct("p-1", 3)))
	assert.Len(t, pub.alerts, 2)
}

func TestNotifyCooldownIsPerProduct(t *testing.T) {
	ctx := context.Background()
	_, pub, gate := newGateFixture(t)

	assert.True(t, gate.Notify(ctx, lowProduct("p-1", 4)))
	assert.True(t, gate.Notify(ctx, lowProduct("p-2", 6)))
	assert.Len(t, pub.alerts, 2)
}

func TestNotifyPublishFailureDoesNotBurnTheWindow(t *testing.T) {
	ctx := context.Background()
	_, pub, gate := newGateFixture(t)

	pub.err = errors.New("broker down")
	assert.False(t, gate.Notify(ctx, lowProduct("p-1", 4)))

	// broker recovers: the alert still owes, so it fires
	pub.err = nil
	assert.True(t, gate.Notify(ctx, lowProduct("p-1", 4)))
	assert.Len(t, pub.alerts, 1)
}

func TestBatchCheckFiresOncePerSession(t *testing.T) {
	ctx := context.Background()
	kv, pub, gate := newGateFixture(t)

	products := []domain.Product{
		lowProduct("p-low", 3),
		lowProduct("p-fine", 40),
	}

	gate.BatchCheck(ctx, "u-seller", products)
	require.Len(t, pub.alerts, 1)
	assert.Equal(t, "p-low", pub.alerts[0].ProductID)

	// same session: suppressed even though the product is still low
	gate.BatchCheck(ctx, "u-seller", products)
	assert.Len(t, pub.alerts, 1)

	// logout re-arms; backdate the cool-down so the product is due again
	gate.ClearSession(ctx, "u-seller")
	stale := time.Now().Add(-2 * time.Minute).UnixMilli()
	require.NoError(t, kv.SetInt64(ctx, "notification_prefs:u-seller", "last_notification_time_p-low", stale))

	gate.BatchCheck(ctx, "u-seller", products)
	assert.Len(t, pub.alerts, 2)
}

func TestBatchCheckNothingLowLeavesSessionUnarmed(t *testing.T) {
	ctx := context.Background()
	_, pub, gate := newGateFixture(t)

	gate.BatchCheck(ctx, "u-seller", []domain.Product{lowProduct("p-fine", 40)})
	assert.Empty(t, pub.alerts)

	// the flag was never set, so a later scan with real candidates fires
	gate.BatchCheck(ctx, "u-seller", []domain.Product{lowProduct("p-low", 2)})
	assert.Len(t, pub.alerts, 1)
}

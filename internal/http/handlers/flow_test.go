package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"bazaar/internal/config"
	"bazaar/internal/http/handlers"
	"bazaar/internal/kvstore"
	"bazaar/internal/notify"
	"bazaar/internal/repos"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	mr := miniredis.RunT(t)
	store := kvstore.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	cfg := config.Config{LowStockThreshold: 10, NotifyCooldown: 60 * time.Second}
	deps := handlers.NewDeps(db, store, notify.LogPublisher{}, cfg)

	app := fiber.New()
	app.Post("/register", deps.AuthHandler.Register)
	app.Post("/login", deps.AuthHandler.Login)
	app.Post("/logout", deps.AuthHandler.Logout)
	app.Get("/me", handlers.RequireUser(deps.Auth), deps.AuthHandler.Me)
	app.Get("/products", deps.ProductHandler.List)
	app.Get("/products/:id", deps.ProductHandler.Get)
	app.Post("/products", handlers.RequireSeller(deps.Auth), deps.ProductHandler.Create)
	app.Get("/cart", handlers.RequireUser(deps.Auth), deps.CartHandler.View)
	app.Post("/cart", handlers.RequireUser(deps.Auth), deps.CartHandler.Add)
	app.Post("/checkout", handlers.RequireUser(deps.Auth), deps.CheckoutHandler.Place)
	app.Get("/history", handlers.RequireUser(deps.Auth), deps.CheckoutHandler.History)
	app.Get("/products/:id/reviews", deps.ReviewHandler.List)
	app.Post("/products/:id/reviews", handlers.RequireUser(deps.Auth), deps.ReviewHandler.Add)
	return app
}

func jsonReq(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func sidCookie(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == "sid" {
			return c.Value
		}
	}
	return ""
}

func login(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp, err := app.Test(jsonReq("POST", "/login", `{"email":"`+email+`","password":"Passw0rd!"}`))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d", email, resp.StatusCode)
	}
	sid := sidCookie(resp)
	if sid == "" {
		t.Fatal("no sid cookie on login")
	}
	return sid
}

func withSID(req *http.Request, sid string) *http.Request {
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		t.Fatalf("decode %q: %v", b, err)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	app := newTestApp(t)
	resp, err := app.Test(jsonReq("POST", "/login", `{"email":"buyer@bazaar.test","password":"wrongpass!"}`))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCartRequiresLogin(t *testing.T) {
	app := newTestApp(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/cart", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestBuyerCannotCreateProduct(t *testing.T) {
	app := newTestApp(t)
	sid := login(t, app, "buyer@bazaar.test")

	body := `{"name":"Bootleg","price":1,"quantity":1}`
	resp, err := app.Test(withSID(jsonReq("POST", "/products", body), sid))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for buyer, got %d", resp.StatusCode)
	}
}

// End-to-end purchase: add to cart, check out, verify stock and history.
func TestPurchaseFlow(t *testing.T) {
	app := newTestApp(t)
	sid := login(t, app, "buyer@bazaar.test")

	resp, err := app.Test(withSID(jsonReq("POST", "/cart", `{"productId":"p-lamp"}`), sid))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add to cart: expected 200, got %d", resp.StatusCode)
	}

	resp, err = app.Test(withSID(jsonReq("POST", "/checkout", ""), sid))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("checkout: expected 200, got %d", resp.StatusCode)
	}
	var res struct {
		Succeeded int `json:"succeeded"`
		Failed    int `json:"failed"`
	}
	decodeBody(t, resp, &res)
	if res.Succeeded != 1 || res.Failed != 0 {
		t.Fatalf("expected 1 success / 0 failures, got %+v", res)
	}

	// stock went 12 -> 11
	resp, err = app.Test(httptest.NewRequest("GET", "/products/p-lamp", nil))
	if err != nil {
		t.Fatal(err)
	}
	var p struct {
		Quantity int `json:"quantity"`
	}
	decodeBody(t, resp, &p)
	if p.Quantity != 11 {
		t.Fatalf("expected stock 11 after purchase, got %d", p.Quantity)
	}

	resp, err = app.Test(withSID(httptest.NewRequest("GET", "/history", nil), sid))
	if err != nil {
		t.Fatal(err)
	}
	var history []struct {
		ProductID string `json:"productId"`
	}
	decodeBody(t, resp, &history)
	if len(history) != 1 || history[0].ProductID != "p-lamp" {
		t.Fatalf("unexpected history: %+v", history)
	}

	// empty cart now rejects a second checkout
	resp, err = app.Test(withSID(jsonReq("POST", "/checkout", ""), sid))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 on empty cart, got %d", resp.StatusCode)
	}
}

func TestCartAddCapsAtStock(t *testing.T) {
	app := newTestApp(t)
	sid := login(t, app, "buyer@bazaar.test")

	// p-rug is seeded with 4 units
	for i := 0; i < 4; i++ {
		resp, err := app.Test(withSID(jsonReq("POST", "/cart", `{"productId":"p-rug"}`), sid))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("add %d: expected 200, got %d", i+1, resp.StatusCode)
		}
	}
	resp, err := app.Test(withSID(jsonReq("POST", "/cart", `{"productId":"p-rug"}`), sid))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 past the cap, got %d", resp.StatusCode)
	}
}

func TestReviewRequiresPurchaseThenUnique(t *testing.T) {
	app := newTestApp(t)
	sid := login(t, app, "buyer@bazaar.test")

	// never bought the kettle
	resp, err := app.Test(withSID(jsonReq("POST", "/products/p-kettle/reviews", `{"rating":4,"comment":"nice"}`), sid))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 before purchase, got %d", resp.StatusCode)
	}

	// buy it, then review
	if resp, err = app.Test(withSID(jsonReq("POST", "/cart", `{"productId":"p-kettle"}`), sid)); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("add to cart: %v %d", err, resp.StatusCode)
	}
	if resp, err = app.Test(withSID(jsonReq("POST", "/checkout", ""), sid)); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("checkout: %v %d", err, resp.StatusCode)
	}

	resp, err = app.Test(withSID(jsonReq("POST", "/products/p-kettle/reviews", `{"rating":4,"comment":"nice"}`), sid))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	resp, err = app.Test(withSID(jsonReq("POST", "/products/p-kettle/reviews", `{"rating":5,"comment":"again"}`), sid))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on second review, got %d", resp.StatusCode)
	}
}

func TestSellerCreateAndListMine(t *testing.T) {
	app := newTestApp(t)
	sid := login(t, app, "seller@bazaar.test")

	body := `{"name":"Tin Lantern","price":18.5,"description":"candle powered","quantity":30,"imageUrl":""}`
	resp, err := app.Test(withSID(jsonReq("POST", "/products", body), sid))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created struct {
		ProductID     string `json:"productId"`
		SellerCompany string `json:"sellerCompany"`
	}
	decodeBody(t, resp, &created)
	if created.ProductID == "" {
		t.Fatal("no product id assigned")
	}
	if created.SellerCompany != "Sam's Surplus" {
		t.Fatalf("seller company not stamped: %q", created.SellerCompany)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/products/"+created.ProductID, nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("new listing not visible: %d", resp.StatusCode)
	}
}

package handlers

import (
	"github.com/jmoiron/sqlx"

	"bazaar/internal/config"
	"bazaar/internal/kvstore"
	"bazaar/internal/notify"
	"bazaar/internal/repos"
	"bazaar/internal/services"
)

type Deps struct {
	AuthHandler     *AuthHandler
	ProductHandler  *ProductHandler
	CartHandler     *CartHandler
	CheckoutHandler *CheckoutHandler
	ReviewHandler   *ReviewHandler

	Auth *services.AuthService
}

func NewDeps(db *sqlx.DB, store *kvstore.Store, pub notify.Publisher, cfg config.Config) *Deps {
	userRepo := repos.NewUserRepo(db)
	prodRepo := repos.NewProductRepo(db)
	purchRepo := repos.NewPurchaseRepo(db)
	revRepo := repos.NewReviewRepo(db)

	gate := notify.NewGate(store, pub, cfg.NotifyCooldown, cfg.LowStockThreshold)

	authSvc := services.NewAuthService(userRepo, store)
	catalogSvc := services.NewCatalogService(prodRepo, gate, cfg.LowStockThreshold)
	cartSvc := services.NewCartService(store)
	checkoutSvc := services.NewCheckoutService(prodRepo, purchRepo, cartSvc, gate, cfg.LowStockThreshold)
	reviewSvc := services.NewReviewService(revRepo, purchRepo)

	return &Deps{
		AuthHandler:     &AuthHandler{Auth: authSvc, Gate: gate},
		ProductHandler:  &ProductHandler{Catalog: catalogSvc},
		CartHandler:     &CartHandler{Cart: cartSvc, Catalog: catalogSvc},
		CheckoutHandler: &CheckoutHandler{Checkout: checkoutSvc},
		ReviewHandler:   &ReviewHandler{Reviews: reviewSvc, Catalog: catalogSvc},
		Auth:            authSvc,
	}
}

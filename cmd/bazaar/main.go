package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"

	"bazaar/internal/config"
	"bazaar/internal/http/handlers"
	"bazaar/internal/kvstore"
	applog "bazaar/internal/log"
	"bazaar/internal/notify"
	"bazaar/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	store := kvstore.New(rdb)

	// Alerts go to the broker when one is configured, to the log otherwise.
	var pub notify.Publisher = notify.LogPublisher{}
	if cfg.AMQPURL != "" {
		conn, ch, err := notify.SetupConn(cfg.AMQPURL)
		if err != nil {
			log.Printf("[warn] alerts falling back to log publisher: %v", err)
		} else {
			defer conn.Close()
			pub = notify.NewAMQPPublisher(ch)
		}
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Something went wrong. Please try again.",
			})
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, store, pub, cfg)
	authSvc := deps.Auth

	// Auth (login throttled)
	app.Post("/register", deps.AuthHandler.Register)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, try again later"})
		},
	}), deps.AuthHandler.Login)
	app.Post("/logout", deps.AuthHandler.Logout)
	app.Get("/me", handlers.RequireUser(authSvc), deps.AuthHandler.Me)

	// Catalog
	app.Get("/products", deps.ProductHandler.List)
	app.Get("/products/:id", deps.ProductHandler.Get)
	app.Post("/products", handlers.RequireSeller(authSvc), deps.ProductHandler.Create)
	app.Put("/products/:id", handlers.RequireSeller(authSvc), deps.ProductHandler.Update)
	app.Delete("/products/:id", handlers.RequireSeller(authSvc), deps.ProductHandler.Delete)
	app.Get("/my/products", handlers.RequireSeller(authSvc), deps.ProductHandler.ListMine)

	// Cart & Checkout
	app.Get("/cart", handlers.RequireUser(authSvc), deps.CartHandler.View)
	app.Post("/cart", handlers.RequireUser(authSvc), deps.CartHandler.Add)
	app.Put("/cart/:productId", handlers.RequireUser(authSvc), deps.CartHandler.SetQuantity)
	app.Delete("/cart/:productId", handlers.RequireUser(authSvc), deps.CartHandler.Remove)
	app.Delete("/cart", handlers.RequireUser(authSvc), deps.CartHandler.Clear)
	app.Post("/checkout", handlers.RequireUser(authSvc), deps.CheckoutHandler.Place)
	app.Get("/history", handlers.RequireUser(authSvc), deps.CheckoutHandler.History)

	// Reviews
	app.Get("/products/:id/reviews", deps.ReviewHandler.List)
	app.Post("/products/:id/reviews", handlers.RequireUser(authSvc), deps.ReviewHandler.Add)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}

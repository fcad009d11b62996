package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	applog "bazaar/internal/log"
	"bazaar/internal/notify"
	"bazaar/internal/repos"
	"bazaar/internal/services"
	"bazaar/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
	Gate *notify.Gate
}

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false, // enable true behind TLS
		})
	}
	return sid
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Age         int    `json:"age"`
	UserType    string `json:"userType"`
	CompanyName string `json:"companyName"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad request body"})
	}

	email, ok := validate.Email(req.Email)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "email"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid email"})
	}
	if !validate.Password(req.Password) {
		applog.Security(c, "validation.fail", map[string]any{"field": "password"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "password must be 8-64 chars with upper, lower and digit"})
	}
	name, ok := validate.Name(req.Name)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name must be 1-50 characters"})
	}
	if !validate.Age(req.Age) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid age"})
	}

	sid := ensureSID(c)
	u, err := h.Auth.SignUp(c.Context(), sid, services.SignUpInput{
		Email:       email,
		Password:    req.Password,
		Name:        name,
		Age:         req.Age,
		UserType:    req.UserType,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCompanyRequired):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, repos.ErrEmailTaken):
			applog.Security(c, "auth.register.duplicate", map[string]any{"email": email})
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "email already registered"})
		default:
			applog.Error(c, "auth.register.fail", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not create account"})
		}
	}

	applog.Audit(c, "auth.register", map[string]any{"email": email, "user_type": u.UserType})
	return c.Status(fiber.StatusCreated).JSON(u)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad request body"})
	}

	sid := ensureSID(c)
	if _, ok := validate.Email(req.Email); !ok {
		applog.Security(c, "auth.login.fail", map[string]any{"email": req.Email, "reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid email or password"})
	}

	u, err := h.Auth.SignIn(c.Context(), sid, req.Email, req.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": req.Email})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid email or password"})
	}

	applog.Audit(c, "auth.login.success", map[string]any{"email": req.Email})
	return c.JSON(u)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	// Re-arm the seller's batch notifications for the next login.
	if u, err := h.Auth.CurrentUser(sid); err == nil && u != nil {
		h.Gate.ClearSession(c.Context(), u.ID)
	}
	_ = h.Auth.SignOut(sid)
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	applog.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.JSON(fiber.Map{"ok": true})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(currentUser(c))
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/faya/preorder-api/internal/api/dto"
	"github.com/faya/preorder-api/internal/auth"
	"github.com/faya/preorder-api/internal/service"
)

// AuthHandler exposes registration, login, refresh and the current user.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	req := new(dto.RegisterRequest)
	if err := bind(c, req); err != nil {
		return err
	}

	user, pair, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Registration successful", dto.NewAuthResponse(user, pair))
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	req := new(dto.LoginRequest)
	if err := bind(c, req); err != nil {
		return err
	}

	user, pair, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Login successful", dto.NewAuthResponse(user, pair))
}

// Refresh handles POST /api/v1/auth/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	req := new(dto.RefreshRequest)
	if err := bind(c, req); err != nil {
		return err
	}

	user, pair, err := h.auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Token refreshed", dto.NewAuthResponse(user, pair))
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	user, err := h.auth.Me(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Current user", dto.NewUserResponse(user))
}

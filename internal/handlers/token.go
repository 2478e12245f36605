package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/tribuna/internal/services"
)

// TokenHandler serves the password grant and token refresh endpoints.
type TokenHandler struct {
	tokens *services.TokenService
}

// NewTokenHandler constructs a TokenHandler.
func NewTokenHandler(tokens *services.TokenService) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

type obtainTokenRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Obtain authenticates a staff account by username and password.
func (h *TokenHandler) Obtain(c *fiber.Ctx) error {
	var req obtainTokenRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	token, user, err := h.tokens.ObtainByPassword(req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    user,
	})
}

type refreshTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// Refresh exchanges a refreshable token for a new one, rotating the user's
// key version so the old token stops verifying.
func (h *TokenHandler) Refresh(c *fiber.Ctx) error {
	var req refreshTokenRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	token, err := h.tokens.Refresh(req.Token)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
	})
}

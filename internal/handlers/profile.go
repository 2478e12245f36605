package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/tribuna/internal/apperr"
	"github.com/example/tribuna/internal/config"
	"github.com/example/tribuna/internal/middleware"
	"github.com/example/tribuna/internal/models"
	"github.com/example/tribuna/internal/services"
	"github.com/example/tribuna/internal/utils"
)

// ProfileHandler manages user profile endpoints.
type ProfileHandler struct {
	db     *gorm.DB
	cfg    *config.Config
	tokens *services.TokenService
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(db *gorm.DB, cfg *config.Config, tokens *services.TokenService) *ProfileHandler {
	return &ProfileHandler{db: db, cfg: cfg, tokens: tokens}
}

type registerRequest struct {
	FullName string `json:"full_name" validate:"required,full_name"`
	Email    string `json:"email" validate:"required,email"`
}

// Register completes registration of a user created during activation.
func (h *ProfileHandler) Register(c *fiber.Ctx) error {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		return apperr.Unauthorized("unauthorized")
	}

	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user.FullName = req.FullName
	user.Email = req.Email
	user.IsRegistered = true
	if err := h.db.Save(user).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "user": user})
}

// Get returns the authenticated user.
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		return apperr.Unauthorized("unauthorized")
	}
	return c.JSON(fiber.Map{"success": true, "user": user})
}

type updateProfileRequest struct {
	FullName  string `json:"full_name" validate:"omitempty,full_name"`
	AvatarURL string `json:"avatar_url"`
}

// Update changes the mutable profile fields.
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		return apperr.Unauthorized("unauthorized")
	}

	var req updateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.AvatarURL != "" {
		user.AvatarURL = req.AvatarURL
	}
	if err := h.db.Save(user).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "user": user})
}

// QR returns the user's discount lookup URL, minting the opaque code on
// first use.
func (h *ProfileHandler) QR(c *fiber.Ctx) error {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		return apperr.Unauthorized("unauthorized")
	}

	var qr models.UserQRCode
	err := h.db.First(&qr, "user_id = ?", user.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		qr = models.UserQRCode{UserID: user.ID, Code: uuid.New()}
		err = h.db.Create(&qr).Error
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"qr":      fmt.Sprintf("%s/api/users/info/%s", h.cfg.PublicBaseURL, qr.Code),
		"image":   fmt.Sprintf("%s/api/qr/%s", h.cfg.PublicBaseURL, qr.Code),
	})
}

// QRImage renders the QR PNG for a known lookup code.
func (h *ProfileHandler) QRImage(c *fiber.Ctx) error {
	code, err := uuid.Parse(c.Params("code"))
	if err != nil {
		return apperr.ValidationFailed("invalid code")
	}

	var qr models.UserQRCode
	if err := h.db.First(&qr, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("unknown code")
		}
		return err
	}

	png, err := utils.QRPNG(fmt.Sprintf("%s/api/users/info/%s", h.cfg.PublicBaseURL, qr.Code), 256)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}

// Logout rotates the user's key version, revoking every outstanding token.
func (h *ProfileHandler) Logout(c *fiber.Ctx) error {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		return apperr.Unauthorized("unauthorized")
	}

	if err := h.tokens.Rotate(user); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

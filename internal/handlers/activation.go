package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/tribuna/internal/models"
	"github.com/example/tribuna/internal/services"
)

// ActivationHandler bundles dependencies for the one-time code endpoints.
type ActivationHandler struct {
	activations *services.ActivationService
	tokens      *services.TokenService
}

// NewActivationHandler constructs an ActivationHandler.
func NewActivationHandler(activations *services.ActivationService, tokens *services.TokenService) *ActivationHandler {
	return &ActivationHandler{activations: activations, tokens: tokens}
}

// activationRef is the only activation shape exposed to clients. The code
// itself never leaves the server.
type activationRef struct {
	ID    uuid.UUID `json:"id"`
	Phone string    `json:"phone"`
}

func refOf(activation *models.Activation) activationRef {
	return activationRef{ID: activation.ID, Phone: activation.Phone}
}

type createActivationRequest struct {
	Phone string `json:"phone" validate:"required,phone"`
}

// Create requests a login code for a phone number. An active activation
// within the reuse window is returned as-is without a second delivery.
func (h *ActivationHandler) Create(c *fiber.Ctx) error {
	var req createActivationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	activation, err := h.activations.FindOrCreate(req.Phone, nil, models.ActivationLogin)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"activation": refOf(activation),
	})
}

type activateRequest struct {
	Code string `json:"code" validate:"required,len=4,numeric"`
}

// Activate redeems a submitted code, resolving or creating the user and
// issuing a bearer token.
func (h *ActivationHandler) Activate(c *fiber.Ctx) error {
	var req activateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	activation, err := h.activations.Find(c.Params("id"))
	if err != nil {
		return err
	}

	if err := h.activations.Validate(activation, req.Code, false); err != nil {
		return err
	}

	user, created, err := h.activations.Complete(activation)
	if err != nil {
		return err
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"token":    token,
		"user":     user,
		"new_user": created,
	})
}

// Resend dispatches a fresh code for an existing activation after checking
// expiry, activity and the retry budget.
func (h *ActivationHandler) Resend(c *fiber.Ctx) error {
	activation, err := h.activations.Find(c.Params("id"))
	if err != nil {
		return err
	}

	if err := h.activations.Validate(activation, "", true); err != nil {
		return err
	}

	if err := h.activations.Resend(activation); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"activation": refOf(activation),
	})
}

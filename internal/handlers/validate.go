package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/example/tribuna/internal/apperr"
	"github.com/example/tribuna/internal/utils"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return utils.ValidPhone(fl.Field().String())
	})
	_ = v.RegisterValidation("full_name", func(fl validator.FieldLevel) bool {
		return utils.ValidFullName(fl.Field().String())
	})
	return v
}

// parseBody decodes and validates a JSON request body.
func parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return apperr.ValidationFailed("invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return apperr.ValidationFailed(err.Error())
	}
	return nil
}

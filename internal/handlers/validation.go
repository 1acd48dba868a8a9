package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/inflowhq/inflow-backend/internal/dto"
)

var validate = validator.New()

// parseBody decodes and validates the request body, writing the 400
// response itself. Callers bail out when ok is false.
func parseBody(c *fiber.Ctx, out interface{}) (ok bool) {
	if err := c.BodyParser(out); err != nil {
		c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
		return false
	}
	if err := validate.Struct(out); err != nil {
		c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
		return false
	}
	return true
}

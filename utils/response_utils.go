package utils

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Korak-997/emma-wave/internal/apperr"
)

// RespondWithError sends a JSON error response.
func RespondWithError(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  "error",
		"message": message,
	})
}

// RespondWithAppError maps an application error onto its HTTP status and
// stable message. Anything that is not an apperr.Error becomes a generic
// server error so internal detail never leaks to the caller.
func RespondWithAppError(c *fiber.Ctx, err error) error {
	if appErr := apperr.As(err); appErr != nil {
		return RespondWithError(c, appErr.HTTPStatus, appErr.Message)
	}
	return RespondWithError(c, fiber.StatusInternalServerError, "Unexpected error occurred during processing.")
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// HealthCheck handles GET /health: verifies the diarization engine is still
// reachable behind the running server.
func (h *ApplicationHandler) HealthCheck(c *fiber.Ctx) error {
	if !h.Engine.IsAvailable(c.Context()) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  "error",
			"message": "Diarization model is not loaded.",
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "ok",
		"model":  "loaded",
	})
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Korak-997/emma-wave/utils"
)

// ListLogs handles GET /logs: enumerates recognized request log files.
func (h *ApplicationHandler) ListLogs(c *fiber.Ctx) error {
	names, err := h.Recorder.List()
	if err != nil {
		h.Logger.WithError(err).Error("Failed to list request logs")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to list log files.")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"logs": names})
}

// GetLog handles GET /logs/:filename: returns one request log document.
func (h *ApplicationHandler) GetLog(c *fiber.Ctx) error {
	data, err := h.Recorder.Read(c.Params("filename"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Log file not found.")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(data)
}

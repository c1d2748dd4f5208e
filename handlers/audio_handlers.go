package handlers

import (
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"github.com/Korak-997/emma-wave/utils"
)

// GetAudio handles GET /audio/:filename: serves a persisted speaker clip
// from the local clip directory.
func (h *ApplicationHandler) GetAudio(c *fiber.Ctx) error {
	filename := filepath.Base(c.Params("filename"))
	path := filepath.Join(h.AudioDir, filename)

	if _, err := os.Stat(path); err != nil {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Audio file not found.")
	}

	c.Set(fiber.HeaderContentType, "audio/wav")
	return c.SendFile(path)
}

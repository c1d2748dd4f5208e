package handlers

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/Korak-997/emma-wave/internal/pipeline"
	"github.com/Korak-997/emma-wave/utils"
)

// DiarizeAudio handles POST /diarize: accepts a multipart upload under the
// "file" field, runs the full pipeline and returns the per-speaker result.
func (h *ApplicationHandler) DiarizeAudio(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Missing audio file in 'file' form field.")
	}

	if file.Size > h.MaxUploadBytes {
		return utils.RespondWithError(c, fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("File exceeds the %d MB upload limit.", h.MaxUploadBytes/(1024*1024)))
	}

	h.Logger.WithField("file_name", file.Filename).Info("Received diarization upload")

	handle, err := file.Open()
	if err != nil {
		h.Logger.WithError(err).Error("Failed to open uploaded file")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to read uploaded file.")
	}
	defer handle.Close()

	data, err := io.ReadAll(handle)
	if err != nil {
		h.Logger.WithError(err).Error("Failed to read uploaded file")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to read uploaded file.")
	}

	requestID, _ := c.Locals("requestid").(string)
	result, err := h.Processor.Process(c.Context(), pipeline.Upload{
		RequestID: requestID,
		Filename:  file.Filename,
		Data:      data,
	})
	if err != nil {
		h.Logger.WithError(err).WithField("file_name", file.Filename).Error("Diarization request failed")
		return utils.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

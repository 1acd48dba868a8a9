package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/inflowhq/inflow-backend/internal/dto"
	"github.com/inflowhq/inflow-backend/internal/storage"
)

type UploadHandler struct {
	presigner *storage.Presigner
}

func NewUploadHandler(presigner *storage.Presigner) *UploadHandler {
	return &UploadHandler{presigner: presigner}
}

// Presign hands out a short-lived direct-upload URL. Returns 503 when no
// object store is configured.
func (h *UploadHandler) Presign(c *fiber.Ctx) error {
	if h.presigner == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: true, Message: "Uploads are not configured",
		})
	}

	var req dto.PresignRequest
	if !parseBody(c, &req) {
		return nil
	}

	key, uploadURL, publicURL, err := h.presigner.PresignUpload(c.Context(), req.FileName, req.ContentType)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to presign upload",
		})
	}

	return c.JSON(dto.PresignResponse{
		UploadURL: uploadURL,
		PublicURL: publicURL,
		Key:       key,
	})
}

package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/wallfetch/api/internal/service"
	"github.com/wallfetch/api/pkg/response"
)

type UploadHandler struct {
	service *service.UploadService
	maxSize int64
}

func NewUploadHandler(svc *service.UploadService, maxSizeMB int) *UploadHandler {
	return &UploadHandler{
		service: svc,
		maxSize: int64(maxSizeMB) * 1024 * 1024,
	}
}

// Image handles POST /api/upload
func (h *UploadHandler) Image(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return response.ValidationError(c, "No file selected", nil)
	}

	if h.maxSize > 0 && file.Size > h.maxSize {
		return response.TooLarge(c, fmt.Sprintf("File size exceeds %dMB limit", h.maxSize/(1024*1024)))
	}

	f, err := file.Open()
	if err != nil {
		return response.ServiceError(c, "Failed to open file")
	}
	defer f.Close()

	result, err := h.service.Save(file.Filename, file.Header.Get("Content-Type"), f)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedFile) {
			return response.ValidationError(c, "Only image files are allowed", map[string]interface{}{
				"contentType": file.Header.Get("Content-Type"),
			})
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, result)
}

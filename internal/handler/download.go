package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/wallfetch/api/internal/model"
	"github.com/wallfetch/api/internal/service"
	"github.com/wallfetch/api/pkg/response"
)

type DownloadHandler struct {
	service      *service.DownloadService
	validator    *validator.Validate
	defaultProxy string
}

func NewDownloadHandler(svc *service.DownloadService, v *validator.Validate, defaultProxy string) *DownloadHandler {
	return &DownloadHandler{
		service:      svc,
		validator:    v,
		defaultProxy: defaultProxy,
	}
}

// Start handles POST /api/download
func (h *DownloadHandler) Start(c *fiber.Ctx) error {
	var req model.DownloadRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	cfg, err := req.ToConfig(h.defaultProxy)
	if err != nil {
		return response.ValidationError(c, err.Error(), nil)
	}

	status, err := h.service.StartJob(cfg)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyRunning) {
			return response.Conflict(c, "A download is already in progress")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.Accepted(c, model.DownloadStartResponse{
		Message: "Download started",
		JobID:   status.JobID,
	})
}

// Status handles GET /api/status
func (h *DownloadHandler) Status(c *fiber.Ctx) error {
	return response.OK(c, h.service.Status())
}

// Cancel handles POST /api/download/cancel
func (h *DownloadHandler) Cancel(c *fiber.Ctx) error {
	if !h.service.Cancel() {
		return response.Conflict(c, "No download is running")
	}
	return response.Accepted(c, response.MessageResponse{Message: "Cancelling download"})
}

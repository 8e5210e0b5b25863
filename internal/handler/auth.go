package handler

import (
	"crypto/subtle"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/wallfetch/api/internal/auth"
	"github.com/wallfetch/api/internal/model"
	"github.com/wallfetch/api/pkg/response"
)

type AuthHandler struct {
	adminPassword string
	jwtSecret     string
	tokenTTL      time.Duration
	validator     *validator.Validate
}

func NewAuthHandler(adminPassword, jwtSecret string, tokenTTL time.Duration, v *validator.Validate) *AuthHandler {
	return &AuthHandler{
		adminPassword: adminPassword,
		jwtSecret:     jwtSecret,
		tokenTTL:      tokenTTL,
		validator:     v,
	}
}

// Login handles POST /api/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req model.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	if h.adminPassword == "" || subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.adminPassword)) != 1 {
		return response.Unauthorized(c, "Wrong password")
	}

	token, err := auth.IssueToken(h.jwtSecret, h.tokenTTL)
	if err != nil {
		log.Printf("Failed to issue token: %v", err)
		return response.ServiceError(c, "Failed to issue token")
	}

	return response.OK(c, model.LoginResponse{Token: token})
}

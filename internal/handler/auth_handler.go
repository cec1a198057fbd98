package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/code-quest-api/internal/dto"
	"github.com/noah-isme/code-quest-api/internal/service"
	"github.com/noah-isme/code-quest-api/internal/utils"
)

// AuthHandler registers users signing in through an external identity provider.
type AuthHandler struct {
	service service.UserService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.UserService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/login", h.login)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.service.Login(requestContext(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "login")
	}
	return utils.SendSuccess(c, "login successful", user)
}

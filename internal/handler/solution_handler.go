package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/code-quest-api/internal/dto"
	"github.com/noah-isme/code-quest-api/internal/service"
	"github.com/noah-isme/code-quest-api/internal/utils"
)

// SolutionHandler grades submissions and lists stored solutions.
type SolutionHandler struct {
	grading service.GradingService
	store   service.SolutionStore
	logger  zerolog.Logger
}

// NewSolutionHandler constructs the handler.
func NewSolutionHandler(grading service.GradingService, store service.SolutionStore, logger zerolog.Logger) *SolutionHandler {
	return &SolutionHandler{
		grading: grading,
		store:   store,
		logger:  logger.With().Str("component", "solution_handler").Logger(),
	}
}

// Register wires the handler endpoints. submitMiddleware runs in front of the grading endpoint only.
func (h *SolutionHandler) Register(router fiber.Router, submitMiddleware ...fiber.Handler) {
	submit := append(append([]fiber.Handler{}, submitMiddleware...), h.submit)
	router.Post("/submit-solution", submit...)
	router.Get("/solutions/:provider_id", h.listByProvider)
}

func (h *SolutionHandler) submit(c *fiber.Ctx) error {
	var payload dto.SubmitSolutionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	verdict, err := h.grading.Submit(requestContext(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "submit solution")
	}
	return utils.SendSuccess(c, "solution graded", verdict)
}

func (h *SolutionHandler) listByProvider(c *fiber.Ctx) error {
	providerID := strings.TrimSpace(c.Params("provider_id"))
	if providerID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "provider id is required")
	}

	solutions, err := h.store.ListForProvider(requestContext(c), providerID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "list solutions")
	}
	return utils.SendSuccess(c, "solutions retrieved", solutions)
}

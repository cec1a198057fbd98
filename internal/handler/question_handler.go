package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/code-quest-api/internal/service"
	"github.com/noah-isme/code-quest-api/internal/utils"
)

// QuestionHandler exposes the question catalog.
type QuestionHandler struct {
	service service.QuestionService
	logger  zerolog.Logger
}

// NewQuestionHandler constructs the handler.
func NewQuestionHandler(service service.QuestionService, logger zerolog.Logger) *QuestionHandler {
	return &QuestionHandler{
		service: service,
		logger:  logger.With().Str("component", "question_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group.
func (h *QuestionHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Get("/:id/test_cases", h.testCases)
}

func (h *QuestionHandler) list(c *fiber.Ctx) error {
	questions, err := h.service.List(requestContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "list questions")
	}
	return utils.SendSuccess(c, "questions retrieved", questions)
}

func (h *QuestionHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	question, err := h.service.Get(requestContext(c), id)
	if err != nil {
		return sendServiceError(c, h.logger, err, "get question")
	}
	return utils.SendSuccess(c, "question retrieved", question)
}

func (h *QuestionHandler) testCases(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	testCases, err := h.service.ListTestCases(requestContext(c), id)
	if err != nil {
		return sendServiceError(c, h.logger, err, "list test cases")
	}
	return utils.SendSuccess(c, "test cases retrieved", testCases)
}

package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/code-quest-api/internal/middleware"
	"github.com/noah-isme/code-quest-api/internal/service"
	"github.com/noah-isme/code-quest-api/internal/utils"
)

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := strings.TrimSpace(c.Params(name))
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

// sendServiceError maps a service failure to its HTTP status. Unexpected failures are
// logged and answered with a generic message.
func sendServiceError(c *fiber.Ctx, logger zerolog.Logger, err error, operation string) error {
	kind := service.KindOf(err)
	switch kind {
	case service.FailureNotFound:
		return utils.SendErrorWithCode(c, fiber.StatusNotFound, string(kind), err.Error())
	case service.FailureInvalid:
		message := "invalid request"
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			message = validationErrors.Error()
		}
		return utils.SendErrorWithCode(c, fiber.StatusBadRequest, string(kind), message)
	default:
		requestLogger(logger, c).Error().Err(err).Str("operation", operation).Str("failure", string(kind)).Msg("request failed")
		return utils.SendErrorWithCode(c, fiber.StatusInternalServerError, string(service.FailureUnexpected), "internal server error")
	}
}

package serverutils

import (
	"errors"

	"ampersand-agent/internal/pkg/logger"
	"ampersand-agent/pkg/mode"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler maps handler errors to JSON responses.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse("Invalid request", validationErr.Fields))
		}

		if errors.Is(err, mode.ErrUnknownMode) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(err.Error(), nil))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message, nil))
		}

		log.Error("HTTP", "Unhandled request error", map[string]interface{}{
			"method": ctx.Method(),
			"path":   ctx.Path(),
			"error":  err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("Internal server error", nil))
	}
}

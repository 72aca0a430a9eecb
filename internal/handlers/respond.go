package handlers

import (
	"gamewish/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const msgInternal = "Internal server error"

// respondError writes err as {"message": ...} with the status of its kind.
// The cause of a 5xx is logged and never sent to the client.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	status := apperr.Status(err)
	if status >= fiber.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{
		"message": apperr.Message(err, msgInternal),
	})
}

// parseBody decodes the request body into out.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.Validation("Invalid request body")
	}
	return nil
}

package middleware

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func LoggingMiddleware(logger *log.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := uuid.NewString()
		c.Locals("request_id", requestID)
		c.Set("X-Request-ID", requestID)

		// Передаем управление следующему обработчику
		err := c.Next()

		// Логируем информацию о запросе
		logger.Printf(
			"[%s] %s %s %s %s %d %v",
			time.Now().Format("2006-01-02 15:04:05"),
			requestID,
			c.IP(),
			c.Method(),
			c.Path(),
			c.Response().StatusCode(),
			time.Since(start),
		)

		return err
	}
}

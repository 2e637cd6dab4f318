// middleware/request.go
package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

// RequestContext tags each request with an id, bounds its user context by
// timeout and writes one access log line when it completes.
func RequestContext(log *zap.SugaredLogger, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDHeader, id)
		c.Locals("requestId", id)

		start := time.Now()
		if timeout > 0 {
			ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
			defer cancel()
			c.SetUserContext(ctx)
		}

		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		fields := []interface{}{
			"request_id", id,
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration", time.Since(start),
			"ip", c.IP(),
		}
		if err != nil {
			log.Warnw("request failed", append(fields, "error", err)...)
		} else {
			log.Debugw("request", fields...)
		}
		return err
	}
}

func RequestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestId").(string)
	return id
}

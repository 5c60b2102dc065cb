package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// RequestID tags every request with a UUID in the X-Request-ID header so
// log lines of one request can be correlated.
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Generator: func() string {
			return uuid.New().String()
		},
	})
}

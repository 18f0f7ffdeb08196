package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/hrygo/coursebot/ai/observability/logging"
)

// RequestID tags each request with a uuid and attaches a request-scoped logger to its context.
func RequestID() echo.MiddlewareFunc {
	return echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			ctx := logging.With(req.Context(), "request_id", id)
			c.SetRequest(req.WithContext(ctx))
		},
	})
}

package middleware

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"

	loggingmw "github.com/Skotchmaster/fashion_shop/internal/middleware/logging"
)

// Common is the chain every request passes through before routing.
func Common(base *slog.Logger, allowOrigins []string) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		ecM.Recover(),
		ecM.RequestID(),
		loggingmw.RequestLogger(base),
		ecM.Secure(),
		ecM.BodyLimit("2M"),
		ecM.CORSWithConfig(ecM.CORSConfig{
			AllowOrigins:     allowOrigins,
			AllowCredentials: true,
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, "X-CSRF-Token"},
			ExposeHeaders:    []string{"X-CSRF-Token"},
		}),
	}
}

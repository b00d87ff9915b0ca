package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/fashion_shop/internal/domain"
)

var statusBySentinel = []struct {
	err    error
	status int
}{
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrValidation, http.StatusBadRequest},
	{domain.ErrEmptyCart, http.StatusBadRequest},
	{domain.ErrInsufficientStock, http.StatusConflict},
	{domain.ErrConflict, http.StatusConflict},
	{domain.ErrInvalidTransition, http.StatusConflict},
	{domain.ErrUnauthorized, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},
}

// fail logs err under event and turns it into an HTTP error. Domain errors
// keep their message; anything else is a 500 with a generic message.
func fail(l *slog.Logger, event string, err error) error {
	for _, m := range statusBySentinel {
		if errors.Is(err, m.err) {
			l.Warn(event, "status", m.status, "reason", m.err.Error(), "error", err)
			return echo.NewHTTPError(m.status, err.Error())
		}
	}
	l.Error(event, "status", http.StatusInternalServerError, "reason", "internal error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

func badRequest(l *slog.Logger, event, reason string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}

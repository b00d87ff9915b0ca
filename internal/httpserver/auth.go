package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/fashion_shop/internal/domain"
	"github.com/Skotchmaster/fashion_shop/internal/logging"
	"github.com/Skotchmaster/fashion_shop/internal/service"
	"github.com/Skotchmaster/fashion_shop/internal/tokens"
	"github.com/Skotchmaster/fashion_shop/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func setPair(c echo.Context, p *tokens.Pair) {
	for _, ck := range tokens.PairCookies(p) {
		c.SetCookie(ck)
	}
}

func clearPair(c echo.Context) {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/"))
}

func loginBody(res *service.LoginResult) echo.Map {
	return echo.Map{
		"user": transport.UserView{
			ID:      res.User.ID,
			Name:    res.User.Name,
			Email:   res.User.Email,
			IsAdmin: res.User.Role == domain.RoleAdmin,
		},
		"accessToken":  res.AccessToken,
		"refreshToken": res.RefreshToken,
		"accessExp":    res.AccessExp.Unix(),
		"refreshExp":   res.RefreshExp.Unix(),
	}
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := bindStrict(c, &req); err != nil {
		return fail(l, "register_error", err)
	}

	res, err := h.Svc.Register(ctx, req)
	if err != nil {
		return fail(l, "register_error", err)
	}

	setPair(c, res.Pair)
	l.Info("register_success", "user_id", res.User.ID)
	return c.JSON(http.StatusCreated, loginBody(res))
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := bindStrict(c, &req); err != nil {
		return fail(l, "login_error", err)
	}

	res, err := h.Svc.Login(ctx, req)
	if err != nil {
		return fail(l, "login_error", err)
	}

	setPair(c, res.Pair)
	l.Info("login_success", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, loginBody(res))
}

// Refresh takes the refresh token from its cookie, or from the JSON body for
// clients that do not keep cookies.
func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	raw := ""
	if ck, err := c.Cookie(tokens.RefreshCookie); err == nil {
		raw = ck.Value
	}
	if raw == "" && c.Request().ContentLength != 0 {
		var req refreshRequest
		if err := bindStrict(c, &req); err != nil {
			return fail(l, "refresh_error", err)
		}
		raw = req.RefreshToken
	}
	if raw == "" {
		l.Warn("refresh_error", "status", http.StatusUnauthorized, "reason", "refresh token missing")
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
	}

	pair, err := h.Svc.Refresh(ctx, raw)
	if err != nil {
		clearPair(c)
		return fail(l, "refresh_error", err)
	}

	setPair(c, pair)
	return c.JSON(http.StatusOK, echo.Map{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"accessExp":    pair.AccessExp.Unix(),
		"refreshExp":   pair.RefreshExp.Unix(),
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	if ck, err := c.Cookie(tokens.RefreshCookie); err == nil {
		if err := h.Svc.Logout(ctx, ck.Value); err != nil {
			clearPair(c)
			l.Error("logout_error", "status", 500, "reason", "cannot revoke refresh token", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot revoke refresh token")
		}
	}

	clearPair(c)
	l.Info("logout_success")
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

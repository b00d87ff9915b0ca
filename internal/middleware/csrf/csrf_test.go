package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer() *echo.Echo {
	e := echo.New()
	e.Use(Middleware(Config{EnforceSameOrigin: true}))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	e.GET("/api/cart", ok)
	e.POST("/api/cart", ok)
	e.POST("/health/live", ok)
	return e
}

func TestCSRF_GetIssuesToken(t *testing.T) {
	e := newServer()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cart", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-CSRF-Token"))
	require.NotEmpty(t, rec.Result().Cookies())
	assert.Equal(t, "XSRF-TOKEN", rec.Result().Cookies()[0].Name)
}

func TestCSRF_PostRequiresMatchingHeader(t *testing.T) {
	e := newServer()

	post := func(header string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/cart", nil)
		req.Host = "shop.test"
		req.Header.Set("Origin", "http://shop.test")
		req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok-123"})
		if header != "" {
			req.Header.Set("X-CSRF-Token", header)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusForbidden, post(""))
	assert.Equal(t, http.StatusForbidden, post("wrong"))
	assert.Equal(t, http.StatusNoContent, post("tok-123"))
}

func TestCSRF_CrossOriginRejected(t *testing.T) {
	e := newServer()
	req := httptest.NewRequest(http.MethodPost, "/api/cart", nil)
	req.Host = "shop.test"
	req.Header.Set("Origin", "http://evil.test")
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok"})
	req.Header.Set("X-CSRF-Token", "tok")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRF_SkipsBearerAndHealth(t *testing.T) {
	e := newServer()

	req := httptest.NewRequest(http.MethodPost, "/api/cart", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer abc")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health/live", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

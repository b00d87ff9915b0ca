package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/fashion_shop/internal/db"
	"github.com/Skotchmaster/fashion_shop/internal/events"
	"github.com/Skotchmaster/fashion_shop/internal/models"
	"github.com/Skotchmaster/fashion_shop/internal/notify"
	"github.com/Skotchmaster/fashion_shop/internal/pricing"
	"github.com/Skotchmaster/fashion_shop/internal/repo"
	"github.com/Skotchmaster/fashion_shop/internal/service"
	"github.com/Skotchmaster/fashion_shop/internal/stock"
	"github.com/Skotchmaster/fashion_shop/internal/tokens"
	"github.com/Skotchmaster/fashion_shop/internal/transport"
)

type testEnv struct {
	E    *echo.Echo
	Repo *repo.GormRepo
	Auth *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	r := repo.New(gdb)
	pub := events.Noop{}
	mailer := notify.Noop{}
	authSvc := &service.AuthService{
		Repo:          r,
		AccessSecret:  []byte("access"),
		RefreshSecret: []byte("refresh"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    time.Hour,
	}

	e := echo.New()
	Register(e, &Deps{
		CatalogHandler: &CatalogHTTP{Svc: &service.CatalogService{Repo: r, Events: pub}},
		CartHandler:    &CartHTTP{Svc: &service.CartService{Repo: r, Stock: &stock.Gatekeeper{Products: r}, Events: pub}},
		OrderHandler:   &OrderHTTP{Svc: &service.OrderService{Repo: r, Rates: pricing.DefaultRates(), Mailer: mailer, Events: pub}},
		SubscriptionHandler: &SubscriptionHTTP{
			Svc:     &service.SubscriptionService{Repo: r, Mailer: mailer, Events: pub},
			Contact: &service.ContactService{Repo: r, Mailer: mailer},
		},
		AuthHandler: &AuthHTTP{Svc: authSvc},
		JWTSecret:   authSvc.AccessSecret,
		Refresher:   authSvc,
	})
	return &testEnv{E: e, Repo: r, Auth: authSvc}
}

func (env *testEnv) doJSONRequest(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) login(t *testing.T, email string, admin bool) []*http.Cookie {
	t.Helper()
	ctx := context.Background()
	if admin {
		require.NoError(t, env.Auth.EnsureAdmin(ctx, email, "admin-password"))
	} else {
		_, err := env.Auth.Register(ctx, transport.RegisterRequest{Name: "Shopper", Email: email, Password: "admin-password"})
		require.NoError(t, err)
	}
	res, err := env.Auth.Login(ctx, transport.LoginRequest{Email: email, Password: "admin-password"})
	require.NoError(t, err)
	return tokens.PairCookies(res.Pair)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (env *testEnv) createProduct(t *testing.T, admin []*http.Cookie, name, price string, stock int) models.Product {
	t.Helper()
	body := `{"name":"` + name + `","description":"d","price":` + price + `,"category":"Ethnic","stock":` + itoa(stock) + `}`
	rec := env.doJSONRequest(t, http.MethodPost, "/api/products", body, admin...)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Product](t, rec)
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusOK, env.doJSONRequest(t, http.MethodGet, "/health/live", nil).Code)
	assert.Equal(t, http.StatusOK, env.doJSONRequest(t, http.MethodGet, "/health/ready", nil).Code)
}

func TestCreateProduct_AdminOnly(t *testing.T) {
	env := newTestEnv(t)
	user := env.login(t, "user@example.com", false)
	admin := env.login(t, "admin@example.com", true)

	body := `{"name":"Elegant Kurta","description":"d","price":89,"category":"Ethnic","stock":5}`
	assert.Equal(t, http.StatusUnauthorized, env.doJSONRequest(t, http.MethodPost, "/api/products", body).Code)
	assert.Equal(t, http.StatusForbidden, env.doJSONRequest(t, http.MethodPost, "/api/products", body, user...).Code)

	rec := env.doJSONRequest(t, http.MethodPost, "/api/products", body, admin...)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p := decode[map[string]any](t, rec)
	assert.Equal(t, "elegant-kurta", p["slug"])
	assert.EqualValues(t, 89, p["price"])
	assert.Equal(t, []any{"S", "M", "L", "XL"}, p["sizeOptions"])

	rec = env.doJSONRequest(t, http.MethodPost, "/api/products", body, admin...)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateProduct_StrictBody(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "admin@example.com", true)

	cases := map[string]string{
		"unknown field":  `{"name":"A","description":"d","price":1,"category":"Ethnic","discount":5}`,
		"bad category":   `{"name":"A","description":"d","price":1,"category":"Sports"}`,
		"missing price":  `{"name":"A","description":"d","category":"Ethnic"}`,
		"negative stock": `{"name":"A","description":"d","price":1,"category":"Ethnic","stock":-1}`,
		"bad size":       `{"name":"A","description":"d","price":1,"category":"Ethnic","sizeOptions":["XXXL"]}`,
		"not json":       `name=A`,
	}
	for name, body := range cases {
		rec := env.doJSONRequest(t, http.MethodPost, "/api/products", body, admin...)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
}

func TestGetProducts_PaginationAndFilters(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "admin@example.com", true)
	env.createProduct(t, admin, "Tee One", "10", 1)
	env.createProduct(t, admin, "Tee Two", "20", 1)
	env.createProduct(t, admin, "Tee Three", "30", 1)

	rec := env.doJSONRequest(t, http.MethodGet, "/api/products?page=1&size=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Data []models.Product `json:"data"`
		Meta map[string]any   `json:"meta"`
	}](t, rec)
	assert.Len(t, body.Data, 2)
	assert.EqualValues(t, 3, body.Meta["total"])
	assert.EqualValues(t, 2, body.Meta["total_pages"])
	assert.Equal(t, true, body.Meta["has_next"])

	rec = env.doJSONRequest(t, http.MethodGet, "/api/products?minPrice=15&maxPrice=25", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body.Data = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Tee Two", body.Data[0].Name)

	rec = env.doJSONRequest(t, http.MethodGet, "/api/products?category=Sports", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProduct_ByIDAndSlug(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "admin@example.com", true)
	p := env.createProduct(t, admin, "Silk Saree", "120", 2)

	rec := env.doJSONRequest(t, http.MethodGet, "/api/products/"+p.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, p.ID, decode[models.Product](t, rec).ID)

	rec = env.doJSONRequest(t, http.MethodGet, "/api/products/slug/silk-saree", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusBadRequest, env.doJSONRequest(t, http.MethodGet, "/api/products/not-a-uuid", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.doJSONRequest(t, http.MethodGet, "/api/products/"+uuid.NewString(), nil).Code)
}

func TestPatchAndDeleteProduct(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "admin@example.com", true)
	p := env.createProduct(t, admin, "Wool Coat", "200", 2)

	rec := env.doJSONRequest(t, http.MethodPatch, "/api/products/"+p.ID.String(), `{"price":180.5,"isFeatured":true}`, admin...)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[map[string]any](t, rec)
	assert.EqualValues(t, 180.5, got["price"])
	assert.Equal(t, "wool-coat", got["slug"])

	rec = env.doJSONRequest(t, http.MethodGet, "/api/products/featured", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	featured := decode[struct {
		Data []models.Product `json:"data"`
	}](t, rec)
	assert.Len(t, featured.Data, 1)

	rec = env.doJSONRequest(t, http.MethodDelete, "/api/products/"+p.ID.String(), nil, admin...)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.doJSONRequest(t, http.MethodDelete, "/api/products/"+p.ID.String(), nil, admin...)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartAndCheckoutFlow(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "admin@example.com", true)
	user := env.login(t, "buyer@example.com", false)
	p := env.createProduct(t, admin, "Kurta", "89", 5)

	assert.Equal(t, http.StatusUnauthorized, env.doJSONRequest(t, http.MethodGet, "/api/cart", nil).Code)

	add := map[string]any{"productId": p.ID, "size": "M", "quantity": 2}
	rec := env.doJSONRequest(t, http.MethodPost, "/api/cart", add, user...)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cart := decode[map[string]any](t, rec)
	assert.EqualValues(t, 2, cart["itemCount"])
	assert.EqualValues(t, 178, cart["subtotal"])

	rec = env.doJSONRequest(t, http.MethodPost, "/api/cart", map[string]any{"productId": p.ID, "size": "M", "quantity": 4}, user...)
	assert.Equal(t, http.StatusConflict, rec.Code)

	order := map[string]any{
		"shippingAddress": map[string]any{
			"fullName": "Asha Rao", "address": "12 MG Road", "city": "Pune",
			"postalCode": "411001", "country": "IN", "phone": "+91 900000000",
		},
		"paymentMethod": "card",
		"totalPrice":    1,
	}
	rec = env.doJSONRequest(t, http.MethodPost, "/api/orders", order, user...)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	o := decode[map[string]any](t, rec)
	assert.EqualValues(t, 178, o["itemsPrice"])
	assert.EqualValues(t, 17.8, o["taxPrice"])
	assert.EqualValues(t, 25, o["shippingPrice"])
	assert.EqualValues(t, 220.8, o["totalPrice"])
	assert.Equal(t, "Pending", o["status"])
	orderID := o["_id"].(string)

	rec = env.doJSONRequest(t, http.MethodGet, "/api/cart", nil, user...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decode[map[string]any](t, rec)["itemCount"])

	rec = env.doJSONRequest(t, http.MethodPost, "/api/orders", order, user...)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.doJSONRequest(t, http.MethodGet, "/api/orders/myorders", nil, user...)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSONRequest(t, http.MethodPut, "/api/orders/"+orderID+"/pay", map[string]any{"id": "PAY-1", "status": "COMPLETED"}, user...)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decode[map[string]any](t, rec)["isPaid"])

	rec = env.doJSONRequest(t, http.MethodPut, "/api/orders/"+orderID+"/status", map[string]any{"status": "Processing"}, user...)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.doJSONRequest(t, http.MethodPut, "/api/orders/"+orderID+"/status", map[string]any{"status": "Delivered"}, admin...)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.doJSONRequest(t, http.MethodPut, "/api/orders/"+orderID+"/status", map[string]any{"status": "Processing"}, admin...)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.doJSONRequest(t, http.MethodGet, "/api/orders?status=Processing", nil, admin...)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Meta map[string]any `json:"meta"`
	}](t, rec)
	assert.EqualValues(t, 1, list.Meta["total"])
}

func TestGetOrder_OtherUserForbidden(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "admin@example.com", true)
	owner := env.login(t, "owner@example.com", false)
	other := env.login(t, "other@example.com", false)
	p := env.createProduct(t, admin, "Tee", "10", 5)

	order := map[string]any{
		"orderItems": []map[string]any{{"product": p.ID, "size": "S", "quantity": 1}},
		"shippingAddress": map[string]any{
			"fullName": "A", "address": "B", "city": "C", "postalCode": "1", "country": "IN", "phone": "2",
		},
		"paymentMethod": "cod",
	}
	rec := env.doJSONRequest(t, http.MethodPost, "/api/orders", order, owner...)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode[map[string]any](t, rec)["_id"].(string)

	assert.Equal(t, http.StatusOK, env.doJSONRequest(t, http.MethodGet, "/api/orders/"+id, nil, owner...).Code)
	assert.Equal(t, http.StatusForbidden, env.doJSONRequest(t, http.MethodGet, "/api/orders/"+id, nil, other...).Code)
	assert.Equal(t, http.StatusOK, env.doJSONRequest(t, http.MethodGet, "/api/orders/"+id, nil, admin...).Code)
}

func TestSubscribeAndContact(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "admin@example.com", true)

	rec := env.doJSONRequest(t, http.MethodPost, "/api/subscribe", map[string]any{"email": "fan@example.com", "source": "footer"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.doJSONRequest(t, http.MethodPost, "/api/subscribe", map[string]any{"email": "fan@example.com"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.doJSONRequest(t, http.MethodPost, "/api/subscribe", map[string]any{"email": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.doJSONRequest(t, http.MethodGet, "/api/subscribe", nil, admin...)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSONRequest(t, http.MethodPost, "/api/subscribe/unsubscribe", map[string]any{"email": "fan@example.com"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSONRequest(t, http.MethodPost, "/api/contact", map[string]any{
		"name": "Asha", "email": "asha@example.com", "subject": "Hi", "message": "Hello",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestAuthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSONRequest(t, http.MethodPost, "/api/auth/register", map[string]any{
		"name": "Asha", "email": "asha@example.com", "password": "password1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Result().Cookies())

	rec = env.doJSONRequest(t, http.MethodPost, "/api/auth/login", map[string]any{"email": "asha@example.com", "password": "bad"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.doJSONRequest(t, http.MethodPost, "/api/auth/login", map[string]any{"email": "asha@example.com", "password": "password1"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	refresh := body["refreshToken"].(string)

	rec = env.doJSONRequest(t, http.MethodPost, "/api/auth/refresh", map[string]any{"refreshToken": refresh})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rotated := decode[map[string]any](t, rec)["refreshToken"].(string)

	rec = env.doJSONRequest(t, http.MethodPost, "/api/auth/refresh", map[string]any{"refreshToken": refresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.doJSONRequest(t, http.MethodPost, "/api/auth/logout", nil, &http.Cookie{Name: tokens.RefreshCookie, Value: rotated})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSONRequest(t, http.MethodPost, "/api/auth/refresh", nil, &http.Cookie{Name: tokens.RefreshCookie, Value: rotated})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.doJSONRequest(t, http.MethodPost, "/api/auth/refresh", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

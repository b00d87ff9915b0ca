package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/fashion_shop/internal/middleware/auth"
)

type Deps struct {
	CatalogHandler      *CatalogHTTP
	CartHandler         *CartHTTP
	OrderHandler        *OrderHTTP
	SubscriptionHandler *SubscriptionHTTP
	AuthHandler         *AuthHTTP

	JWTSecret []byte
	Refresher authmw.Refresher
	// Ready backs /health/ready; nil means always ready.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	if e.Validator == nil {
		e.Validator = NewValidator()
	}

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable", "error": err.Error()})
			}
		}
		return c.NoContent(http.StatusOK)
	})

	mw := authmw.NewAutoRefreshMiddleware(d.JWTSecret, d.Refresher)
	api := e.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", d.AuthHandler.Register)
	authGroup.POST("/login", d.AuthHandler.Login)
	authGroup.POST("/refresh", d.AuthHandler.Refresh)
	authGroup.POST("/logout", d.AuthHandler.Logout)

	products := api.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/featured", d.CatalogHandler.GetFeatured)
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("/slug/:slug", d.CatalogHandler.GetProductBySlug)
	products.GET("/:id", d.CatalogHandler.GetProduct)

	productAdmin := products.Group("", mw.RequireAdmin)
	productAdmin.POST("", d.CatalogHandler.CreateProduct)
	productAdmin.PUT("/:id", d.CatalogHandler.PatchProduct)
	productAdmin.PATCH("/:id", d.CatalogHandler.PatchProduct)
	productAdmin.DELETE("/:id", d.CatalogHandler.DeleteProduct)

	cart := api.Group("/cart", mw.RequireAuth)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.DELETE("", d.CartHandler.ClearCart)
	cart.PUT("/:itemId", d.CartHandler.UpdateCartItem)
	cart.DELETE("/:itemId", d.CartHandler.RemoveCartItem)

	orders := api.Group("/orders")
	orders.POST("", d.OrderHandler.CreateOrder, mw.RequireAuth)
	orders.GET("/myorders", d.OrderHandler.GetMyOrders, mw.RequireAuth)
	orders.GET("/:id", d.OrderHandler.GetOrder, mw.RequireAuth)
	orders.PUT("/:id/pay", d.OrderHandler.PayOrder, mw.RequireAuth)
	orders.GET("", d.OrderHandler.ListOrders, mw.RequireAdmin)
	orders.PUT("/:id/status", d.OrderHandler.UpdateStatus, mw.RequireAdmin)

	subscribe := api.Group("/subscribe")
	subscribe.POST("", d.SubscriptionHandler.Subscribe)
	subscribe.POST("/unsubscribe", d.SubscriptionHandler.Unsubscribe)
	subscribe.GET("", d.SubscriptionHandler.ListSubscriptions, mw.RequireAdmin)

	api.POST("/contact", d.SubscriptionHandler.SubmitContact)
}

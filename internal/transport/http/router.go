package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/rosaarteira/storefront/internal/handlers"
	"github.com/rosaarteira/storefront/internal/service/token"
)

type Deps struct {
	AuthHandler    *handlers.AuthHandler
	ProductHandler *handlers.ProductHandler
	CartHandler    *handlers.CartHandler
	OrderHandler   *handlers.OrderHandler
	AddressHandler *handlers.AddressHandler
	AdminHandler   *handlers.AdminHandler
	SearchHandler  *handlers.SearchHandler
	Tokens         *token.Service
}

func Register(e *echo.Echo, d *Deps) {
	e.Validator = handlers.NewValidator()

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/logout", d.AuthHandler.Logout)
	v1.GET("/session", d.AuthHandler.Session, d.Tokens.RequireLogin)
	v1.GET("/search", d.SearchHandler.Handler)

	products := v1.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)

	cart := v1.Group("/cart", d.Tokens.RequireLogin)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.GET("/total", d.CartHandler.CartTotal)
	cart.DELETE("", d.CartHandler.ClearCart)
	cart.DELETE("/:productID", d.CartHandler.RemoveOneFromCart)
	cart.POST("/checkout", d.OrderHandler.Checkout)

	orders := v1.Group("/orders", d.Tokens.RequireLogin)
	orders.GET("", d.OrderHandler.MyOrders)

	addresses := v1.Group("/addresses", d.Tokens.RequireLogin)
	addresses.GET("", d.AddressHandler.List)
	addresses.POST("", d.AddressHandler.Save)
	addresses.GET("/default", d.AddressHandler.Default)
	addresses.POST("/:id/default", d.AddressHandler.SetDefault)

	admin := v1.Group("/admin", d.Tokens.RequireAdmin)
	admin.GET("/stats", d.AdminHandler.Stats)
	admin.GET("/users", d.AdminHandler.ListUsers)
	admin.POST("/users/:id/promote", d.AdminHandler.PromoteUser)
	admin.DELETE("/users/:id", d.AdminHandler.DeleteUser)
	admin.GET("/orders", d.AdminHandler.ListOrders)
	admin.PATCH("/orders/:id/status", d.AdminHandler.UpdateOrderStatus)
	admin.POST("/products", d.ProductHandler.CreateProduct)
	admin.PATCH("/products/:id", d.ProductHandler.PatchProduct)
	admin.DELETE("/products/:id", d.ProductHandler.DeleteProduct)
}

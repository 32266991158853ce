package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/avdeyev/webshop/internal/handlers"
	"github.com/avdeyev/webshop/internal/service/token"
)

type Deps struct {
	DB             *gorm.DB
	AuthHandler    *handlers.AuthHandler
	UserHandler    *handlers.UserHandler
	ProductHandler *handlers.ProductHandler
	OrderHandler   *handlers.OrderHandler
	SearchHandler  *handlers.SearchHandler
	TokenService   *token.TokenService
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/logout", d.AuthHandler.LogOut)

	v1.GET("/products", d.ProductHandler.GetProducts)
	v1.GET("/products/:id", d.ProductHandler.GetProduct)
	if d.SearchHandler != nil {
		v1.GET("/search", d.SearchHandler.Search)
	}

	admin := v1.Group("/admin", d.TokenService.AutoRefreshMiddlewareAdmin)

	admin.POST("/products", d.ProductHandler.CreateProduct)
	admin.PATCH("/products/:id", d.ProductHandler.PatchProduct)
	admin.DELETE("/products/:id", d.ProductHandler.DeleteProduct)

	admin.GET("/users", d.UserHandler.GetUsers)
	admin.GET("/users/:id", d.UserHandler.GetUser)
	admin.DELETE("/users/:id", d.UserHandler.DeleteUser)

	auth := v1.Group("", d.TokenService.AutoRefreshMiddleware)

	auth.POST("/orders", d.OrderHandler.CreateOrder)
	auth.GET("/orders", d.OrderHandler.GetOrders)
	auth.GET("/orders/:id", d.OrderHandler.GetOrder)
	auth.PATCH("/orders/:id", d.OrderHandler.PatchOrder)
	auth.DELETE("/orders/:id", d.OrderHandler.DeleteOrder)
	auth.GET("/orders/:id/lines", d.OrderHandler.GetOrderLines)

	auth.GET("/lines/:id", d.OrderHandler.GetOrderLine)
	auth.PATCH("/lines/:id", d.OrderHandler.PatchOrderLine)
	auth.DELETE("/lines/:id", d.OrderHandler.DeleteOrderLine)
}

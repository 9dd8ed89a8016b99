package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mgbucal/kapehan/internal/handlers"
	"github.com/mgbucal/kapehan/internal/handlers/cart"
	"github.com/mgbucal/kapehan/internal/service/token"
)

type Deps struct {
	DB                  *gorm.DB
	AuthHandler         *handlers.AuthHandler
	ProductHandler      *handlers.ProductHandler
	ProfileHandler      *handlers.ProfileHandler
	CartHandler         *cart.CartHandler
	OrderHandler        *handlers.OrderHandler
	OnsiteHandler       *handlers.OnsiteHandler
	NotificationHandler *handlers.NotificationHandler
	SearchHandler       *handlers.SearchHandler
	TokenService        *token.TokenService
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/logout", d.AuthHandler.LogOut)
	v1.GET("/search", d.SearchHandler.Search)

	products := v1.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)

	user := v1.Group("", d.TokenService.AutoRefreshMiddleware)

	user.GET("/cart", d.CartHandler.GetCart)
	user.POST("/cart", d.CartHandler.AddToCart)
	user.POST("/cart/checkout", d.CartHandler.Checkout)
	user.DELETE("/cart/:id", d.CartHandler.DeleteOneFromCart)
	user.DELETE("/cart/:id/all", d.CartHandler.DeleteAllFromCart)

	user.GET("/profile", d.ProfileHandler.GetProfile)
	user.PATCH("/profile", d.ProfileHandler.UpdateProfile)

	admin := v1.Group("/admin", d.TokenService.AutoRefreshMiddlewareAdmin)

	admin.POST("/products", d.ProductHandler.CreateProduct)
	admin.PATCH("/products/:id", d.ProductHandler.PatchProduct)
	admin.DELETE("/products/:id", d.ProductHandler.DeleteProduct)

	admin.GET("/orders", d.OrderHandler.ListOrders)
	admin.POST("/orders/:reference/accept", d.OrderHandler.AcceptOrder)
	admin.POST("/orders/:reference/decline", d.OrderHandler.DeclineOrder)
	admin.GET("/payment-history", d.OrderHandler.ListPaymentHistory)

	admin.POST("/onsite", d.OnsiteHandler.CreateOnsiteOrder)
	admin.GET("/onsite", d.OnsiteHandler.ListOnsiteOrders)
	admin.POST("/onsite/:id/confirm", d.OnsiteHandler.ConfirmOnsiteOrder)
	admin.GET("/onsite/history", d.OnsiteHandler.ListOnsiteHistory)
	admin.GET("/revenue/:period", d.OnsiteHandler.GetRevenue)

	admin.GET("/notifications", d.NotificationHandler.ListNotifications)
	admin.POST("/notifications/:id/read", d.NotificationHandler.MarkRead)
}

package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mahyudindev/e-commerce-sowryzel/controllers"
	"github.com/mahyudindev/e-commerce-sowryzel/middleware"
)

// Controllers bundles everything Register wires onto the engine.
type Controllers struct {
	Orders     *controllers.OrderController
	AdminOrder *controllers.AdminOrderController
	Webhooks   *controllers.WebhookController
	Shipping   *controllers.ShippingController
	Products   *controllers.ProductController
	Reviews    *controllers.ReviewController
}

func Register(r *gin.Engine, c Controllers) {
	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Gateway callbacks: no session auth, the notification authenticates
	// itself by payload signature.
	r.POST("/payments/notification", c.Webhooks.HandleNotification)
	r.GET("/payments/finish", c.Webhooks.HandleFinish)

	api := r.Group("/api")

	api.GET("/products", c.Products.ListProducts)
	api.GET("/products/:id", c.Products.GetProduct)
	api.GET("/products/:id/reviews", c.Reviews.GetProductReviews)

	shipping := api.Group("/shipping")
	shipping.GET("/provinces", c.Shipping.GetProvinces)
	shipping.GET("/cities", c.Shipping.GetCities)
	shipping.POST("/cost", c.Shipping.GetCost)

	orders := api.Group("/orders")
	orders.Use(middleware.AuthMiddleware())
	orders.POST("", c.Orders.CreateOrder)
	orders.GET("", c.Orders.GetOrders)
	orders.GET("/:id", c.Orders.GetOrderByID)
	orders.POST("/:id/retry-payment", c.Orders.RetryPayment)
	orders.POST("/:id/confirm-received", c.Orders.ConfirmReceived)

	reviews := api.Group("/reviews")
	reviews.Use(middleware.AuthMiddleware())
	reviews.POST("", c.Reviews.CreateReview)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminOnly())
	admin.GET("/orders", c.AdminOrder.ListOrders)
	admin.GET("/orders/:id", c.AdminOrder.GetOrder)
	admin.PATCH("/orders/:id/status", c.AdminOrder.UpdateStatus)
}

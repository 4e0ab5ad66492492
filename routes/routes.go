package routes

import (
	"net/http"

	"github.com/TechbroSam/jogiloran/controllers"
	"github.com/TechbroSam/jogiloran/middleware"
	"github.com/TechbroSam/jogiloran/services"

	"github.com/gin-gonic/gin"
)

// Controllers bundles every HTTP controller the API mounts.
type Controllers struct {
	Checkout *controllers.CheckoutController
	PayPal   *controllers.PayPalController
	Webhook  *controllers.WebhookController
	Orders   *controllers.OrderController
	Auth     *controllers.AuthController
	Reviews  *controllers.ReviewController
}

// RegisterRoutes wires the HTTP surface.
func RegisterRoutes(r *gin.Engine, c Controllers, tokens *services.TokenService) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// Payment webhooks are signature-verified, never token-authed.
	api.POST("/webhooks/stripe", c.Webhook.StripeWebhook)

	// Checkout works for both anonymous and logged-in shoppers.
	checkout := api.Group("/")
	checkout.Use(middleware.OptionalAuth(tokens))
	checkout.POST("/checkout/session", c.Checkout.CreateSession)
	checkout.POST("/paypal/orders", c.PayPal.CreateOrder)
	checkout.POST("/paypal/orders/:id/capture", c.PayPal.CaptureOrder)

	authed := api.Group("/")
	authed.Use(middleware.RequireAuth(tokens))
	authed.GET("/orders", c.Orders.GetMyOrders)
	authed.POST("/reviews", c.Reviews.SubmitReview)

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAuth(tokens), middleware.RequireAdmin())
	admin.GET("/orders", c.Orders.GetAllOrders)
	admin.POST("/orders/:id/ship", c.Orders.ShipOrder)

	auth := api.Group("/auth")
	auth.Use(middleware.RateLimitMiddleware())
	auth.POST("/register", c.Auth.Register)
	auth.POST("/login", c.Auth.Login)
	auth.POST("/forgot-password", c.Auth.ForgotPassword)
	auth.POST("/reset-password", c.Auth.ResetPassword)
}

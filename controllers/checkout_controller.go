package controllers

import (
	"context"
	"net/http"

	"github.com/TechbroSam/jogiloran/middleware"
	"github.com/TechbroSam/jogiloran/models"
	"github.com/TechbroSam/jogiloran/services"

	"github.com/gin-gonic/gin"
)

// CheckoutStarter opens a card checkout session for a validated cart.
type CheckoutStarter interface {
	CreateStripeSession(ctx context.Context, items []models.CartItem, customerEmail, origin string) (string, *services.ServiceError)
}

type CheckoutController struct {
	checkout CheckoutStarter
}

func NewCheckoutController(checkout CheckoutStarter) *CheckoutController {
	return &CheckoutController{checkout: checkout}
}

type createSessionRequest struct {
	Items []models.CartItem `json:"items" binding:"required,min=1,dive"`
}

// CreateSession handles POST /api/checkout/session. The discount is sourced
// server-side from the content store; any client-supplied discount is
// ignored.
func (cc *CheckoutController) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	// Email is optional here; the provider collects one during checkout if
	// the shopper is anonymous.
	customerEmail, _ := middleware.GetUserEmail(c)

	origin := c.GetHeader("Origin")
	if origin == "" {
		origin = "http://localhost:3000"
	}

	sessionID, serviceErr := cc.checkout.CreateStripeSession(c.Request.Context(), req.Items, customerEmail, origin)
	if serviceErr != nil {
		c.JSON(serviceErr.StatusCode, gin.H{"error": serviceErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID})
}

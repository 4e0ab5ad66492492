package controllers

import (
	"context"
	"net/http"

	"github.com/TechbroSam/jogiloran/middleware"
	"github.com/TechbroSam/jogiloran/models"
	"github.com/TechbroSam/jogiloran/services"

	"github.com/gin-gonic/gin"
)

// OrderManager is the order service surface the HTTP layer uses.
type OrderManager interface {
	GetUserOrders(ctx context.Context, userEmail string) ([]models.Order, *services.ServiceError)
	GetAllOrders(ctx context.Context) ([]models.Order, *services.ServiceError)
	ShipOrder(ctx context.Context, orderID string) (*models.Order, *services.ServiceError)
}

type OrderController struct {
	orders OrderManager
}

func NewOrderController(orders OrderManager) *OrderController {
	return &OrderController{orders: orders}
}

// GetMyOrders returns the authenticated user's orders, newest first.
func (oc *OrderController) GetMyOrders(c *gin.Context) {
	userEmail, err := middleware.GetUserEmail(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orders, serviceErr := oc.orders.GetUserOrders(c.Request.Context(), userEmail)
	if serviceErr != nil {
		c.JSON(serviceErr.StatusCode, gin.H{"error": serviceErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetAllOrders returns every order for the admin dashboard.
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	orders, serviceErr := oc.orders.GetAllOrders(c.Request.Context())
	if serviceErr != nil {
		c.JSON(serviceErr.StatusCode, gin.H{"error": serviceErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// ShipOrder marks an order shipped. Shipping an already-shipped order is a
// no-op that returns the current state.
func (oc *OrderController) ShipOrder(c *gin.Context) {
	orderID := c.Param("id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order ID is required"})
		return
	}

	order, serviceErr := oc.orders.ShipOrder(c.Request.Context(), orderID)
	if serviceErr != nil {
		c.JSON(serviceErr.StatusCode, gin.H{"error": serviceErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

package controllers

import (
	"context"
	"net/http"

	"github.com/TechbroSam/jogiloran/middleware"
	"github.com/TechbroSam/jogiloran/models"
	"github.com/TechbroSam/jogiloran/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WalletGateway is the wallet payment provider (PayPal).
type WalletGateway interface {
	CreateOrder(ctx context.Context, breakdown services.PaymentBreakdown, currency string) (string, error)
	CaptureOrder(ctx context.Context, orderID string) (*services.CaptureResult, error)
}

// StockValidator is the pre-payment piece of the checkout service the wallet
// flow needs.
type StockValidator interface {
	ValidateStock(ctx context.Context, items []models.CartItem) *services.ServiceError
	Discount(ctx context.Context) float64
}

// OrderConfirmer runs the unified post-payment sequence.
type OrderConfirmer interface {
	ConfirmPayment(ctx context.Context, payment services.ConfirmedPayment) (*models.Order, *services.ServiceError)
}

type PayPalController struct {
	paypal   WalletGateway
	checkout StockValidator
	orders   OrderConfirmer
	logger   *zap.Logger
}

func NewPayPalController(paypal WalletGateway, checkout StockValidator, orders OrderConfirmer, logger *zap.Logger) *PayPalController {
	return &PayPalController{
		paypal:   paypal,
		checkout: checkout,
		orders:   orders,
		logger:   logger,
	}
}

type createPayPalOrderRequest struct {
	Items        []models.CartItem `json:"items" binding:"required,min=1,dive"`
	ShippingCost float64           `json:"shippingCost" binding:"gte=0"`
}

// CreateOrder handles POST /api/paypal/orders. It validates stock, computes
// the itemized charge with the server-side discount, and opens a provider
// order. No state is persisted.
func (pc *PayPalController) CreateOrder(c *gin.Context) {
	var req createPayPalOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if serviceErr := pc.checkout.ValidateStock(c.Request.Context(), req.Items); serviceErr != nil {
		c.JSON(serviceErr.StatusCode, gin.H{"error": serviceErr.Message})
		return
	}

	discount := pc.checkout.Discount(c.Request.Context())
	breakdown := services.ComputeBreakdown(req.Items, discount, req.ShippingCost)

	orderID, err := pc.paypal.CreateOrder(c.Request.Context(), breakdown, "GBP")
	if err != nil {
		pc.logger.Error("Failed to create PayPal order", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create PayPal order."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orderID": orderID})
}

type capturePayPalOrderRequest struct {
	CartItems []models.CartItem `json:"cartItems" binding:"required,min=1,dive"`
}

// CaptureOrder handles POST /api/paypal/orders/:id/capture. The capture
// response is the proof of payment; its captured amount and shipping address
// go on the order, while the submitted cart only supplies the line-item
// snapshot.
func (pc *PayPalController) CaptureOrder(c *gin.Context) {
	orderID := c.Param("id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order ID is required"})
		return
	}

	var req capturePayPalOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	capture, err := pc.paypal.CaptureOrder(c.Request.Context(), orderID)
	if err != nil {
		pc.logger.Error("Failed to capture PayPal order", zap.String("paypal_order_id", orderID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to capture order."})
		return
	}

	userEmail, emailErr := middleware.GetUserEmail(c)
	if emailErr != nil {
		userEmail = capture.PayerEmail
	}

	items := make([]models.OrderProduct, 0, len(req.CartItems))
	for _, item := range req.CartItems {
		items = append(items, models.OrderProduct{
			ProductID: item.ProductID,
			Name:      item.DisplayName(),
			Quantity:  item.Quantity,
			Price:     item.Price,
			Size:      item.Size,
		})
	}

	order, serviceErr := pc.orders.ConfirmPayment(c.Request.Context(), services.ConfirmedPayment{
		Provider:        "paypal",
		SessionID:       orderID,
		CustomerEmail:   userEmail,
		AmountTotal:     capture.CapturedAmount,
		Currency:        capture.Currency,
		Items:           items,
		ShippingAddress: capture.Shipping,
	})
	if serviceErr != nil {
		c.JSON(serviceErr.StatusCode, gin.H{"error": serviceErr.Message})
		return
	}

	resp := gin.H{"success": true}
	if order != nil {
		resp["orderId"] = order.ID.Hex()
	}
	c.JSON(http.StatusOK, resp)
}

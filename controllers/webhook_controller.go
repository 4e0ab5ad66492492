package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/TechbroSam/jogiloran/models"
	"github.com/TechbroSam/jogiloran/services"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

// CardGateway is the card payment provider surface the webhook handler
// needs: signature verification and session retrieval with expanded line
// items.
type CardGateway interface {
	ParseWebhook(r *http.Request) (stripe.Event, error)
	RetrieveSession(sessionID string) (*stripe.CheckoutSession, error)
}

type WebhookController struct {
	stripe CardGateway
	orders OrderConfirmer
	logger *zap.Logger
}

func NewWebhookController(stripe CardGateway, orders OrderConfirmer, logger *zap.Logger) *WebhookController {
	return &WebhookController{
		stripe: stripe,
		orders: orders,
		logger: logger,
	}
}

// StripeWebhook handles POST /api/webhooks/stripe. The signature check is
// the only proof the payment happened, so a bad signature rejects the
// request before anything else runs.
func (wc *WebhookController) StripeWebhook(c *gin.Context) {
	event, err := wc.stripe.ParseWebhook(c.Request)
	if err != nil {
		wc.logger.Warn("Stripe webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook"})
		return
	}

	wc.logger.Info("Processing Stripe webhook",
		zap.String("event_type", string(event.Type)),
		zap.String("event_id", event.ID),
	)

	switch event.Type {
	case "checkout.session.completed":
		wc.handleCheckoutCompleted(c, event)
	default:
		wc.logger.Info("Unhandled webhook event type", zap.String("event_type", string(event.Type)))
		c.JSON(http.StatusOK, gin.H{"status": "received"})
	}
}

func (wc *WebhookController) handleCheckoutCompleted(c *gin.Context, event stripe.Event) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		wc.logger.Error("Failed to unmarshal checkout session", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event payload"})
		return
	}

	// The event payload carries no line items; retrieve the full session
	// with products expanded so the metadata is available.
	fullSession, err := wc.stripe.RetrieveSession(sess.ID)
	if err != nil {
		wc.logger.Error("Failed to retrieve checkout session", zap.String("session_id", sess.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve session"})
		return
	}

	details := fullSession.CustomerDetails
	if details == nil || details.Email == "" {
		wc.logger.Error("Customer email not found in session", zap.String("session_id", sess.ID))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Customer email not found"})
		return
	}
	if details.Address == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required shipping details in session information"})
		return
	}

	items := make([]models.OrderProduct, 0)
	if fullSession.LineItems != nil {
		for _, li := range fullSession.LineItems.Data {
			if li.Price == nil || li.Price.Product == nil {
				continue
			}
			product := li.Price.Product
			items = append(items, models.OrderProduct{
				ProductID: product.Metadata[services.MetadataProductID],
				Name:      product.Name,
				Quantity:  int(li.Quantity),
				Price:     float64(li.Price.UnitAmount) / 100,
				Size:      product.Metadata[services.MetadataSize],
			})
		}
	}

	_, serviceErr := wc.orders.ConfirmPayment(c.Request.Context(), services.ConfirmedPayment{
		Provider:      "stripe",
		SessionID:     fullSession.ID,
		CustomerEmail: details.Email,
		AmountTotal:   float64(fullSession.AmountTotal) / 100,
		Currency:      string(fullSession.Currency),
		Items:         items,
		ShippingAddress: models.ShippingAddress{
			Name: details.Name,
			Address: models.Address{
				Line1:      details.Address.Line1,
				Line2:      details.Address.Line2,
				City:       details.Address.City,
				State:      details.Address.State,
				PostalCode: details.Address.PostalCode,
				Country:    details.Address.Country,
			},
		},
	})
	if serviceErr != nil {
		c.JSON(serviceErr.StatusCode, gin.H{"error": serviceErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

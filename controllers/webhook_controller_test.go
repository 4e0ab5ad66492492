package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/TechbroSam/jogiloran/models"
	"github.com/TechbroSam/jogiloran/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

type stubCardGateway struct {
	event    stripe.Event
	parseErr error
	session  *stripe.CheckoutSession
	getErr   error
}

func (s *stubCardGateway) ParseWebhook(r *http.Request) (stripe.Event, error) {
	if s.parseErr != nil {
		return stripe.Event{}, s.parseErr
	}
	return s.event, nil
}

func (s *stubCardGateway) RetrieveSession(sessionID string) (*stripe.CheckoutSession, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.session, nil
}

type stubOrderConfirmer struct {
	payments []services.ConfirmedPayment
	err      *services.ServiceError
}

func (s *stubOrderConfirmer) ConfirmPayment(ctx context.Context, payment services.ConfirmedPayment) (*models.Order, *services.ServiceError) {
	if s.err != nil {
		return nil, s.err
	}
	s.payments = append(s.payments, payment)
	return &models.Order{UserEmail: payment.CustomerEmail}, nil
}

func newWebhookRouter(gateway *stubCardGateway, confirmer *stubOrderConfirmer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	wc := NewWebhookController(gateway, confirmer, zap.NewNop())
	r.POST("/api/webhooks/stripe", wc.StripeWebhook)
	return r
}

func postWebhook(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=sig")
	r.ServeHTTP(w, req)
	return w
}

func completedEvent(sessionID string) stripe.Event {
	return stripe.Event{
		ID:   "evt_test_1",
		Type: "checkout.session.completed",
		Data: &stripe.EventData{
			Raw: []byte(`{"id": "` + sessionID + `"}`),
		},
	}
}

func expandedSession(sessionID string) *stripe.CheckoutSession {
	return &stripe.CheckoutSession{
		ID:          sessionID,
		AmountTotal: 12999,
		Currency:    "gbp",
		CustomerDetails: &stripe.CheckoutSessionCustomerDetails{
			Email: "buyer@example.com",
			Name:  "Jo Bloggs",
			Address: &stripe.Address{
				Line1:      "1 High Street",
				City:       "London",
				PostalCode: "SW1A 1AA",
				Country:    "GB",
			},
		},
		LineItems: &stripe.LineItemList{
			Data: []*stripe.LineItem{
				{
					Quantity: 2,
					Price: &stripe.Price{
						UnitAmount: 2999,
						Product: &stripe.Product{
							Name: "Classic Belt - Size: M",
							Metadata: map[string]string{
								services.MetadataProductID: "prod-belt",
								services.MetadataSize:      "M",
							},
						},
					},
				},
			},
		},
	}
}

func TestStripeWebhook_BadSignature(t *testing.T) {
	gateway := &stubCardGateway{parseErr: errors.New("signature verification failed")}
	confirmer := &stubOrderConfirmer{}
	r := newWebhookRouter(gateway, confirmer)

	w := postWebhook(r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, confirmer.payments, "unverified events must not confirm anything")
}

func TestStripeWebhook_UnhandledEventAcknowledged(t *testing.T) {
	gateway := &stubCardGateway{event: stripe.Event{ID: "evt_2", Type: "invoice.paid"}}
	confirmer := &stubOrderConfirmer{}
	r := newWebhookRouter(gateway, confirmer)

	w := postWebhook(r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, confirmer.payments)
}

func TestStripeWebhook_CheckoutCompleted(t *testing.T) {
	gateway := &stubCardGateway{
		event:   completedEvent("cs_test_abc"),
		session: expandedSession("cs_test_abc"),
	}
	confirmer := &stubOrderConfirmer{}
	r := newWebhookRouter(gateway, confirmer)

	w := postWebhook(r)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, confirmer.payments, 1)

	payment := confirmer.payments[0]
	assert.Equal(t, "stripe", payment.Provider)
	assert.Equal(t, "cs_test_abc", payment.SessionID)
	assert.Equal(t, "buyer@example.com", payment.CustomerEmail)
	assert.Equal(t, 129.99, payment.AmountTotal, "amount must be the provider's, in pounds")
	assert.Equal(t, "gbp", payment.Currency)
	assert.Equal(t, "Jo Bloggs", payment.ShippingAddress.Name)
	assert.Equal(t, "London", payment.ShippingAddress.Address.City)

	require.Len(t, payment.Items, 1)
	assert.Equal(t, "prod-belt", payment.Items[0].ProductID)
	assert.Equal(t, "M", payment.Items[0].Size)
	assert.Equal(t, 2, payment.Items[0].Quantity)
	assert.Equal(t, 29.99, payment.Items[0].Price)
}

func TestStripeWebhook_MissingCustomerEmail(t *testing.T) {
	session := expandedSession("cs_test_abc")
	session.CustomerDetails.Email = ""
	gateway := &stubCardGateway{event: completedEvent("cs_test_abc"), session: session}
	confirmer := &stubOrderConfirmer{}
	r := newWebhookRouter(gateway, confirmer)

	w := postWebhook(r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, confirmer.payments)
}

func TestStripeWebhook_MissingShippingAddress(t *testing.T) {
	session := expandedSession("cs_test_abc")
	session.CustomerDetails.Address = nil
	gateway := &stubCardGateway{event: completedEvent("cs_test_abc"), session: session}
	confirmer := &stubOrderConfirmer{}
	r := newWebhookRouter(gateway, confirmer)

	w := postWebhook(r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, confirmer.payments)
}

func TestStripeWebhook_SessionRetrievalFailure(t *testing.T) {
	gateway := &stubCardGateway{event: completedEvent("cs_test_abc"), getErr: errors.New("stripe: 500")}
	confirmer := &stubOrderConfirmer{}
	r := newWebhookRouter(gateway, confirmer)

	w := postWebhook(r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, confirmer.payments)
}

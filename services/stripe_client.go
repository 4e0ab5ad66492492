package services

import (
	"bytes"
	"io"
	"math"
	"net/http"

	"github.com/TechbroSam/jogiloran/models"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/coupon"
	"github.com/stripe/stripe-go/v80/webhook"
)

// line-item metadata keys, read back by the webhook handler to map provider
// line items onto inventory records
const (
	MetadataProductID = "sanityProductId"
	MetadataSize      = "size"
)

type StripeService struct {
	SecretKey          string
	WebhookKey         string
	UKShippingRateID   string
	IntlShippingRateID string
}

func NewStripeService(secretKey, webhookKey, ukShippingRateID, intlShippingRateID string) *StripeService {
	stripe.Key = secretKey
	return &StripeService{
		SecretKey:          secretKey,
		WebhookKey:         webhookKey,
		UKShippingRateID:   ukShippingRateID,
		IntlShippingRateID: intlShippingRateID,
	}
}

// CreateCheckoutSession builds a hosted checkout session for the cart and
// returns its id. Each line item carries the product id and size as metadata
// so confirmation can decrement inventory without re-querying by name.
// Nothing is persisted here.
func (s *StripeService) CreateCheckoutSession(items []models.CartItem, discountPct float64, customerEmail, origin string) (string, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for _, item := range items {
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(item.DisplayName()),
			Metadata: map[string]string{
				MetadataProductID: item.ProductID,
				MetadataSize:      item.Size,
			},
		}
		if item.ImageURL != "" {
			productData.Images = stripe.StringSlice([]string{item.ImageURL})
		}

		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String("gbp"),
				ProductData: productData,
				UnitAmount:  stripe.Int64(int64(math.Round(item.Price * 100))),
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes:       stripe.StringSlice([]string{"card"}),
		LineItems:                lineItems,
		Mode:                     stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:               stripe.String(origin + "/success"),
		CancelURL:                stripe.String(origin + "/cart"),
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionRequired)),
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice([]string{"GB", "US", "CA"}),
		},
		ShippingOptions: []*stripe.CheckoutSessionShippingOptionParams{
			{ShippingRate: stripe.String(s.UKShippingRateID)},
			{ShippingRate: stripe.String(s.IntlShippingRateID)},
		},
	}
	if customerEmail != "" {
		params.CustomerEmail = stripe.String(customerEmail)
	}

	if discountPct > 0 {
		c, err := coupon.New(&stripe.CouponParams{
			PercentOff: stripe.Float64(discountPct),
			Duration:   stripe.String(string(stripe.CouponDurationOnce)),
		})
		if err != nil {
			return "", err
		}
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{
			{Coupon: stripe.String(c.ID)},
		}
	}

	sess, err := session.New(params)
	if err != nil {
		return "", err
	}
	return sess.ID, nil
}

// RetrieveSession fetches the full session with line items and their
// products expanded, as the confirmation step needs the metadata on each
// product.
func (s *StripeService) RetrieveSession(sessionID string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.AddExpand("line_items.data.price.product")
	params.AddExpand("customer")
	return session.Get(sessionID, params)
}

// ParseWebhook verifies the webhook signature and returns the event. A bad
// signature fails here and the request must be rejected without touching any
// state.
func (s *StripeService) ParseWebhook(r *http.Request) (stripe.Event, error) {
	var event stripe.Event
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return event, err
	}
	r.Body = io.NopCloser(bytes.NewBuffer(payload))
	sigHeader := r.Header.Get("Stripe-Signature")
	return webhook.ConstructEvent(payload, sigHeader, s.WebhookKey)
}

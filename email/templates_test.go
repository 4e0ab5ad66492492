package email

import (
	"testing"
	"time"

	"github.com/TechbroSam/jogiloran/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testOrder(t *testing.T) *models.Order {
	t.Helper()
	id, err := primitive.ObjectIDFromHex("65f000000000000000abc123")
	require.NoError(t, err)
	return &models.Order{
		ID:          id,
		UserEmail:   "jo@example.com",
		TotalAmount: 129.99,
		Currency:    "gbp",
		CreatedAt:   time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
		Products: []models.OrderProduct{
			{ProductID: "prod-belt", Name: "Classic Belt - Size: M", Quantity: 2, Price: 29.99, Size: "M"},
			{ProductID: "prod-bag", Name: "Weekender Bag", Quantity: 1, Price: 70.01},
		},
		ShippingAddress: models.ShippingAddress{
			Name: "Jo Bloggs",
			Address: models.Address{
				Line1:      "1 High Street",
				City:       "London",
				PostalCode: "SW1A 1AA",
				Country:    "GB",
			},
		},
	}
}

func TestRenderOrderConfirmation(t *testing.T) {
	order := testOrder(t)

	subject, body, err := RenderOrderConfirmation(order)
	require.NoError(t, err)

	assert.Equal(t, "Order Confirmation - #abc123", subject)
	assert.Contains(t, body, "...abc123", "order id shown as its last six characters")
	assert.Contains(t, body, "31/08/2026", "dates rendered en-GB")
	assert.Contains(t, body, "129.99")
	assert.Contains(t, body, "Classic Belt - Size: M (x2)")
	assert.Contains(t, body, "59.98", "line totals are price times quantity")
	assert.Contains(t, body, "Jo Bloggs")
	assert.Contains(t, body, "SW1A 1AA")
}

func TestRenderShipped(t *testing.T) {
	order := testOrder(t)

	subject, body, err := RenderShipped(order, "31/08/2026")
	require.NoError(t, err)

	assert.Equal(t, "Your Order #abc123 has shipped!", subject)
	assert.Contains(t, body, "#abc123")
	assert.Contains(t, body, "31/08/2026")
}

func TestRenderPasswordReset(t *testing.T) {
	subject, body, err := RenderPasswordReset("https://shop.example.com/reset-password?token=deadbeef")
	require.NoError(t, err)

	assert.Equal(t, "Password Reset Request", subject)
	assert.Contains(t, body, `href="https://shop.example.com/reset-password?token=deadbeef"`)
}

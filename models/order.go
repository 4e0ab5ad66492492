package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderProduct is a frozen snapshot of a purchased line item. It is copied
// from the cart at confirmation time, never a live reference into the
// content store.
type OrderProduct struct {
	ProductID string  `bson:"product_id,omitempty" json:"productId,omitempty"`
	Name      string  `bson:"name" json:"name"`
	Quantity  int     `bson:"quantity" json:"quantity"`
	Price     float64 `bson:"price" json:"price"`
	Size      string  `bson:"size,omitempty" json:"size,omitempty"`
}

// Address is the structured postal address captured from the payment
// provider's confirmed shipping details.
type Address struct {
	Line1      string `bson:"line1" json:"line1"`
	Line2      string `bson:"line2,omitempty" json:"line2,omitempty"`
	City       string `bson:"city" json:"city"`
	State      string `bson:"state,omitempty" json:"state,omitempty"`
	PostalCode string `bson:"postal_code" json:"postal_code"`
	Country    string `bson:"country" json:"country"`
}

type ShippingAddress struct {
	Name    string  `bson:"name" json:"name"`
	Address Address `bson:"address" json:"address"`
}

// Order is created exactly once per confirmed payment. TotalAmount always
// comes from the provider's captured amount, never from the client. The only
// mutable field after creation is IsShipped (false -> true, once).
type Order struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserEmail         string             `bson:"user_email" json:"userEmail"`
	Products          []OrderProduct     `bson:"products" json:"products"`
	TotalAmount       float64            `bson:"total_amount" json:"totalAmount"`
	Currency          string             `bson:"currency" json:"currency"`
	ShippingAddress   ShippingAddress    `bson:"shipping_address" json:"shippingAddress"`
	Provider          string             `bson:"provider" json:"provider"`
	ProviderSessionID string             `bson:"provider_session_id" json:"-"`
	IsPaid            bool               `bson:"is_paid" json:"isPaid"`
	IsShipped         bool               `bson:"is_shipped" json:"isShipped"`
	CreatedAt         time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updatedAt"`
}

// ShortID returns the last six characters of the order id, used for display
// in customer-facing emails.
func (o *Order) ShortID() string {
	id := o.ID.Hex()
	if len(id) <= 6 {
		return id
	}
	return id[len(id)-6:]
}

package models

// CartItem is a single line in a client-held cart. Carts are never persisted
// server-side; the client submits the full cart at checkout time.
type CartItem struct {
	ProductID string  `json:"_id" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	Price     float64 `json:"price" binding:"required,gt=0"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	Size      string  `json:"size"`
	ImageURL  string  `json:"imageUrl"`
}

// DisplayName returns the item name with its size suffix, matching how line
// items are shown at the payment provider and in emails.
func (i CartItem) DisplayName() string {
	if i.Size != "" {
		return i.Name + " - Size: " + i.Size
	}
	return i.Name
}

package email

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/TechbroSam/jogiloran/models"
)

// HTML bodies for the transactional emails. Layout and copy follow the
// storefront's customer emails; dates are rendered en-GB.

const orderConfirmationHTML = `<html>
<body style="background-color:#f6f9fc;font-family:Helvetica,Arial,sans-serif;">
  <div style="background-color:#ffffff;margin:0 auto;padding:20px 0 48px;border-radius:8px;max-width:600px;">
    <p style="text-align:center;font-size:24px;font-weight:bold;">Axion Leather</p>
    <h1 style="text-align:center;font-size:20px;">Thanks for your order!</h1>
    <p style="padding:0 40px;">We're getting your order ready and will notify you once it has shipped.</p>
    <hr style="border-color:#e6ebf1;" />
    <div style="padding:0 40px;">
      <p style="font-weight:bold;">Order Details</p>
      <p>
        <strong>Order ID:</strong> ...{{.ShortID}}<br />
        <strong>Order Date:</strong> {{.OrderDate}}<br />
        <strong>Order Total:</strong> &pound;{{.TotalAmount}}
      </p>
    </div>
    <hr style="border-color:#e6ebf1;" />
    <div style="padding:0 40px;">
      <p style="font-weight:bold;">Shipping to</p>
      <p>
        {{.Shipping.Name}}<br />
        {{.Shipping.Address.Line1}}<br />
        {{if .Shipping.Address.Line2}}{{.Shipping.Address.Line2}}<br />{{end}}
        {{.Shipping.Address.City}}, {{.Shipping.Address.PostalCode}}<br />
        {{.Shipping.Address.Country}}
      </p>
    </div>
    <hr style="border-color:#e6ebf1;" />
    <div style="padding:0 40px;">
      <p style="font-weight:bold;">Items</p>
      {{range .Items}}
      <p>{{.Name}} (x{{.Quantity}}) &mdash; &pound;{{.LineTotal}}</p>
      {{end}}
    </div>
    <hr style="border-color:#e6ebf1;" />
    <p style="text-align:center;color:#8898aa;font-size:12px;">Axion Leather, 123 Craft Street, Manchester, UK</p>
  </div>
</body>
</html>`

const shippedHTML = `<html>
<body style="background-color:#f6f9fc;font-family:Helvetica,Arial,sans-serif;">
  <div style="background-color:#ffffff;margin:0 auto;padding:20px 0 48px;border-radius:8px;max-width:600px;">
    <p style="text-align:center;font-size:24px;font-weight:bold;">Axion Leather</p>
    <h1 style="text-align:center;font-size:20px;">Your order is on its way!</h1>
    <p style="padding:0 40px;">
      Good news &mdash; order <strong>#{{.ShortID}}</strong> was shipped on {{.ShippedDate}}.
    </p>
    <hr style="border-color:#e6ebf1;" />
    <p style="text-align:center;color:#8898aa;font-size:12px;">Axion Leather, 123 Craft Street, Manchester, UK</p>
  </div>
</body>
</html>`

const passwordResetHTML = `<p>Please click the following link to reset your password:</p>
<p><a href="{{.ResetURL}}">{{.ResetURL}}</a></p>`

var (
	orderConfirmationTmpl = template.Must(template.New("orderConfirmation").Parse(orderConfirmationHTML))
	shippedTmpl           = template.Must(template.New("shipped").Parse(shippedHTML))
	passwordResetTmpl     = template.Must(template.New("passwordReset").Parse(passwordResetHTML))
)

type confirmationItem struct {
	Name      string
	Quantity  int
	LineTotal string
}

// RenderOrderConfirmation returns the subject and HTML body for the order
// confirmation email.
func RenderOrderConfirmation(order *models.Order) (string, string, error) {
	items := make([]confirmationItem, 0, len(order.Products))
	for _, p := range order.Products {
		items = append(items, confirmationItem{
			Name:      p.Name,
			Quantity:  p.Quantity,
			LineTotal: fmt.Sprintf("%.2f", p.Price*float64(p.Quantity)),
		})
	}

	data := struct {
		ShortID     string
		OrderDate   string
		TotalAmount string
		Shipping    models.ShippingAddress
		Items       []confirmationItem
	}{
		ShortID:     order.ShortID(),
		OrderDate:   order.CreatedAt.Format("02/01/2006"),
		TotalAmount: fmt.Sprintf("%.2f", order.TotalAmount),
		Shipping:    order.ShippingAddress,
		Items:       items,
	}

	var buf bytes.Buffer
	if err := orderConfirmationTmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render order confirmation: %w", err)
	}

	subject := fmt.Sprintf("Order Confirmation - #%s", order.ShortID())
	return subject, buf.String(), nil
}

// RenderShipped returns the subject and HTML body for the shipment
// notification email.
func RenderShipped(order *models.Order, shippedDate string) (string, string, error) {
	data := struct {
		ShortID     string
		ShippedDate string
	}{
		ShortID:     order.ShortID(),
		ShippedDate: shippedDate,
	}

	var buf bytes.Buffer
	if err := shippedTmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render shipped email: %w", err)
	}

	subject := fmt.Sprintf("Your Order #%s has shipped!", order.ShortID())
	return subject, buf.String(), nil
}

// RenderPasswordReset returns the subject and HTML body for the password
// reset email.
func RenderPasswordReset(resetURL string) (string, string, error) {
	var buf bytes.Buffer
	if err := passwordResetTmpl.Execute(&buf, struct{ ResetURL string }{resetURL}); err != nil {
		return "", "", fmt.Errorf("render password reset email: %w", err)
	}
	return "Password Reset Request", buf.String(), nil
}

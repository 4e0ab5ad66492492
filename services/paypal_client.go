package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/TechbroSam/jogiloran/models"

	"github.com/shopspring/decimal"
)

// PayPalService is a minimal client for the PayPal Orders v2 API: create an
// order with an itemized amount breakdown, then capture it. PayPal rejects
// orders whose breakdown does not sum exactly to the total, which is why the
// breakdown is computed in decimal arithmetic.
type PayPalService struct {
	clientID     string
	clientSecret string
	baseURL      string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewPayPalService(clientID, clientSecret, baseURL string) *PayPalService {
	return &PayPalService{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ---- amount breakdown ----

// PaymentBreakdown is the itemized charge for a cart: subtotal, sitewide
// discount, shipping, and their exact sum.
type PaymentBreakdown struct {
	ItemTotal decimal.Decimal
	Discount  decimal.Decimal
	Shipping  decimal.Decimal
	Total     decimal.Decimal
}

// ComputeBreakdown derives the charge for a cart. The discounted subtotal is
// itemTotal - itemTotal*discountPct/100; shipping is added after the
// discount. All parts are rounded to pennies before the total is formed from
// them, so ItemTotal - Discount + Shipping == Total always holds.
func ComputeBreakdown(items []models.CartItem, discountPct, shippingCost float64) PaymentBreakdown {
	itemTotal := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		itemTotal = itemTotal.Add(line)
	}
	itemTotal = itemTotal.Round(2)

	discount := itemTotal.
		Mul(decimal.NewFromFloat(discountPct)).
		Div(decimal.NewFromInt(100)).
		Round(2)

	shipping := decimal.NewFromFloat(shippingCost).Round(2)

	return PaymentBreakdown{
		ItemTotal: itemTotal,
		Discount:  discount,
		Shipping:  shipping,
		Total:     itemTotal.Sub(discount).Add(shipping),
	}
}

// ---- PayPal API request/response structs ----

type paypalMoney struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type paypalAmountBreakdown struct {
	ItemTotal        paypalMoney `json:"item_total"`
	Discount         paypalMoney `json:"discount"`
	Shipping         paypalMoney `json:"shipping"`
	Handling         paypalMoney `json:"handling"`
	Insurance        paypalMoney `json:"insurance"`
	ShippingDiscount paypalMoney `json:"shipping_discount"`
	TaxTotal         paypalMoney `json:"tax_total"`
}

type paypalAmount struct {
	CurrencyCode string                `json:"currency_code"`
	Value        string                `json:"value"`
	Breakdown    paypalAmountBreakdown `json:"breakdown"`
}

type paypalPurchaseUnitRequest struct {
	Amount paypalAmount `json:"amount"`
}

type paypalCreateOrderRequest struct {
	Intent        string                      `json:"intent"`
	PurchaseUnits []paypalPurchaseUnitRequest `json:"purchase_units"`
}

type paypalCreateOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type paypalCaptureResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PurchaseUnits []struct {
		Shipping struct {
			Name struct {
				FullName string `json:"full_name"`
			} `json:"name"`
			Address struct {
				AddressLine1 string `json:"address_line_1"`
				AddressLine2 string `json:"address_line_2"`
				AdminArea2   string `json:"admin_area_2"`
				AdminArea1   string `json:"admin_area_1"`
				PostalCode   string `json:"postal_code"`
				CountryCode  string `json:"country_code"`
			} `json:"address"`
		} `json:"shipping"`
		Payments struct {
			Captures []struct {
				ID     string      `json:"id"`
				Status string      `json:"status"`
				Amount paypalMoney `json:"amount"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
	Payer struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
}

type paypalTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// ---- operations ----

// CreateOrder submits a CAPTURE-intent order for the given breakdown and
// returns the provider's opaque order id. Nothing is persisted here.
func (s *PayPalService) CreateOrder(ctx context.Context, breakdown PaymentBreakdown, currency string) (string, error) {
	money := func(d decimal.Decimal) paypalMoney {
		return paypalMoney{CurrencyCode: currency, Value: d.StringFixed(2)}
	}
	zero := money(decimal.Zero)

	reqBody := paypalCreateOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []paypalPurchaseUnitRequest{{
			Amount: paypalAmount{
				CurrencyCode: currency,
				Value:        breakdown.Total.StringFixed(2),
				Breakdown: paypalAmountBreakdown{
					ItemTotal:        money(breakdown.ItemTotal),
					Discount:         money(breakdown.Discount),
					Shipping:         money(breakdown.Shipping),
					Handling:         zero,
					Insurance:        zero,
					ShippingDiscount: zero,
					TaxTotal:         zero,
				},
			},
		}},
	}

	var resp paypalCreateOrderResponse
	if err := s.doRequest(ctx, http.MethodPost, "/v2/checkout/orders", reqBody, &resp); err != nil {
		return "", fmt.Errorf("paypal CreateOrder: %w", err)
	}
	return resp.ID, nil
}

// CaptureResult is the provider-confirmed outcome of a capture: the amount
// actually collected, the payer, and the shipping destination.
type CaptureResult struct {
	CaptureID      string
	CapturedAmount float64
	Currency       string
	PayerEmail     string
	Shipping       models.ShippingAddress
}

// CaptureOrder captures a previously created order. The returned amount is
// the provider's captured value, the only total an order record may carry.
func (s *PayPalService) CaptureOrder(ctx context.Context, orderID string) (*CaptureResult, error) {
	path := fmt.Sprintf("/v2/checkout/orders/%s/capture", url.PathEscape(orderID))

	var resp paypalCaptureResponse
	if err := s.doRequest(ctx, http.MethodPost, path, struct{}{}, &resp); err != nil {
		return nil, fmt.Errorf("paypal CaptureOrder: %w", err)
	}

	if len(resp.PurchaseUnits) == 0 || len(resp.PurchaseUnits[0].Payments.Captures) == 0 {
		return nil, fmt.Errorf("paypal CaptureOrder: no capture in response (status %s)", resp.Status)
	}

	unit := resp.PurchaseUnits[0]
	capture := unit.Payments.Captures[0]
	if capture.Status != "COMPLETED" && capture.Status != "PENDING" {
		return nil, fmt.Errorf("paypal CaptureOrder: capture status %s", capture.Status)
	}

	amount, err := decimal.NewFromString(capture.Amount.Value)
	if err != nil {
		return nil, fmt.Errorf("paypal CaptureOrder: parse amount %q: %w", capture.Amount.Value, err)
	}
	amountF, _ := amount.Float64()

	return &CaptureResult{
		CaptureID:      capture.ID,
		CapturedAmount: amountF,
		Currency:       capture.Amount.CurrencyCode,
		PayerEmail:     resp.Payer.EmailAddress,
		Shipping: models.ShippingAddress{
			Name: unit.Shipping.Name.FullName,
			Address: models.Address{
				Line1:      unit.Shipping.Address.AddressLine1,
				Line2:      unit.Shipping.Address.AddressLine2,
				City:       unit.Shipping.Address.AdminArea2,
				State:      unit.Shipping.Address.AdminArea1,
				PostalCode: unit.Shipping.Address.PostalCode,
				Country:    unit.Shipping.Address.CountryCode,
			},
		},
	}, nil
}

// ---- auth + HTTP helpers ----

func (s *PayPalService) token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken != "" && time.Now().Before(s.tokenExpiry) {
		return s.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.SetBasicAuth(s.clientID, s.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paypal token error (status %d): %s", resp.StatusCode, string(respBytes))
	}

	var tok paypalTokenResponse
	if err := json.Unmarshal(respBytes, &tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	s.accessToken = tok.AccessToken
	// refresh a minute early
	s.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn-60) * time.Second)
	return s.accessToken, nil
}

func (s *PayPalService) doRequest(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	token, err := s.token(ctx)
	if err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("paypal API error (status %d): %s", resp.StatusCode, string(respBytes))
	}

	if out != nil {
		if err := json.Unmarshal(respBytes, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// SetBaseURL overrides the API host. Used by tests.
func (s *PayPalService) SetBaseURL(baseURL string) {
	s.baseURL = strings.TrimRight(baseURL, "/")
}

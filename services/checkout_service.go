package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/TechbroSam/jogiloran/models"

	"go.uber.org/zap"
)

// ContentStore is the read side of the content platform used at checkout.
type ContentStore interface {
	FetchInventory(ctx context.Context, productIDs []string) ([]models.Product, error)
	GetSiteSettings(ctx context.Context) (*models.SiteSettings, error)
}

// SessionCreator creates a hosted card-checkout session.
type SessionCreator interface {
	CreateCheckoutSession(items []models.CartItem, discountPct float64, customerEmail, origin string) (string, error)
}

// SettingsCache caches site settings between checkouts.
type SettingsCache interface {
	Get(ctx context.Context) (*models.SiteSettings, error)
	Set(ctx context.Context, settings *models.SiteSettings) error
}

// CheckoutService validates a cart against live inventory and opens payment
// sessions. It never mutates persistent state; everything after payment is
// the order service's job.
type CheckoutService struct {
	content ContentStore
	stripe  SessionCreator
	cache   SettingsCache
	logger  *zap.Logger
}

func NewCheckoutService(content ContentStore, stripe SessionCreator, cache SettingsCache, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		content: content,
		stripe:  stripe,
		cache:   cache,
		logger:  logger,
	}
}

// ValidateStock checks that every cart line is satisfiable by current
// inventory. The first failing line aborts the whole request; a passing run
// has no side effects.
func (s *CheckoutService) ValidateStock(ctx context.Context, items []models.CartItem) *ServiceError {
	if len(items) == 0 {
		return &ServiceError{StatusCode: http.StatusBadRequest, Message: "Cart is empty."}
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.content.FetchInventory(ctx, ids)
	if err != nil {
		s.logger.Error("Failed to fetch inventory", zap.Error(err))
		return &ServiceError{StatusCode: http.StatusBadGateway, Message: "Could not verify stock levels."}
	}

	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			return &ServiceError{
				StatusCode: http.StatusNotFound,
				Message:    fmt.Sprintf("Product %q not found.", item.Name),
			}
		}

		var available int
		if item.Size != "" {
			stock, found := product.SizeStock(item.Size)
			if !found {
				return &ServiceError{
					StatusCode: http.StatusNotFound,
					Message:    fmt.Sprintf("Size %q for %q not found.", item.Size, item.Name),
				}
			}
			available = stock
		} else if product.Stock != nil {
			available = *product.Stock
		}

		if item.Quantity > available {
			sizeText := ""
			if item.Size != "" {
				sizeText = fmt.Sprintf(" (Size: %s)", item.Size)
			}
			return &ServiceError{
				StatusCode: http.StatusBadRequest,
				Message:    fmt.Sprintf("Sorry, we only have %d of %q%s left.", available, item.Name, sizeText),
			}
		}
	}

	return nil
}

// Discount returns the sitewide discount percentage. The value comes from
// the content store (cached briefly), never from the client. Lookup failures
// fall back to no discount rather than blocking checkout.
func (s *CheckoutService) Discount(ctx context.Context) float64 {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx); err == nil && cached != nil {
			return cached.DiscountPercentage
		}
	}

	settings, err := s.content.GetSiteSettings(ctx)
	if err != nil {
		s.logger.Warn("Failed to fetch site settings, applying no discount", zap.Error(err))
		return 0
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, settings); err != nil {
			s.logger.Warn("Failed to cache site settings", zap.Error(err))
		}
	}
	return settings.DiscountPercentage
}

// CreateStripeSession validates stock and opens a card checkout session,
// returning the provider's opaque session id.
func (s *CheckoutService) CreateStripeSession(ctx context.Context, items []models.CartItem, customerEmail, origin string) (string, *ServiceError) {
	if serviceErr := s.ValidateStock(ctx, items); serviceErr != nil {
		return "", serviceErr
	}

	discount := s.Discount(ctx)

	sessionID, err := s.stripe.CreateCheckoutSession(items, discount, customerEmail, origin)
	if err != nil {
		s.logger.Error("Failed to create Stripe checkout session", zap.Error(err))
		return "", &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Error creating checkout session."}
	}
	return sessionID, nil
}

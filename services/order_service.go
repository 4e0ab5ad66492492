package services

import (
	"context"
	"net/http"
	"time"

	"github.com/TechbroSam/jogiloran/email"
	"github.com/TechbroSam/jogiloran/models"
	"github.com/TechbroSam/jogiloran/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// InventoryDecrementer applies post-payment stock decrements on the content
// store.
type InventoryDecrementer interface {
	DecrementStock(ctx context.Context, items []models.OrderProduct) error
}

// ConfirmedPayment is the provider-verified outcome handed to ConfirmPayment.
// Callers must only build one after the provider has proven the capture: a
// signature-verified webhook event or a successful capture response. Amount
// and shipping address come from the provider, never from the client.
type ConfirmedPayment struct {
	Provider        string // "stripe" or "paypal"
	SessionID       string // provider session/order id; the idempotency key
	CustomerEmail   string
	AmountTotal     float64
	Currency        string
	Items           []models.OrderProduct
	ShippingAddress models.ShippingAddress
}

// OrderService owns the post-payment sequence (persist, decrement, notify)
// and fulfillment. Both payment providers funnel through the same
// ConfirmPayment routine.
type OrderService struct {
	orders    repository.OrderRepository
	idem      repository.IdempotencyStore
	inventory InventoryDecrementer
	sender    email.EmailSender
	logger    *zap.Logger
}

func NewOrderService(
	orders repository.OrderRepository,
	idem repository.IdempotencyStore,
	inventory InventoryDecrementer,
	sender email.EmailSender,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		idem:      idem,
		inventory: inventory,
		sender:    sender,
		logger:    logger,
	}
}

// ConfirmPayment runs the post-payment sequence for a verified payment:
//
//  1. claim the provider session id, so a redelivered webhook or repeated
//     capture call cannot create a second order
//  2. persist the order with the provider-confirmed amount and address;
//     failure here is fatal to the request
//  3. decrement inventory, best-effort
//  4. send the confirmation email, best-effort
//
// Once the order is persisted the customer never sees a failure: stock and
// email problems are internal reconciliation work, not checkout errors.
func (s *OrderService) ConfirmPayment(ctx context.Context, payment ConfirmedPayment) (*models.Order, *ServiceError) {
	if payment.SessionID == "" || payment.CustomerEmail == "" {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "Missing payment session details."}
	}

	claimed, err := s.idem.ClaimConfirmation(ctx, payment.Provider, payment.SessionID)
	if err != nil {
		// The unique index on provider_session_id still guards duplicates.
		s.logger.Warn("Idempotency claim failed, relying on unique index",
			zap.String("provider", payment.Provider),
			zap.String("session_id", payment.SessionID),
			zap.Error(err),
		)
		claimed = true
	}
	if !claimed {
		s.logger.Info("Duplicate payment confirmation, skipping",
			zap.String("provider", payment.Provider),
			zap.String("session_id", payment.SessionID),
		)
		existing, err := s.orders.FindByProviderSessionID(ctx, payment.Provider, payment.SessionID)
		if err != nil {
			// Claimed but not yet visible; treat as processed.
			return nil, nil
		}
		return existing, nil
	}

	order := &models.Order{
		UserEmail:         payment.CustomerEmail,
		Products:          payment.Items,
		TotalAmount:       payment.AmountTotal,
		Currency:          payment.Currency,
		ShippingAddress:   payment.ShippingAddress,
		Provider:          payment.Provider,
		ProviderSessionID: payment.SessionID,
		IsPaid:            true,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			existing, findErr := s.orders.FindByProviderSessionID(ctx, payment.Provider, payment.SessionID)
			if findErr == nil {
				return existing, nil
			}
			return nil, nil
		}

		// Let the next delivery retry the whole sequence.
		if relErr := s.idem.ReleaseConfirmation(ctx, payment.Provider, payment.SessionID); relErr != nil {
			s.logger.Warn("Failed to release idempotency claim", zap.Error(relErr))
		}
		s.logger.Error("Failed to persist order",
			zap.String("provider", payment.Provider),
			zap.String("session_id", payment.SessionID),
			zap.Error(err),
		)
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to save order."}
	}

	if err := s.inventory.DecrementStock(ctx, order.Products); err != nil {
		s.logger.Error("Failed to decrement stock for order",
			zap.String("order_id", order.ID.Hex()),
			zap.String("provider", payment.Provider),
			zap.Error(err),
		)
	}

	s.sendConfirmationEmail(ctx, order)

	return order, nil
}

func (s *OrderService) sendConfirmationEmail(ctx context.Context, order *models.Order) {
	subject, body, err := email.RenderOrderConfirmation(order)
	if err != nil {
		s.logger.Error("Failed to render confirmation email", zap.String("order_id", order.ID.Hex()), zap.Error(err))
		return
	}
	if _, err := s.sender.SendEmail(ctx, order.UserEmail, subject, body); err != nil {
		s.logger.Error("Failed to send confirmation email",
			zap.String("order_id", order.ID.Hex()),
			zap.String("to", order.UserEmail),
			zap.Error(err),
		)
	}
}

// GetUserOrders returns the purchaser's orders, newest first.
func (s *OrderService) GetUserOrders(ctx context.Context, userEmail string) ([]models.Order, *ServiceError) {
	orders, err := s.orders.FindByUserEmail(ctx, userEmail)
	if err != nil {
		s.logger.Error("Failed to fetch user orders", zap.String("email", userEmail), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch orders."}
	}
	return orders, nil
}

// GetAllOrders returns every order for the admin dashboard.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.Order, *ServiceError) {
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch all orders", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch orders."}
	}
	return orders, nil
}

// ShipOrder marks an order shipped and notifies the purchaser. Re-invoking
// on an already-shipped order is an explicit no-op that returns the current
// state without re-sending the notification.
func (s *OrderService) ShipOrder(ctx context.Context, orderID string) (*models.Order, *ServiceError) {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "Invalid order ID."}
	}

	order, transitioned, err := s.orders.MarkShipped(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Order not found."}
		}
		s.logger.Error("Failed to mark order shipped", zap.String("order_id", orderID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update order status."}
	}

	if transitioned {
		s.sendShippedEmail(ctx, order)
	}

	return order, nil
}

func (s *OrderService) sendShippedEmail(ctx context.Context, order *models.Order) {
	subject, body, err := email.RenderShipped(order, time.Now().Format("02/01/2006"))
	if err != nil {
		s.logger.Error("Failed to render shipped email", zap.String("order_id", order.ID.Hex()), zap.Error(err))
		return
	}
	if _, err := s.sender.SendEmail(ctx, order.UserEmail, subject, body); err != nil {
		s.logger.Error("Failed to send shipped email",
			zap.String("order_id", order.ID.Hex()),
			zap.String("to", order.UserEmail),
			zap.Error(err),
		)
	}
}

package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TechbroSam/jogiloran/middleware"
	"github.com/TechbroSam/jogiloran/models"
	"github.com/TechbroSam/jogiloran/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubOrderManager struct {
	userOrders []models.Order
	allOrders  []models.Order
	shipped    *models.Order
	shipErr    *services.ServiceError
	shippedIDs []string
	lastEmail  string
}

func (s *stubOrderManager) GetUserOrders(ctx context.Context, userEmail string) ([]models.Order, *services.ServiceError) {
	s.lastEmail = userEmail
	return s.userOrders, nil
}

func (s *stubOrderManager) GetAllOrders(ctx context.Context) ([]models.Order, *services.ServiceError) {
	return s.allOrders, nil
}

func (s *stubOrderManager) ShipOrder(ctx context.Context, orderID string) (*models.Order, *services.ServiceError) {
	if s.shipErr != nil {
		return nil, s.shipErr
	}
	s.shippedIDs = append(s.shippedIDs, orderID)
	return s.shipped, nil
}

func newOrderRouter(manager *stubOrderManager, tokens *services.TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	oc := NewOrderController(manager)

	authed := r.Group("/api", middleware.RequireAuth(tokens))
	authed.GET("/orders", oc.GetMyOrders)

	admin := r.Group("/api/admin", middleware.RequireAuth(tokens), middleware.RequireAdmin())
	admin.GET("/orders", oc.GetAllOrders)
	admin.POST("/orders/:id/ship", oc.ShipOrder)

	return r
}

func bearerToken(t *testing.T, tokens *services.TokenService, email, role string) string {
	t.Helper()
	token, err := tokens.GenerateToken(primitive.NewObjectID().Hex(), email, role)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestGetMyOrders_RequiresAuth(t *testing.T) {
	tokens := services.NewTokenService("test-secret")
	r := newOrderRouter(&stubOrderManager{}, tokens)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetMyOrders_UsesTokenEmail(t *testing.T) {
	tokens := services.NewTokenService("test-secret")
	manager := &stubOrderManager{userOrders: []models.Order{{UserEmail: "jo@example.com"}}}
	r := newOrderRouter(manager, tokens)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", bearerToken(t, tokens, "jo@example.com", services.RoleCustomer))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jo@example.com", manager.lastEmail)
	assert.Contains(t, w.Body.String(), "jo@example.com")
}

func TestAdminOrders_CustomerForbidden(t *testing.T) {
	tokens := services.NewTokenService("test-secret")
	r := newOrderRouter(&stubOrderManager{}, tokens)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	req.Header.Set("Authorization", bearerToken(t, tokens, "jo@example.com", services.RoleCustomer))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminOrders_ForgedTokenRejected(t *testing.T) {
	tokens := services.NewTokenService("test-secret")
	forger := services.NewTokenService("other-secret")
	r := newOrderRouter(&stubOrderManager{}, tokens)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	req.Header.Set("Authorization", bearerToken(t, forger, "admin@example.com", services.RoleAdmin))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestShipOrder_AdminHappyPath(t *testing.T) {
	tokens := services.NewTokenService("test-secret")
	shipped := &models.Order{ID: primitive.NewObjectID(), IsShipped: true}
	manager := &stubOrderManager{shipped: shipped}
	r := newOrderRouter(manager, tokens)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/orders/"+shipped.ID.Hex()+"/ship", nil)
	req.Header.Set("Authorization", bearerToken(t, tokens, "admin@example.com", services.RoleAdmin))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, manager.shippedIDs, 1)
	assert.Equal(t, shipped.ID.Hex(), manager.shippedIDs[0])
	assert.Contains(t, w.Body.String(), `"isShipped":true`)
}

func TestShipOrder_NotFoundPassthrough(t *testing.T) {
	tokens := services.NewTokenService("test-secret")
	manager := &stubOrderManager{
		shipErr: &services.ServiceError{StatusCode: http.StatusNotFound, Message: "Order not found."},
	}
	r := newOrderRouter(manager, tokens)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/orders/656e6f7567682062797465/ship", nil)
	req.Header.Set("Authorization", bearerToken(t, tokens, "admin@example.com", services.RoleAdmin))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Order not found.")
}

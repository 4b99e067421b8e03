package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderkaro/orderkaro/db"
	"github.com/orderkaro/orderkaro/internal/domain/address"
	"github.com/orderkaro/orderkaro/internal/domain/auth"
	"github.com/orderkaro/orderkaro/internal/domain/cart"
	"github.com/orderkaro/orderkaro/internal/domain/order"
	"github.com/orderkaro/orderkaro/internal/domain/payment"
	"github.com/orderkaro/orderkaro/internal/domain/user"
	"github.com/orderkaro/orderkaro/internal/memstore"
)

const paymentSecret = "test-payment-secret"

// --- Helpers ---

type testServer struct {
	engine  *gin.Engine
	catalog *memstore.CatalogStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	products, categories, err := db.SeedCatalog()
	require.NoError(t, err)

	catalogStore := memstore.NewCatalogStore()
	catalogStore.Seed(products, categories)

	h := NewHandler(
		Config{Version: "1.0.0", PaymentTimeout: time.Second},
		catalogStore,
		cart.NewService(memstore.NewCartStore(), catalogStore),
		address.NewService(memstore.NewAddressStore()),
		order.NewService(catalogStore, memstore.NewOrderStore()),
		user.NewService(memstore.NewUserStore()),
		auth.NewJWT("test-secret", time.Hour),
		payment.NewStubProvider(paymentSecret),
	)

	engine := gin.New()
	h.RegisterRoutes(engine)
	return &testServer{engine: engine, catalog: catalogStore}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), "body: %s", rec.Body.String())
}

func registerUser(t *testing.T, s *testServer, email string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Test User",
		"email":    email,
		"phone":    "9876543210",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	decode(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// --- Tests ---

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	decode(t, rec, &resp)
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "1.0.0", resp["version"])
	assert.NotEmpty(t, resp["timestamp"])
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/nope", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	var resp map[string]string
	decode(t, rec, &resp)
	assert.Equal(t, "error", resp["status"])
	assert.Equal(t, "Route not found", resp["message"])
}

func TestListProducts(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var products []productView
	decode(t, rec, &products)
	require.Len(t, products, 6)
	assert.Equal(t, "Fresh Organic Apples", products[0].Name)
	require.NotNil(t, products[0].SalePrice)
	assert.Equal(t, 99.0, *products[0].SalePrice)
}

func TestListProducts_SortedByPrice(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/products?sort=price_asc", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var products []productView
	decode(t, rec, &products)
	require.Len(t, products, 6)
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"4", "2", "6", "3", "5", "1"}, ids, "effective price drives the order")
}

func TestListProducts_ByCategory(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/products?category=1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var products []productView
	decode(t, rec, &products)
	require.Len(t, products, 3)
	for _, p := range products {
		assert.Equal(t, "1", p.CategoryID)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/products/999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFeaturedProducts(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/products/featured", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var products []productView
	decode(t, rec, &products)
	require.Len(t, products, 3)
	for _, p := range products {
		assert.NotNil(t, p.SalePrice, "featured rail carries the sale items")
	}
}

func TestCategories(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var categories []categoryView
	decode(t, rec, &categories)
	require.Len(t, categories, 6)
	assert.Equal(t, "Fruits & Vegetables", categories[0].Name)

	rec = s.do(t, http.MethodGet, "/api/categories/999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearch(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/search?query=milk", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var products []productView
	decode(t, rec, &products)
	require.Len(t, products, 1)
	assert.Equal(t, "Farm Fresh Milk", products[0].Name)

	rec = s.do(t, http.MethodGet, "/api/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/cart", "/api/orders", "/api/addresses", "/api/users/profile"} {
		rec := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := s.do(t, http.MethodGet, "/api/cart", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	token := registerUser(t, s, "test@example.com")

	rec := s.do(t, http.MethodGet, "/api/auth/status", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status struct {
		User userView `json:"user"`
	}
	decode(t, rec, &status)
	assert.Equal(t, "test@example.com", status.User.Email)

	rec = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "test@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "test@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Other",
		"email":    "test@example.com",
		"password": "otherpass",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "duplicate email must be rejected")
}

func TestCartFlow(t *testing.T) {
	s := newTestServer(t)
	token := registerUser(t, s, "cart@example.com")

	rec := s.do(t, http.MethodGet, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view cartView
	decode(t, rec, &view)
	assert.Empty(t, view.Items)

	rec = s.do(t, http.MethodPost, "/api/cart", token, gin.H{"product_id": "1", "quantity": 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decode(t, rec, &view)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.TotalItems)
	assert.Equal(t, 198.0, view.TotalAmount, "sale price drives the total")

	// Same product accumulates into the existing line.
	rec = s.do(t, http.MethodPost, "/api/cart", token, gin.H{"product_id": "1", "quantity": 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	decode(t, rec, &view)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)

	itemID := view.Items[0].ID
	rec = s.do(t, http.MethodPut, "/api/cart/"+itemID, token, gin.H{"quantity": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &view)
	assert.Equal(t, 99.0, view.TotalAmount)

	rec = s.do(t, http.MethodDelete, "/api/cart/"+itemID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &view)
	assert.Empty(t, view.Items)

	rec = s.do(t, http.MethodPost, "/api/cart", token, gin.H{"product_id": "1", "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/cart", token, gin.H{"product_id": "999", "quantity": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/cart", token, gin.H{"product_id": "5", "quantity": 500})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "stock limits cart additions")
}

func TestAddressFlow(t *testing.T) {
	s := newTestServer(t)
	token := registerUser(t, s, "addr@example.com")

	rec := s.do(t, http.MethodPost, "/api/addresses", token, gin.H{
		"name":          "Home",
		"full_name":     "Test User",
		"phone":         "9876543210",
		"address_line1": "123 Main Street",
		"city":          "Bengaluru",
		"state":         "Karnataka",
		"postal_code":   "560001",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var first address.Address
	decode(t, rec, &first)
	assert.True(t, first.IsDefault, "the first address becomes the default")
	assert.Equal(t, "India", first.Country)

	rec = s.do(t, http.MethodPost, "/api/addresses", token, gin.H{
		"name":          "Office",
		"full_name":     "Test User",
		"phone":         "9876543210",
		"address_line1": "456 Work Road",
		"city":          "Bengaluru",
		"state":         "Karnataka",
		"postal_code":   "560002",
		"is_default":    true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var second address.Address
	decode(t, rec, &second)
	assert.True(t, second.IsDefault)

	rec = s.do(t, http.MethodGet, "/api/addresses", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var book []address.Address
	decode(t, rec, &book)
	require.Len(t, book, 2)
	assert.False(t, book[0].IsDefault, "an explicit default demotes the previous one")
	assert.True(t, book[1].IsDefault)

	rec = s.do(t, http.MethodDelete, "/api/addresses/"+second.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/addresses", token, nil)
	decode(t, rec, &book)
	require.Len(t, book, 1)
	assert.True(t, book[0].IsDefault, "deleting the default promotes another address")

	rec = s.do(t, http.MethodPost, "/api/addresses", token, gin.H{"name": "Broken"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/addresses/missing", token, gin.H{"city": "Pune"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func orderPayload(productID string, qty int) gin.H {
	return gin.H{
		"items": []gin.H{{"product_id": productID, "quantity": qty}},
		"shipping_address": gin.H{
			"id":            "a1",
			"name":          "Home",
			"full_name":     "Test User",
			"phone":         "9876543210",
			"address_line1": "123 Main Street",
			"city":          "Bengaluru",
			"state":         "Karnataka",
			"postal_code":   "560001",
			"country":       "India",
		},
		"payment_method": "card",
	}
}

func TestOrderFlow(t *testing.T) {
	s := newTestServer(t)
	token := registerUser(t, s, "order@example.com")

	rec := s.do(t, http.MethodPost, "/api/orders", token, orderPayload("1", 2))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var placed orderView
	decode(t, rec, &placed)
	assert.Equal(t, "pending", placed.Status)
	assert.Equal(t, 198.0, placed.TotalAmount)
	require.Len(t, placed.Items, 1)
	assert.Equal(t, 99.0, placed.Items[0].Price)

	// Placement reserves stock.
	rec = s.do(t, http.MethodGet, "/api/products/1", "", nil)
	var p productView
	decode(t, rec, &p)
	assert.Equal(t, 48, p.Stock)

	rec = s.do(t, http.MethodGet, "/api/orders/"+placed.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPut, fmt.Sprintf("/api/orders/%s/cancel", placed.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cancelled orderView
	decode(t, rec, &cancelled)
	assert.Equal(t, "cancelled", cancelled.Status)

	rec = s.do(t, http.MethodPut, fmt.Sprintf("/api/orders/%s/cancel", placed.ID), token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "a cancelled order cannot be cancelled again")

	rec = s.do(t, http.MethodPost, "/api/orders", token, gin.H{"payment_method": "card"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/orders", token, orderPayload("5", 500))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "oversell is rejected at placement")
}

func TestOrder_ForeignOrdersAreInvisible(t *testing.T) {
	s := newTestServer(t)
	owner := registerUser(t, s, "owner@example.com")
	other := registerUser(t, s, "other@example.com")

	rec := s.do(t, http.MethodPost, "/api/orders", owner, orderPayload("1", 1))
	require.Equal(t, http.StatusCreated, rec.Code)
	var placed orderView
	decode(t, rec, &placed)

	rec = s.do(t, http.MethodGet, "/api/orders/"+placed.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPut, fmt.Sprintf("/api/orders/%s/cancel", placed.ID), other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/orders", other, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []orderView
	decode(t, rec, &orders)
	assert.Empty(t, orders)
}

func TestPaymentFlow(t *testing.T) {
	s := newTestServer(t)
	token := registerUser(t, s, "pay@example.com")

	rec := s.do(t, http.MethodPost, "/api/payments/create-order", token, gin.H{"amount": 198})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var intent payment.Intent
	decode(t, rec, &intent)
	assert.Equal(t, int64(19800), intent.Amount)
	assert.Equal(t, "INR", intent.Currency)
	assert.Equal(t, "created", intent.Status)

	rec = s.do(t, http.MethodPost, "/api/payments/verify", token, gin.H{
		"razorpay_order_id":   intent.ID,
		"razorpay_payment_id": "pay_123",
		"razorpay_signature":  payment.Sign(paymentSecret, intent.ID, "pay_123"),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var verified struct {
		Success bool `json:"success"`
	}
	decode(t, rec, &verified)
	assert.True(t, verified.Success)

	rec = s.do(t, http.MethodPost, "/api/payments/verify", token, gin.H{
		"razorpay_order_id":   intent.ID,
		"razorpay_payment_id": "pay_123",
		"razorpay_signature":  "bad-signature",
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/payments/verify", token, gin.H{
		"razorpay_order_id": intent.ID,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/payments/create-order", token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfileFlow(t *testing.T) {
	s := newTestServer(t)
	token := registerUser(t, s, "profile@example.com")

	rec := s.do(t, http.MethodGet, "/api/users/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile userView
	decode(t, rec, &profile)
	assert.Equal(t, "Test User", profile.Name)
	assert.Equal(t, "profile@example.com", profile.Email)

	rec = s.do(t, http.MethodPut, "/api/users/profile", token, gin.H{"name": "Renamed"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &profile)
	assert.Equal(t, "Renamed", profile.Name)

	rec = s.do(t, http.MethodPut, "/api/users/profile", token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

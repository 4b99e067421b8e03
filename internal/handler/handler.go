// Package handler exposes the REST API, delegating business logic to the
// domain services and mapping domain results to wire responses.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/orderkaro/orderkaro/internal/domain/address"
	"github.com/orderkaro/orderkaro/internal/domain/auth"
	"github.com/orderkaro/orderkaro/internal/domain/cart"
	"github.com/orderkaro/orderkaro/internal/domain/catalog"
	"github.com/orderkaro/orderkaro/internal/domain/order"
	"github.com/orderkaro/orderkaro/internal/domain/payment"
	"github.com/orderkaro/orderkaro/internal/domain/user"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// Version is reported by the health endpoint.
	Version string
	// PaymentTimeout bounds provider verification calls.
	PaymentTimeout time.Duration
}

// Handler wires domain services to the HTTP surface.
type Handler struct {
	catalog   catalog.Repository
	carts     *cart.Service
	addresses *address.Service
	orders    *order.Service
	users     *user.Service
	tokens    *auth.JWT
	payments  payment.Provider

	version        string
	paymentTimeout time.Duration
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg Config,
	catalogRepo catalog.Repository,
	carts *cart.Service,
	addresses *address.Service,
	orders *order.Service,
	users *user.Service,
	tokens *auth.JWT,
	payments payment.Provider,
) *Handler {
	return &Handler{
		catalog:        catalogRepo,
		carts:          carts,
		addresses:      addresses,
		orders:         orders,
		users:          users,
		tokens:         tokens,
		payments:       payments,
		version:        cfg.Version,
		paymentTimeout: cfg.PaymentTimeout,
	}
}

// RegisterRoutes mounts the API on the engine. Cart, order, address, payment
// and profile routes require a valid bearer token.
func (h *Handler) RegisterRoutes(e *gin.Engine) {
	e.NoRoute(func(c *gin.Context) {
		writeMessage(c, http.StatusNotFound, "Route not found")
	})

	api := e.Group("/api")

	api.GET("/health", h.Health)

	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/logout", h.Logout)
	api.GET("/auth/status", h.AuthStatus)

	api.GET("/products", h.ListProducts)
	api.GET("/products/featured", h.ListFeaturedProducts)
	api.GET("/products/:id", h.GetProduct)
	api.GET("/categories", h.ListCategories)
	api.GET("/categories/:id", h.GetCategory)
	api.GET("/search", h.Search)

	authed := api.Group("", h.requireAuth)
	authed.GET("/cart", h.GetCart)
	authed.POST("/cart", h.AddCartItem)
	authed.PUT("/cart/:id", h.UpdateCartItem)
	authed.DELETE("/cart/:id", h.RemoveCartItem)
	authed.DELETE("/cart", h.ClearCart)

	authed.GET("/addresses", h.ListAddresses)
	authed.POST("/addresses", h.AddAddress)
	authed.PUT("/addresses/:id", h.UpdateAddress)
	authed.DELETE("/addresses/:id", h.DeleteAddress)

	authed.GET("/orders", h.ListOrders)
	authed.POST("/orders", h.CreateOrder)
	authed.GET("/orders/:id", h.GetOrder)
	authed.PUT("/orders/:id/cancel", h.CancelOrder)

	authed.POST("/payments/create-order", h.CreatePaymentIntent)
	authed.POST("/payments/verify", h.VerifyPayment)

	authed.GET("/users/profile", h.GetProfile)
	authed.PUT("/users/profile", h.UpdateProfile)
}

// Health reports service liveness with a version and timestamp.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "OrderKaro API is up and running!",
		"version":   h.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

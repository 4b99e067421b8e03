package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/orderkaro/orderkaro/internal/domain/address"
	"github.com/orderkaro/orderkaro/internal/domain/auth"
	"github.com/orderkaro/orderkaro/internal/domain/cart"
	"github.com/orderkaro/orderkaro/internal/domain/catalog"
	"github.com/orderkaro/orderkaro/internal/domain/order"
	"github.com/orderkaro/orderkaro/internal/domain/payment"
	"github.com/orderkaro/orderkaro/internal/domain/user"
)

// writeMessage emits the error envelope every endpoint shares.
func writeMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"status":  "error",
		"message": message,
	})
}

// writeError maps a domain error to its HTTP status and envelope. Unknown
// errors are logged and masked as a plain 500.
func writeError(c *gin.Context, err error) {
	var (
		outOfStock     *catalog.OutOfStockError
		badQuantity    *order.InvalidQuantityError
		missingProduct *order.ProductNotFoundError
		badTransition  *order.InvalidTransitionError
	)
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		writeMessage(c, http.StatusUnauthorized, "Not authenticated")
	case errors.Is(err, user.ErrInvalidCredentials):
		writeMessage(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, catalog.ErrNotFound):
		writeMessage(c, http.StatusNotFound, "Product not found")
	case errors.Is(err, catalog.ErrCategoryNotFound):
		writeMessage(c, http.StatusNotFound, "Category not found")
	case errors.Is(err, cart.ErrItemNotFound):
		writeMessage(c, http.StatusNotFound, "Cart item not found")
	case errors.Is(err, address.ErrNotFound):
		writeMessage(c, http.StatusNotFound, "Address not found")
	case errors.Is(err, order.ErrNotFound):
		writeMessage(c, http.StatusNotFound, "Order not found")
	case errors.Is(err, user.ErrNotFound):
		writeMessage(c, http.StatusNotFound, "User not found")
	case errors.As(err, &outOfStock),
		errors.As(err, &badQuantity),
		errors.As(err, &missingProduct),
		errors.Is(err, cart.ErrInvalidQuantity):
		writeMessage(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &badTransition):
		writeMessage(c, http.StatusBadRequest, "Order cannot be cancelled")
	case errors.Is(err, order.ErrMissingFields),
		errors.Is(err, address.ErrMissingFields),
		errors.Is(err, user.ErrMissingFields),
		errors.Is(err, payment.ErrInvalidAmount):
		writeMessage(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, user.ErrExists):
		writeMessage(c, http.StatusBadRequest, "User with this email already exists")
	case errors.Is(err, payment.ErrVerificationFailed):
		writeMessage(c, http.StatusBadGateway, "Payment verification failed")
	default:
		zctx.From(c.Request.Context()).Error("Request failed", zap.Error(err))
		writeMessage(c, http.StatusInternalServerError, "Internal Server Error")
	}
}

// bindJSON decodes the request body, answering 400 on malformed input.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeMessage(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

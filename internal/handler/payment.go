package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/orderkaro/orderkaro/internal/domain/payment"
)

type createIntentRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Receipt  string          `json:"receipt"`
}

// CreatePaymentIntent opens a provider-side order for the given amount.
func (h *Handler) CreatePaymentIntent(c *gin.Context) {
	var req createIntentRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Amount.IsZero() {
		writeMessage(c, http.StatusBadRequest, "Amount is required")
		return
	}
	intent, err := h.payments.CreateIntent(c.Request.Context(), payment.CreateIntentRequest{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, intent)
}

// VerifyPayment checks the signature the client echoes back after paying.
// Verification is bounded so a stalled provider fails the request instead
// of hanging it.
func (h *Handler) VerifyPayment(c *gin.Context) {
	var req payment.VerifyRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		writeMessage(c, http.StatusBadRequest, "Payment verification requires all provider parameters")
		return
	}
	if err := payment.VerifyWithTimeout(c.Request.Context(), h.payments, req, h.paymentTimeout); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Payment verified successfully",
	})
}

// Package payment models gateway-style payment intents and signature
// verification for checkout.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrVerificationFailed is returned when a payment signature does not
	// check out or the provider could not confirm in time.
	ErrVerificationFailed = errors.New("payment verification failed")
	// ErrInvalidAmount is returned for zero or negative intent amounts.
	ErrInvalidAmount = errors.New("invalid payment amount")
)

// DefaultCurrency is used when an intent request names no currency.
const DefaultCurrency = "INR"

// Intent is the provider-side order created before the client pays.
// Amounts are in the currency's smallest unit.
type Intent struct {
	ID         string `json:"id"`
	Entity     string `json:"entity"`
	Amount     int64  `json:"amount"`
	AmountPaid int64  `json:"amount_paid"`
	AmountDue  int64  `json:"amount_due"`
	Currency   string `json:"currency"`
	Receipt    string `json:"receipt"`
	Status     string `json:"status"`
	CreatedAt  int64  `json:"created_at"`
}

// CreateIntentRequest carries the checkout amount in major units.
type CreateIntentRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Receipt  string          `json:"receipt"`
}

// VerifyRequest carries the fields the client echoes back after paying.
type VerifyRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// Provider creates intents and verifies completed payments.
type Provider interface {
	CreateIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error)
	Verify(ctx context.Context, req VerifyRequest) error
}

// Sign computes the hex HMAC-SHA256 over "orderID|paymentID", the scheme
// gateways use to let merchants verify callbacks offline.
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// StubProvider implements Provider locally with a shared secret. It
// mirrors the gateway wire shapes without talking to one.
type StubProvider struct {
	secret string
	now    func() time.Time
}

func NewStubProvider(secret string) *StubProvider {
	return &StubProvider{secret: secret, now: time.Now}
}

func (p *StubProvider) CreateIntent(_ context.Context, req CreateIntentRequest) (*Intent, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	currency := req.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	receipt := req.Receipt
	if receipt == "" {
		receipt = "receipt_" + uuid.NewString()
	}
	// Major units to the smallest unit, e.g. rupees to paise.
	minor := req.Amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	return &Intent{
		ID:        "order_" + uuid.NewString(),
		Entity:    "order",
		Amount:    minor,
		AmountDue: minor,
		Currency:  currency,
		Receipt:   receipt,
		Status:    "created",
		CreatedAt: p.now().Unix(),
	}, nil
}

func (p *StubProvider) Verify(ctx context.Context, req VerifyRequest) error {
	if err := ctx.Err(); err != nil {
		return ErrVerificationFailed
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return ErrVerificationFailed
	}
	want := Sign(p.secret, req.OrderID, req.PaymentID)
	if !hmac.Equal([]byte(want), []byte(req.Signature)) {
		return ErrVerificationFailed
	}
	return nil
}

// VerifyWithTimeout bounds a provider verification. A provider that does
// not answer within the timeout counts as failed verification.
func VerifyWithTimeout(ctx context.Context, p Provider, req VerifyRequest, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	err := p.Verify(ctx, req)
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrVerificationFailed
	}
	return err
}

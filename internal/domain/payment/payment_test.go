package payment

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type slowProvider struct{}

func (slowProvider) CreateIntent(_ context.Context, _ CreateIntentRequest) (*Intent, error) {
	return nil, nil
}

func (slowProvider) Verify(ctx context.Context, _ VerifyRequest) error {
	<-ctx.Done()
	return ctx.Err()
}

// --- Tests ---

func TestCreateIntent(t *testing.T) {
	p := NewStubProvider("test-secret")

	intent, err := p.CreateIntent(context.Background(), CreateIntentRequest{
		Amount:  decimal.NewFromInt(198),
		Receipt: "rcpt_1",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(intent.ID, "order_"))
	assert.Equal(t, "order", intent.Entity)
	assert.Equal(t, int64(19800), intent.Amount, "major units convert to the smallest unit")
	assert.Equal(t, int64(19800), intent.AmountDue)
	assert.Equal(t, int64(0), intent.AmountPaid)
	assert.Equal(t, "INR", intent.Currency)
	assert.Equal(t, "rcpt_1", intent.Receipt)
	assert.Equal(t, "created", intent.Status)
	assert.NotZero(t, intent.CreatedAt)
}

func TestCreateIntent_DefaultsReceipt(t *testing.T) {
	p := NewStubProvider("test-secret")

	intent, err := p.CreateIntent(context.Background(), CreateIntentRequest{Amount: decimal.NewFromInt(50)})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(intent.Receipt, "receipt_"))
}

func TestCreateIntent_InvalidAmount(t *testing.T) {
	p := NewStubProvider("test-secret")
	ctx := context.Background()

	_, err := p.CreateIntent(ctx, CreateIntentRequest{Amount: decimal.Zero})
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = p.CreateIntent(ctx, CreateIntentRequest{Amount: decimal.NewFromInt(-5)})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestVerify(t *testing.T) {
	p := NewStubProvider("test-secret")
	req := VerifyRequest{
		OrderID:   "order_abc",
		PaymentID: "pay_def",
		Signature: Sign("test-secret", "order_abc", "pay_def"),
	}
	require.NoError(t, p.Verify(context.Background(), req))
}

func TestVerify_BadSignature(t *testing.T) {
	p := NewStubProvider("test-secret")
	ctx := context.Background()

	err := p.Verify(ctx, VerifyRequest{
		OrderID:   "order_abc",
		PaymentID: "pay_def",
		Signature: Sign("other-secret", "order_abc", "pay_def"),
	})
	assert.ErrorIs(t, err, ErrVerificationFailed)

	err = p.Verify(ctx, VerifyRequest{OrderID: "order_abc", PaymentID: "pay_def"})
	assert.ErrorIs(t, err, ErrVerificationFailed)
}

func TestVerify_SignatureBoundToPayment(t *testing.T) {
	p := NewStubProvider("test-secret")

	err := p.Verify(context.Background(), VerifyRequest{
		OrderID:   "order_abc",
		PaymentID: "pay_other",
		Signature: Sign("test-secret", "order_abc", "pay_def"),
	})
	assert.ErrorIs(t, err, ErrVerificationFailed)
}

func TestVerifyWithTimeout(t *testing.T) {
	err := VerifyWithTimeout(context.Background(), slowProvider{}, VerifyRequest{}, 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrVerificationFailed)
}

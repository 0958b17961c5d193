package payment

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"mini-eats/internal/model"

	"github.com/rs/zerolog"
)

// ErrUnknownTransaction is returned when verifying a transaction the gateway never issued.
var ErrUnknownTransaction = errors.New("unknown transaction")

// Result describes the outcome of a payment call.
type Result struct {
	TransactionID string `json:"transactionId"`
	PaymentURL    string `json:"paymentUrl,omitempty"`
}

// Gateway initiates and verifies payments for orders.
type Gateway interface {
	InitiatePayment(ctx context.Context, order *model.Order) (Result, error)
	VerifyPayment(ctx context.Context, transactionID string) (Result, error)
}

// StubConfig configures the simulated gateway.
type StubConfig struct {
	// SuccessURL is the redirect target returned with each transaction.
	SuccessURL string

	// VerifyDelay simulates the round trip to a payment provider.
	VerifyDelay time.Duration
}

// StubGateway simulates a payment provider that always succeeds.
type StubGateway struct {
	config StubConfig
	logger zerolog.Logger
	now    func() time.Time

	mu     sync.RWMutex
	issued map[string]struct{}
}

// NewStubGateway creates a simulated payment gateway.
func NewStubGateway(config StubConfig, logger zerolog.Logger) *StubGateway {
	if config.SuccessURL == "" {
		config.SuccessURL = "/payment/success"
	}
	return &StubGateway{
		config: config,
		logger: logger.With().Str("component", "payment").Logger(),
		now:    time.Now,
		issued: make(map[string]struct{}),
	}
}

// InitiatePayment issues a transaction id for the order.
func (g *StubGateway) InitiatePayment(ctx context.Context, order *model.Order) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	txnID := fmt.Sprintf("txn_%d_%s", g.now().UnixMilli(), randomBase36(9))

	g.mu.Lock()
	g.issued[txnID] = struct{}{}
	g.mu.Unlock()

	g.logger.Info().
		Str("transaction_id", txnID).
		Str("order_number", order.OrderNumber).
		Str("payment_method", string(order.PaymentMethod)).
		Int64("amount", order.TotalAmount).
		Msg("payment initiated")

	return Result{
		TransactionID: txnID,
		PaymentURL:    g.config.SuccessURL + "?transactionId=" + txnID,
	}, nil
}

// VerifyPayment confirms a transaction this gateway issued, after the
// configured delay.
func (g *StubGateway) VerifyPayment(ctx context.Context, transactionID string) (Result, error) {
	g.mu.RLock()
	_, ok := g.issued[transactionID]
	g.mu.RUnlock()
	if !ok {
		return Result{}, ErrUnknownTransaction
	}

	if g.config.VerifyDelay > 0 {
		timer := time.NewTimer(g.config.VerifyDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-timer.C:
		}
	}

	return Result{TransactionID: transactionID}, nil
}

const base36Digits = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomBase36(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36Digits[rand.IntN(len(base36Digits))]
	}
	return string(b)
}

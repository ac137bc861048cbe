package broker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MockBroker accepts every order and records it in memory. Used by the
// webhook server when no real broker adapter is configured.
type MockBroker struct {
	mu     sync.RWMutex
	orders []OrderResult
	logger zerolog.Logger
}

// NewMockBroker creates a mock broker.
func NewMockBroker(logger zerolog.Logger) *MockBroker {
	return &MockBroker{
		logger: logger.With().Str("component", "mock_broker").Logger(),
	}
}

// Name implements Broker.
func (b *MockBroker) Name() string {
	return "mock"
}

// PlaceOrder implements Broker. Orders are always accepted.
func (b *MockBroker) PlaceOrder(ctx context.Context, req OrderRequest) (*OrderResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := OrderResult{
		Status:   "accepted",
		Broker:   b.Name(),
		OrderID:  uuid.NewString(),
		Received: req,
		PlacedAt: time.Now().UTC(),
	}

	b.mu.Lock()
	b.orders = append(b.orders, result)
	b.mu.Unlock()

	b.logger.Info().
		Str("order_id", result.OrderID).
		Str("symbol", req.Symbol).
		Str("side", req.Side).
		Float64("qty", req.Quantity).
		Msg("mock order accepted")

	return &result, nil
}

// Orders returns a copy of every order placed so far.
func (b *MockBroker) Orders() []OrderResult {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]OrderResult, len(b.orders))
	copy(out, b.orders)
	return out
}

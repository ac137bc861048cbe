package broker

import (
	"context"
	"time"
)

// OrderRequest is a signal payload forwarded from the webhook to a
// broker adapter.
type OrderRequest struct {
	Symbol   string  `json:"symbol"`
	Side     string  `json:"side"`
	Quantity float64 `json:"qty"`
	Price    float64 `json:"price,omitempty"`
	Stop     float64 `json:"stop,omitempty"`
	Comment  string  `json:"comment,omitempty"`
}

// OrderResult is the broker's response to a placed order.
type OrderResult struct {
	Status   string       `json:"status"`
	Broker   string       `json:"broker"`
	OrderID  string       `json:"order_id"`
	Received OrderRequest `json:"received"`
	PlacedAt time.Time    `json:"placed_at"`
}

// Broker adapts an execution venue. Implementations must be safe for
// concurrent use by the webhook handlers.
type Broker interface {
	Name() string
	PlaceOrder(ctx context.Context, req OrderRequest) (*OrderResult, error)
}

// File: internal/core/port/orders.go
package port

import (
	"context"

	"github.com/mygeone2/quotes-fake-api/internal/core/domain"
)

type OrderRepository interface {
	// Insert fails with an error wrapping domain.ErrOrderExists on a duplicate id
	Insert(ctx context.Context, o domain.Order) error

	Get(ctx context.Context, id string) (*domain.Order, error)
}

type OrderService interface {
	CreateOrder(ctx context.Context, orderID string, draft domain.OrderDraft) error
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
}

type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, o domain.Order) error
	Close() error
}

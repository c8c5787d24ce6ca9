// File: internal/core/service/orders/orders.go
package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mygeone2/quotes-fake-api/internal/core/domain"
	"github.com/mygeone2/quotes-fake-api/internal/core/port"
)

type OrderService struct {
	orders port.OrderRepository
	quotes port.QuoteRepository
	events port.OrderEventPublisher
	now    func() time.Time
}

// NewOrderService creates an order service. events may be nil.
func NewOrderService(orders port.OrderRepository, quotes port.QuoteRepository, events port.OrderEventPublisher) port.OrderService {
	return &OrderService{
		orders: orders,
		quotes: quotes,
		events: events,
		now:    time.Now,
	}
}

// CreateOrder validates the id and the body, checks that the referenced
// quote is persisted, then stores the order. The gates run in that order and
// none touches the store before the previous ones pass.
func (s *OrderService) CreateOrder(ctx context.Context, orderID string, draft domain.OrderDraft) error {
	if err := domain.ValidateOrderID(orderID); err != nil {
		return err
	}
	if err := draft.Validate(); err != nil {
		return err
	}

	exists, err := s.quotes.Exists(ctx, draft.QuoteID)
	if err != nil {
		return fmt.Errorf("failed to look up quote %s: %w", draft.QuoteID, err)
	}
	if !exists {
		return domain.ErrQuoteNotFound
	}

	order := domain.Order{
		ID:        orderID,
		Amount:    *draft.Amount,
		Currency:  draft.Currency,
		QuoteID:   draft.QuoteID,
		Side:      draft.Side,
		Valuta:    draft.Valuta,
		CreatedAt: s.now().UTC().Format(domain.TimestampLayout),
	}
	if err := s.orders.Insert(ctx, order); err != nil {
		if errors.Is(err, domain.ErrOrderExists) {
			slog.Warn("Duplicate order submission", "order_id", orderID)
		}
		return err
	}

	slog.Info("Order created", "order_id", orderID, "quote_id", draft.QuoteID.String(), "side", draft.Side)

	if s.events != nil {
		if err := s.events.PublishOrderCreated(ctx, order); err != nil {
			slog.Warn("Failed to publish order event", "order_id", orderID, "error", err)
		}
	}
	return nil
}

// GetOrder returns a persisted order by id.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	if err := domain.ValidateOrderID(orderID); err != nil {
		return nil, err
	}
	return s.orders.Get(ctx, orderID)
}

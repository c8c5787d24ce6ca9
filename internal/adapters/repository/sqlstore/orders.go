package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mygeone2/quotes-fake-api/internal/core/domain"
)

// OrderStore implements port.OrderRepository.
type OrderStore struct {
	store *Store
}

// Insert stores a new order. The primary key is the only duplicate guard.
func (o *OrderStore) Insert(ctx context.Context, order domain.Order) error {
	quoteID, ok := o.store.dialect.quoteIDArg(order.QuoteID)
	if !ok {
		return fmt.Errorf("quote id %q cannot be stored by %s", order.QuoteID, o.store.dialect.name)
	}

	_, err := o.store.db.ExecContext(ctx,
		o.store.dialect.rebind("INSERT INTO orders (id, amount, currency, quoteId, side, valuta, createdAt) VALUES (?, ?, ?, ?, ?, ?, ?)"),
		order.ID,
		order.Amount,
		order.Currency,
		quoteID,
		order.Side,
		sql.NullInt64{Int64: order.Valuta.Int64, Valid: order.Valuta.Valid},
		order.CreatedAt,
	)
	if err != nil {
		if o.store.dialect.isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrOrderExists, err)
		}
		return err
	}
	return nil
}

func (o *OrderStore) Get(ctx context.Context, id string) (*domain.Order, error) {
	var (
		order     domain.Order
		amount    decimal.NullDecimal
		currency  sql.NullString
		quoteID   sql.NullString
		side      sql.NullString
		valuta    sql.NullInt64
		createdAt sql.NullString
	)
	err := o.store.db.QueryRowContext(ctx,
		o.store.dialect.rebind("SELECT id, amount, currency, quoteId, side, valuta, createdAt FROM orders WHERE id = ?"),
		id,
	).Scan(&order.ID, &amount, &currency, &quoteID, &side, &valuta, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	order.Amount = amount.Decimal
	order.Currency = currency.String
	if quoteID.Valid {
		order.QuoteID = domain.ParseQuoteRef(quoteID.String)
	}
	order.Side = side.String
	order.Valuta = domain.OptionalInt64{Int64: valuta.Int64, Valid: valuta.Valid, Present: true}
	order.CreatedAt = createdAt.String
	return &order, nil
}

package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mygeone2/quotes-fake-api/internal/core/domain"
)

const quoteColumns = "id, symbol, offer, bid, last, timestamp, lowPrice, highPrice, openPrice, closePrice"

// QuoteStore implements port.QuoteRepository.
type QuoteStore struct {
	store *Store
}

// Latest returns the quote with the greatest timestamp.
func (q *QuoteStore) Latest(ctx context.Context) (*domain.Quote, error) {
	row := q.store.db.QueryRowContext(ctx,
		"SELECT "+quoteColumns+" FROM quotes ORDER BY timestamp DESC LIMIT 1",
	)
	quote, err := scanQuote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNoQuotes
	}
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// Exists reports whether a persisted quote has exactly the referenced id.
func (q *QuoteStore) Exists(ctx context.Context, ref domain.QuoteRef) (bool, error) {
	arg, ok := q.store.dialect.quoteIDArg(ref)
	if !ok {
		return false, nil
	}

	var one int
	err := q.store.db.QueryRowContext(ctx,
		q.store.dialect.rebind("SELECT 1 FROM quotes WHERE id = ? LIMIT 1"),
		arg,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query quote: %w", err)
	}
	return true, nil
}

// Insert stores a quote and returns its assigned id.
func (q *QuoteStore) Insert(ctx context.Context, quote domain.Quote) (int64, error) {
	query := q.store.dialect.rebind(
		"INSERT INTO quotes (symbol, offer, bid, last, timestamp, lowPrice, highPrice, openPrice, closePrice) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
	)
	args := []any{
		quote.Symbol,
		quote.Offer,
		quote.Bid,
		quote.Last,
		quote.Timestamp,
		quote.LowPrice,
		quote.HighPrice,
		quote.OpenPrice,
		quote.ClosePrice,
	}

	if q.store.dialect.returning {
		var id int64
		if err := q.store.db.QueryRowContext(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to insert quote: %w", err)
		}
		return id, nil
	}

	res, err := q.store.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert quote: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read quote id: %w", err)
	}
	return id, nil
}

// SeedIfEmpty inserts the fixed seed quote when the table has no rows.
func (q *QuoteStore) SeedIfEmpty(ctx context.Context, now time.Time) (bool, int64, error) {
	var one int
	err := q.store.db.QueryRowContext(ctx, "SELECT 1 FROM quotes LIMIT 1").Scan(&one)
	if err == nil {
		return false, 0, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, 0, fmt.Errorf("failed to check quotes: %w", err)
	}

	id, err := q.Insert(ctx, domain.SeedQuote(now))
	if err != nil {
		return false, 0, err
	}
	return true, id, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuote(row rowScanner) (*domain.Quote, error) {
	var (
		quote  domain.Quote
		symbol sql.NullString
		ts     sql.NullString
		prices [7]decimal.NullDecimal
	)
	err := row.Scan(
		&quote.ID,
		&symbol,
		&prices[0],
		&prices[1],
		&prices[2],
		&ts,
		&prices[3],
		&prices[4],
		&prices[5],
		&prices[6],
	)
	if err != nil {
		return nil, err
	}

	quote.Symbol = symbol.String
	quote.Timestamp = ts.String
	for i, field := range quote.PriceFields() {
		*field = prices[i].Decimal
	}
	return &quote, nil
}

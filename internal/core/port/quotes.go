// File: internal/core/port/quotes.go
package port

import (
	"context"

	"github.com/mygeone2/quotes-fake-api/internal/core/domain"
)

type QuoteRepository interface {
	// Most recently timestamped quote, domain.ErrNoQuotes when empty
	Latest(ctx context.Context) (*domain.Quote, error)

	// Exact id match against the persisted quotes
	Exists(ctx context.Context, ref domain.QuoteRef) (bool, error)

	Insert(ctx context.Context, q domain.Quote) (int64, error)
}

type QuoteService interface {
	GetLatestQuote(ctx context.Context) (*domain.Quote, error)
	Mode() string
}

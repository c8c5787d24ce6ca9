package port

import (
	"context"

	"github.com/mygeone2/quotes-fake-api/internal/core/domain"
)

// IssuedQuoteCache keeps the jittered quotes handed out to clients.
// It is for inspection only; order validation never reads it.
type IssuedQuoteCache interface {
	RecordIssued(ctx context.Context, q domain.Quote) error

	GetIssued(ctx context.Context, id int64) (*domain.Quote, error)

	// Newest first
	RecentIssued(ctx context.Context, limit int64) ([]domain.Quote, error)

	// Health check
	Ping(ctx context.Context) error
}

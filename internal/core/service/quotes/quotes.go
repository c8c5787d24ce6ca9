// File: internal/core/service/quotes/quotes.go
package quotes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"github.com/mygeone2/quotes-fake-api/internal/core/domain"
	"github.com/mygeone2/quotes-fake-api/internal/core/port"
)

var (
	plusOne  = decimal.NewFromInt(1)
	minusOne = decimal.NewFromInt(-1)
)

type QuoteService struct {
	repo   port.QuoteRepository
	issued port.IssuedQuoteCache
	mode   string
	seq    *Sequence

	// coin reports true for +1, false for -1
	coin func() bool
}

// NewQuoteService creates a quote service for the given mode.
// issued may be nil when no cache is available.
func NewQuoteService(repo port.QuoteRepository, issued port.IssuedQuoteCache, mode string) port.QuoteService {
	if mode == "" {
		mode = domain.QuoteModeJitter
	}
	return &QuoteService{
		repo:   repo,
		issued: issued,
		mode:   mode,
		seq:    NewSequence(0),
		coin:   func() bool { return rand.IntN(2) == 1 },
	}
}

func (s *QuoteService) Mode() string {
	return s.mode
}

// GetLatestQuote returns the most recent stored quote. In jitter mode the
// result is a view: every price moves by exactly +1 or -1 and the id is
// replaced by the next value of the process sequence. The stored row is
// never modified.
func (s *QuoteService) GetLatestQuote(ctx context.Context) (*domain.Quote, error) {
	latest, err := s.repo.Latest(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoQuotes) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read latest quote: %w", err)
	}

	if s.mode == domain.QuoteModePassthrough {
		return latest, nil
	}

	view := *latest
	for _, price := range view.PriceFields() {
		*price = price.Add(s.offset())
	}
	view.ID = int64(s.seq.Next())

	if s.issued != nil {
		if err := s.issued.RecordIssued(ctx, view); err != nil {
			slog.Warn("Failed to record issued quote", "id", view.ID, "error", err)
		}
	}

	return &view, nil
}

func (s *QuoteService) offset() decimal.Decimal {
	if s.coin() {
		return plusOne
	}
	return minusOne
}

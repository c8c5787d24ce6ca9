package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout is how this service writes quote and order timestamps.
// Fixed width UTC with milliseconds, so lexical order is chronological.
// Rows written by other tools keep whatever ISO-8601 text they hold.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

func init() {
	// Prices travel as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Quote is a snapshot of currency price fields at a point in time.
type Quote struct {
	ID         int64           `json:"id"`
	Symbol     string          `json:"symbol"`
	Offer      decimal.Decimal `json:"offer"`
	Bid        decimal.Decimal `json:"bid"`
	Last       decimal.Decimal `json:"last"`
	Timestamp  string          `json:"timestamp"`
	LowPrice   decimal.Decimal `json:"lowPrice"`
	HighPrice  decimal.Decimal `json:"highPrice"`
	OpenPrice  decimal.Decimal `json:"openPrice"`
	ClosePrice decimal.Decimal `json:"closePrice"`
}

// PriceFields returns pointers to every price field of q, in storage order.
func (q *Quote) PriceFields() []*decimal.Decimal {
	return []*decimal.Decimal{
		&q.Offer,
		&q.Bid,
		&q.Last,
		&q.LowPrice,
		&q.HighPrice,
		&q.OpenPrice,
		&q.ClosePrice,
	}
}

// SeedQuote is inserted when the quote store is empty at startup.
func SeedQuote(now time.Time) Quote {
	return Quote{
		Symbol:     "USD",
		Offer:      decimal.RequireFromString("150.50"),
		Bid:        decimal.RequireFromString("149.50"),
		Last:       decimal.RequireFromString("150.00"),
		Timestamp:  now.UTC().Format(TimestampLayout),
		LowPrice:   decimal.RequireFromString("148.00"),
		HighPrice:  decimal.RequireFromString("151.00"),
		OpenPrice:  decimal.RequireFromString("149.00"),
		ClosePrice: decimal.RequireFromString("150.50"),
	}
}

// Quote modes
const (
	QuoteModeJitter      = "jitter"
	QuoteModePassthrough = "passthrough"
)

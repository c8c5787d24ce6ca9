package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is a client-submitted request to transact against a quote.
type Order struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	QuoteID   QuoteRef        `json:"quoteId"`
	Side      string          `json:"side"`
	Valuta    OptionalInt64   `json:"valuta"`
	CreatedAt string          `json:"createdAt"`
}

// OrderDraft is the body of an order creation request before validation.
// Amount is a pointer so an absent or null amount differs from 0. Valuta
// only has to be present: an explicit null passes.
type OrderDraft struct {
	Amount   *decimal.Decimal `json:"amount"`
	Currency string           `json:"currency"`
	QuoteID  QuoteRef         `json:"quoteId"`
	Side     string           `json:"side"`
	Valuta   OptionalInt64    `json:"valuta"`
}

// Validate applies the presence rules of each field. The rules differ per
// field: amount must be non-null and valuta only present, so 0 passes for
// both, while a zero or empty quoteId counts as missing.
func (d OrderDraft) Validate() error {
	if d.Amount == nil {
		return ErrMissingParameter
	}
	if d.Currency == "" {
		return ErrMissingParameter
	}
	if !d.QuoteID.Truthy() {
		return ErrMissingParameter
	}
	if d.Side == "" {
		return ErrMissingParameter
	}
	if !d.Valuta.Present {
		return ErrMissingParameter
	}
	return nil
}

var maxUUID = uuid.Must(uuid.Parse("ffffffff-ffff-ffff-ffff-ffffffffffff"))

// ValidateOrderID accepts only the canonical hyphenated UUID text form with
// an RFC 4122 layout (versions 1-8), plus the nil and max UUIDs.
func ValidateOrderID(id string) error {
	if len(id) != 36 {
		return ErrInvalidOrderID
	}
	u, err := uuid.Parse(id)
	if err != nil {
		return ErrInvalidOrderID
	}
	if u == uuid.Nil || u == maxUUID {
		return nil
	}
	if v := u.Version(); v < 1 || v > 8 {
		return ErrInvalidOrderID
	}
	if u.Variant() != uuid.RFC4122 {
		return ErrInvalidOrderID
	}
	return nil
}

// QuoteRef is the quoteId an order refers to. Clients may send it as a JSON
// number or a string; the raw text is kept so the store can match it the
// same way it was sent.
type QuoteRef struct {
	raw     string
	numeric bool
	present bool
}

// NewQuoteRef returns a reference to a stored quote id.
func NewQuoteRef(id int64) QuoteRef {
	return QuoteRef{raw: strconv.FormatInt(id, 10), numeric: true, present: true}
}

// ParseQuoteRef builds a reference from its stored text form.
func ParseQuoteRef(s string) QuoteRef {
	_, err := strconv.ParseFloat(s, 64)
	return QuoteRef{raw: s, numeric: err == nil, present: true}
}

func (r QuoteRef) String() string {
	return r.raw
}

// IsPresent reports whether a non-null value was supplied.
func (r QuoteRef) IsPresent() bool {
	return r.present
}

// Truthy reports whether the reference counts as supplied: present, and
// neither the number 0 nor the empty string.
func (r QuoteRef) Truthy() bool {
	if !r.present {
		return false
	}
	if !r.numeric {
		return r.raw != ""
	}
	f, err := strconv.ParseFloat(r.raw, 64)
	if err != nil {
		return false
	}
	return f != 0 && !math.IsNaN(f)
}

// BindValue is the value handed to the SQL driver for id lookups.
func (r QuoteRef) BindValue() any {
	if !r.numeric {
		return r.raw
	}
	if i, err := strconv.ParseInt(r.raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(r.raw, 64); err == nil {
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f)
		}
		return f
	}
	return r.raw
}

// IntID returns the reference as an integer id when its text is integral,
// for stores that refuse to compare an integer key with arbitrary text.
func (r QuoteRef) IntID() (int64, bool) {
	if !r.present {
		return 0, false
	}
	s := strings.TrimSpace(r.raw)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int64(f), true
	}
	return 0, false
}

func (r QuoteRef) MarshalJSON() ([]byte, error) {
	if !r.present {
		return []byte("null"), nil
	}
	if r.numeric {
		return []byte(r.raw), nil
	}
	return json.Marshal(r.raw)
}

func (r *QuoteRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*r = QuoteRef{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = QuoteRef{raw: s, present: true}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("quoteId must be a number or a string")
	}
	*r = QuoteRef{raw: n.String(), numeric: true, present: true}
	return nil
}

package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// OptionalInt64 is a JSON integer that remembers whether it was sent at all.
// An explicit null is present but not valid.
type OptionalInt64 struct {
	Int64   int64
	Valid   bool
	Present bool
}

// SomeInt64 returns a present, non-null value.
func SomeInt64(v int64) OptionalInt64 {
	return OptionalInt64{Int64: v, Valid: true, Present: true}
}

// NullInt64 returns a present null.
func NullInt64() OptionalInt64 {
	return OptionalInt64{Present: true}
}

func (o OptionalInt64) String() string {
	if !o.Valid {
		return "null"
	}
	return strconv.FormatInt(o.Int64, 10)
}

func (o OptionalInt64) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(o.Int64, 10)), nil
}

// UnmarshalJSON is only called for keys present in the document.
func (o *OptionalInt64) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*o = NullInt64()
		return nil
	}
	var v int64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = SomeInt64(v)
	return nil
}

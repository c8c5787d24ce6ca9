package utils

import (
	"fmt"
	"sort"
	"time"
)

// DefaultPeriod is used when a period string is empty
const DefaultPeriod = 1 * time.Second

const (
	MinPeriod = 1 * time.Second
	MaxPeriod = 24 * time.Hour
)

// NamedPeriods are the shorthand periods accepted by config and the stream endpoint
var NamedPeriods = map[string]time.Duration{
	"1s":  1 * time.Second,
	"5s":  5 * time.Second,
	"10s": 10 * time.Second,
	"30s": 30 * time.Second,
	"1m":  1 * time.Minute,
	"5m":  5 * time.Minute,
	"10m": 10 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  1 * time.Hour,
	"24h": 24 * time.Hour,
}

// ParsePeriod parses a named period or any Go duration between MinPeriod and MaxPeriod.
func ParsePeriod(s string) (time.Duration, error) {
	if s == "" {
		return DefaultPeriod, nil
	}
	if d, ok := NamedPeriods[s]; ok {
		return d, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid period %q: must be one of %v or a Go duration", s, namedPeriodKeys())
	}
	if d < MinPeriod {
		return 0, fmt.Errorf("period %q too short: minimum is %s", s, MinPeriod)
	}
	if d > MaxPeriod {
		return 0, fmt.Errorf("period %q too long: maximum is %s", s, MaxPeriod)
	}
	return d, nil
}

// MustParsePeriod is ParsePeriod for values already checked by config validation.
func MustParsePeriod(s string) time.Duration {
	d, err := ParsePeriod(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FormatPeriod returns the short name of d when it has one
func FormatPeriod(d time.Duration) string {
	for name, named := range NamedPeriods {
		if d == named {
			return name
		}
	}
	return d.String()
}

// namedPeriodKeys returns the NamedPeriods keys ordered by duration
func namedPeriodKeys() []string {
	keys := make([]string, 0, len(NamedPeriods))
	for key := range NamedPeriods {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return NamedPeriods[keys[i]] < NamedPeriods[keys[j]]
	})
	return keys
}

package domain

import "errors"

var (
	ErrInvalidOrderID   = errors.New("Invalid order ID. Must be a UUID v4.")
	ErrMissingParameter = errors.New("Missing required parameters")
	ErrQuoteNotFound    = errors.New("Quote not found or expired")
	ErrNoQuotes         = errors.New("No quotes available")
	ErrOrderNotFound    = errors.New("Order not found")
	ErrOrderExists      = errors.New("order already exists")
	ErrUnauthorized     = errors.New("Invalid token")
)

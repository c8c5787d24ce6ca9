// File: internal/adapters/handler/http/v1/endpoints.go
package v1

import (
	"net/http"
)

// SetQuoteRoutes sets up all public API routes
func SetQuoteRoutes(router *http.ServeMux, quoteHandler *QuoteHandler, orderHandler *OrderHandler, streamHandler *StreamHandler, healthHandler *HealthHandler) {
	// Quote API Routes
	setQuoteRoutes(quoteHandler, streamHandler, router)

	// Order API Routes
	setOrderRoutes(orderHandler, router)

	// System Health Routes
	setHealthRoutes(healthHandler, router)
}

// SetDebugRoutes sets up debug routes (call this separately for debugging)
func SetDebugRoutes(router *http.ServeMux, debugHandler *DebugHandler) {
	router.HandleFunc("GET /debug/quotes/issued", debugHandler.GetIssuedQuotes)
	router.HandleFunc("GET /debug/quotes/issued/{id}", debugHandler.GetIssuedQuote)
}

func setQuoteRoutes(handler *QuoteHandler, stream *StreamHandler, router *http.ServeMux) {
	router.HandleFunc("GET /v1/quote", handler.GetLatestQuote)
	router.HandleFunc("GET /v1/quote/stream", stream.StreamQuotes)
}

// setOrderRoutes sets up order endpoints; all of them require credentials
func setOrderRoutes(handler *OrderHandler, router *http.ServeMux) {
	router.HandleFunc("PUT /v1/order/{id}", RequireCredentials(handler.CreateOrder))
	router.HandleFunc("GET /v1/order/{id}", RequireCredentials(handler.GetOrder))
}

// setHealthRoutes sets up system health endpoints
func setHealthRoutes(handler *HealthHandler, router *http.ServeMux) {
	router.HandleFunc("GET /health", handler.GetSystemHealth)
	router.HandleFunc("GET /health/detailed", handler.GetDetailedHealth)
}

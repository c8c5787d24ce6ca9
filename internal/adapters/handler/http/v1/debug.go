// File: internal/adapters/handler/http/v1/debug.go
package v1

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mygeone2/quotes-fake-api/internal/adapters/cache"
	"github.com/mygeone2/quotes-fake-api/internal/core/port"
)

const defaultIssuedLimit = 20

type DebugHandler struct {
	cache port.IssuedQuoteCache
}

func NewDebugHandler(cache port.IssuedQuoteCache) *DebugHandler {
	return &DebugHandler{
		cache: cache,
	}
}

type DebugResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// GET /debug/quotes/issued?limit=N - Show the most recently issued quote views
func (h *DebugHandler) GetIssuedQuotes(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "Redis client not available")
		return
	}

	limit := int64(defaultIssuedLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			writeErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	quotes, err := h.cache.RecentIssued(r.Context(), limit)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to read issued quotes: "+err.Error())
		return
	}

	writeJSONResponse(w, http.StatusOK, DebugResponse{
		Message: fmt.Sprintf("Found %d issued quotes", len(quotes)),
		Data:    quotes,
	})
}

// GET /debug/quotes/issued/{id} - Show one issued quote view
func (h *DebugHandler) GetIssuedQuote(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "Redis client not available")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "id must be an integer")
		return
	}

	quote, err := h.cache.GetIssued(r.Context(), id)
	if errors.Is(err, cache.ErrNotIssued) {
		writeErrorResponse(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSONResponse(w, http.StatusOK, DebugResponse{
		Message: fmt.Sprintf("Issued quote %d", id),
		Data:    quote,
	})
}

package v1

import (
	"net/http"

	"github.com/mygeone2/quotes-fake-api/internal/core/port"
)

type QuoteHandler struct {
	quoteService port.QuoteService
}

func NewQuoteHandler(
	quoteService port.QuoteService,
) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
	}
}

// GetLatestQuote handles GET /v1/quote
func (h *QuoteHandler) GetLatestQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.quoteService.GetLatestQuote(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, quote)
}

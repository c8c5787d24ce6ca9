package v1

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mygeone2/quotes-fake-api/internal/core/domain"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

var errInvalidBody = errors.New("Invalid request body")

func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	writeJSONResponse(w, statusCode, ErrorResponse{Error: message})
}

// writeDomainError maps an error to its status code. Unknown errors are
// store failures and pass their message through.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidOrderID),
		errors.Is(err, domain.ErrMissingParameter),
		errors.Is(err, domain.ErrQuoteNotFound),
		errors.Is(err, errInvalidBody):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNoQuotes),
		errors.Is(err, domain.ErrOrderNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusForbidden
	}

	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeErrorResponse(w, status, err.Error())
}

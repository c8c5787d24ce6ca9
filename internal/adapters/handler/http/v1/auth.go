package v1

import (
	"net/http"

	"github.com/mygeone2/quotes-fake-api/internal/core/domain"
)

const (
	HeaderAPIKey    = "x-api-key"
	HeaderAPISecret = "x-api-secret"
)

// Authorize checks that both credentials are present. Their values are not verified.
func Authorize(apiKey, apiSecret string) error {
	if apiKey == "" || apiSecret == "" {
		return domain.ErrUnauthorized
	}
	return nil
}

// RequireCredentials guards next with Authorize on the request headers.
func RequireCredentials(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := Authorize(r.Header.Get(HeaderAPIKey), r.Header.Get(HeaderAPISecret)); err != nil {
			writeErrorResponse(w, http.StatusForbidden, err.Error())
			return
		}
		next(w, r)
	}
}

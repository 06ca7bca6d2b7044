// Package endpoints contains the HTTP endpoint implementations. Each
// endpoint is both an HTTP route and a CLI command (see internal/api).
package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/quicktalog/quicktalog/internal/auth"
	"github.com/quicktalog/quicktalog/internal/providers"
	"github.com/quicktalog/quicktalog/internal/svcctx"
)

// ErrorResponse is the JSON error body shared by all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// authenticate resolves the request to a user ID, writing a 401 when the
// identity provider rejects it. Returns false when the response was written.
func authenticate(w http.ResponseWriter, r *http.Request) (string, bool) {
	verifier := svcctx.VerifierFrom(r.Context())
	if verifier == nil {
		writeError(w, http.StatusServiceUnavailable, "auth verifier not initialized")
		return "", false
	}
	userID, err := verifier.Verify(r.Context(), r)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			writeError(w, http.StatusUnauthorized, "not authenticated")
		} else {
			svcctx.LoggerFrom(r.Context()).Error("auth verification failed", "error", err)
			writeError(w, http.StatusInternalServerError, "auth verification failed")
		}
		return "", false
	}
	return userID, true
}

// generationStatus maps a pipeline failure onto an HTTP status per the
// upstream error taxonomy: throttling is the caller's to retry (429), quota
// is a billing problem (402), a rejected key is our misconfiguration (500).
func generationStatus(err error) int {
	switch {
	case errors.Is(err, providers.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, providers.ErrQuota):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// catalogueURL builds the public URL for a published catalogue.
func catalogueURL(baseURL, slug string) string {
	return fmt.Sprintf("%s/catalogue/%s", strings.TrimRight(baseURL, "/"), slug)
}

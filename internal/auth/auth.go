// Package auth is the boundary to the third-party identity provider. The
// service never manages credentials itself; it only verifies tokens minted
// elsewhere.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrUnauthenticated means the request carried no usable identity.
var ErrUnauthenticated = errors.New("not authenticated")

// Verifier resolves a request to a user ID or rejects it.
type Verifier interface {
	Verify(ctx context.Context, r *http.Request) (userID string, err error)
}

// TokenVerifierConfig holds configuration for the introspection verifier.
type TokenVerifierConfig struct {
	IntrospectURL string
	Timeout       time.Duration
	HTTPClient    *http.Client // Optional (tests)
}

// TokenVerifier validates bearer tokens against the identity provider's
// introspection endpoint.
type TokenVerifier struct {
	introspectURL string
	client        *http.Client
}

// NewTokenVerifier creates a verifier against the given introspection URL.
func NewTokenVerifier(cfg TokenVerifierConfig) *TokenVerifier {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &TokenVerifier{
		introspectURL: cfg.IntrospectURL,
		client:        client,
	}
}

type introspectResponse struct {
	Active bool   `json:"active"`
	Sub    string `json:"sub"`
}

// Verify extracts the bearer token and introspects it.
func (v *TokenVerifier) Verify(ctx context.Context, r *http.Request) (string, error) {
	token := bearerToken(r)
	if token == "" {
		return "", ErrUnauthenticated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.introspectURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create introspection request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("introspection request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", ErrUnauthenticated
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("introspection error (status %d): %s", resp.StatusCode, string(body))
	}

	var result introspectResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode introspection response: %w", err)
	}
	if !result.Active || result.Sub == "" {
		return "", ErrUnauthenticated
	}
	return result.Sub, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// Verify interface
var _ Verifier = (*TokenVerifier)(nil)

// StaticVerifier maps fixed tokens to user IDs. Used in tests and local
// development.
type StaticVerifier struct {
	Tokens map[string]string // token -> user ID
}

// Verify resolves the bearer token against the static map.
func (v *StaticVerifier) Verify(_ context.Context, r *http.Request) (string, error) {
	token := bearerToken(r)
	if token == "" {
		return "", ErrUnauthenticated
	}
	userID, ok := v.Tokens[token]
	if !ok {
		return "", ErrUnauthenticated
	}
	return userID, nil
}

// Verify interface
var _ Verifier = (*StaticVerifier)(nil)

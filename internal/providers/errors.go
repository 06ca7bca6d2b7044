package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/openai/openai-go/v3"
)

// Sentinel errors classify upstream completion failures. Handlers branch on
// these to pick a response status; the pipeline branches on them per stage.
var (
	// ErrRateLimited means the provider signalled throttling (HTTP 429).
	ErrRateLimited = errors.New("upstream rate limited")

	// ErrAuth means the provider rejected our credentials (HTTP 401/403).
	ErrAuth = errors.New("upstream auth rejected")

	// ErrQuota means the provider account is out of quota or unpaid (HTTP 402).
	ErrQuota = errors.New("upstream quota exceeded")

	// ErrUnavailable covers transport failures and 5xx responses.
	ErrUnavailable = errors.New("upstream unavailable")
)

// classifyError maps an SDK or transport error onto the sentinel taxonomy,
// preserving the original message via wrapping.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrAuth, err)
		case http.StatusPaymentRequired:
			return fmt.Errorf("%w: %v", ErrQuota, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

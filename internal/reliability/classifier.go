// Package reliability centralizes failure classification: every internal
// error is translated into exactly one status/code pair at the service
// boundary, and retry hints are provided for clients.
package reliability

import (
	"errors"
	"net/http"
	"time"

	"github.com/kinin-app/interviewer/internal/interview"
)

// StatusFor maps an exchange error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, interview.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, interview.ErrMessageRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// CodeFor maps an exchange error to a stable machine-readable code.
func CodeFor(err error) string {
	var storeErr *interview.StoreError
	var genErr *interview.GenerationError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, interview.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, interview.ErrMessageRequired):
		return "message_required"
	case errors.As(err, &storeErr):
		return "store_error"
	case errors.As(err, &genErr):
		return "generation_failure"
	default:
		return "internal_error"
	}
}

// MessageFor is the short caller-facing message for an exchange error.
// Full diagnostic detail is logged server-side only.
func MessageFor(err error) string {
	switch CodeFor(err) {
	case "unauthorized":
		return "Unauthorized: missing user identity"
	case "message_required":
		return "message required"
	case "store_error":
		return "storage unavailable"
	case "generation_failure":
		return "reply generation failed"
	default:
		return "internal error"
	}
}

// IsRetryableHTTPStatus classifies retryable HTTP status codes for
// client-side retry loops. The service itself never retries internally.
func IsRetryableHTTPStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// ExponentialBackoff computes a deterministic capped backoff duration.
func ExponentialBackoff(attempt int, base, cap time.Duration) time.Duration {
	if attempt <= 0 {
		return base
	}
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= cap {
			return cap
		}
	}
	return d
}

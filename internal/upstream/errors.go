// Package upstream holds error classification shared by the API clients.
package upstream

import (
	"errors"
	"strings"
)

// ErrThrottled indicates the upstream rejected the request with HTTP 429
// or an equivalent rate-limit response. Throttling is decisive: the run
// stops instead of hammering the API.
var ErrThrottled = errors.New("upstream: throttled")

// IsThrottled reports whether err is a rate-limit rejection. Besides the
// sentinel it sniffs throttle wording, for errors that crossed an API
// boundary as plain strings.
func IsThrottled(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrThrottled) {
		return true
	}
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "429") ||
		strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "too many requests")
}

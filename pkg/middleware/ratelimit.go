package middleware

import (
	"fmt"
	"net/http"
	"time"

	"org-registry-backend/pkg/ratelimit"
	"org-registry-backend/pkg/utils"
)

// AuthRateLimit covers login and registration per client IP.
const (
	AuthRateLimit  = 60 // requests per window
	AuthRateWindow = time.Minute
)

// RateLimit rejects requests over limit per window, keyed by prefix and
// client IP. A nil limiter disables the middleware entirely.
func RateLimit(rl *ratelimit.Limiter, prefix string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if rl == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := fmt.Sprintf("%s:%s", prefix, getClientIP(r))
			allowed, count, err := rl.Allow(key, limit, window)
			if err != nil {
				// Redis being down must not lock everyone out
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
			remaining := limit - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

			if !allowed {
				utils.WriteErrorResponseWithCode(w, http.StatusTooManyRequests,
					"RATE_LIMITED", "Rate limit exceeded", "")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

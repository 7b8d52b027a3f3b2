package middleware

import (
	"context"
	"fmt"

	"bridge-rpc/message"

	"golang.org/x/time/rate"
)

// RateLimitMiddleware paces calls with a token bucket. A call waits for its token rather than
// failing; only ctx ending before a token is available stops it, and then nothing is sent.
func RateLimitMiddleware(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, call *message.Call) (message.Value, error) {
			if err := limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limit wait for %s: %w", call.Method, err)
			}
			return next(ctx, call)
		}
	}
}

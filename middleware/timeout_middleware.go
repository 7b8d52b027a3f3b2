package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bridge-rpc/message"
)

// ErrCallTimeout is returned when the caller stops waiting for a response.
var ErrCallTimeout = errors.New("call timed out")

// TimeOutMiddleware bounds how long the caller waits. The call itself is not withdrawn: once
// dispatched it stays pending until the host answers, and a late answer is discarded.
func TimeOutMiddleware(timeout time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, call *message.Call) (message.Value, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			type outcome struct {
				result message.Value
				err    error
			}
			done := make(chan outcome, 1)
			go func() {
				result, err := next(ctx, call)
				done <- outcome{result, err}
			}()

			select {
			case out := <-done:
				return out.result, out.err
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %s after %s", ErrCallTimeout, call.Method, timeout)
			}
		}
	}
}

package middleware

import (
	"context"
	"time"

	"bridge-rpc/logger"
	"bridge-rpc/message"
)

// LoggingMiddleware logs every call with its duration, and the error if there was one.
func LoggingMiddleware(log *logger.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, call *message.Call) (message.Value, error) {
			start := time.Now()
			result, err := next(ctx, call)
			duration := time.Since(start)

			if err != nil {
				log.Warn().
					Str("method", call.Method).
					Dur("duration", duration).
					Err(err).
					Msg("call failed")
				return result, err
			}

			log.Debug().
				Str("method", call.Method).
				Dur("duration", duration).
				Msg("call completed")
			return result, nil
		}
	}
}

// Package middleware wraps the client's invoke path.
//
// A HandlerFunc takes an outbound call and returns its result once the host answers.
// Middlewares compose in the onion model:
//
//	Chain(A, B, C)(invoke) → A(B(C(invoke)))
//	A.before → B.before → C.before → invoke → C.after → B.after → A.after
package middleware

import (
	"context"

	"bridge-rpc/message"
)

type HandlerFunc func(ctx context.Context, call *message.Call) (message.Value, error)

type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes middlewares into one; the first wraps all the others.
func Chain(middlewares ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}

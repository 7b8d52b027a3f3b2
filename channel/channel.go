//go:generate mockgen -source=channel.go -destination=../mock/channel_mock.go -package=mock

// Package channel describes the host-provided bridge object the RPC client talks through.
//
// The client never implements or validates the transport behind these interfaces; it only
// needs a way to obtain the proxy once (Provider) and the three primitives the proxy exposes
// (Channel).
package channel

import "context"

// Channel is the proxy object the host exposes once it is ready.
type Channel interface {
	// Invoke is the host's built-in request/response call. The callback receives the JSON
	// encoded result and is called once.
	Invoke(method string, params string, callback func(result string))

	// PostMessage is fire-and-forget. The response, if any, arrives later through the
	// OnMessage stream tagged with callID.
	PostMessage(callID int64, method string, params string) error

	// OnMessage subscribes handler to every raw message the host emits.
	OnMessage(handler func(message string))
}

// Provider yields the Channel once the host signals readiness.
type Provider interface {
	Connect(ctx context.Context) (Channel, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (Channel, error)

func (f ProviderFunc) Connect(ctx context.Context) (Channel, error) {
	return f(ctx)
}

// Package client implements the RPC client that bridges the UI to the host process.
//
// The host hands out a single channel object once it is ready. The client obtains it lazily,
// correlates requests and responses with ids of its own, and routes every inbound message
// either to the call waiting for it or to the broadcast bus.
//
//	Invoke("getVersion") ──Register(id=1)──PostMessage(1, "getVersion", "{}")──→ host
//	                                                                              │
//	handleMessage ←─────────────── {"callback_id":1,"result":"1.2.3"} ────────────┘
//	   ├─ id=1 pending   → resolve the call, drop the entry
//	   └─ anything else  → Broadcasts().Publish(result)
package client

import (
	"context"
	"sync"

	"bridge-rpc/broadcast"
	"bridge-rpc/channel"
	"bridge-rpc/codec"
	"bridge-rpc/config"
	"bridge-rpc/logger"
	"bridge-rpc/message"
	"bridge-rpc/middleware"
	"bridge-rpc/registry"

	"github.com/google/uuid"
)

// Client is an RPC client bound to one host channel provider.
// Create one with New and share it; it is safe for concurrent use.
type Client struct {
	id          uuid.UUID
	provider    channel.Provider
	codec       codec.Codec
	cfg         *config.ClientConfig
	log         *logger.Logger
	pending     *registry.Registry
	bus         *broadcast.Bus
	middlewares []middleware.Middleware
	handler     middleware.HandlerFunc // middleware chain around invoke

	lifetime context.Context // cancelled by Close; bounds background waits
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu       sync.Mutex
	state    State
	ch       channel.Channel // nil until Connected
	attempt  *connectAttempt // non-nil while Connecting
	connects int             // attempts started, for diagnostics
	closed   bool
}

// New returns a disconnected client. Nothing talks to the provider until the first call or
// an explicit Connect. A config that fails Validate is replaced by config.Default().
func New(provider channel.Provider, opts ...Option) *Client {
	c := &Client{
		id:       uuid.New(),
		provider: provider,
		pending:  registry.New(),
		bus:      broadcast.NewBus(),
	}
	for _, opt := range opts {
		opt(c)
	}

	var cfgErr error
	if c.cfg == nil {
		c.cfg = config.Default()
	} else if cfgErr = c.cfg.Validate(); cfgErr != nil {
		c.cfg = config.Default()
	}
	if c.codec == nil {
		c.codec = codec.GetCodec(codec.CodecTypeJSON)
	}
	if c.log == nil {
		c.log = logger.NewLogger("bridge-client")
	}
	c.log = &logger.Logger{Logger: c.log.WithLevel(c.cfg.LogLevel).With().
		Str("client_id", c.id.String()).
		Logger()}
	if cfgErr != nil {
		c.log.Error().Err(cfgErr).Msg("invalid client config, using defaults")
	}

	c.bus.OnPanic = func(sub broadcast.Subscription, recovered any) {
		c.log.Error().
			Str("subscription", sub.ID.String()).
			Interface("panic", recovered).
			Msg("broadcast subscriber panicked")
	}

	c.lifetime, c.cancel = context.WithCancel(context.Background())
	c.handler = middleware.Chain(c.chain()...)(c.invoke)

	return c
}

func (c *Client) chain() []middleware.Middleware {
	mws := []middleware.Middleware{middleware.LoggingMiddleware(c.log)}
	if c.cfg.RateLimit > 0 {
		mws = append(mws, middleware.RateLimitMiddleware(c.cfg.RateLimit, c.cfg.RateBurst))
	}
	if c.cfg.CallTimeout > 0 {
		mws = append(mws, middleware.TimeOutMiddleware(c.cfg.CallTimeout))
	}
	return append(mws, c.middlewares...)
}

// ID identifies this client in logs.
func (c *Client) ID() uuid.UUID {
	return c.id
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Broadcasts returns the bus unsolicited host messages are published on.
func (c *Client) Broadcasts() *broadcast.Bus {
	return c.bus
}

// PendingCalls returns the number of calls sent and not yet answered.
func (c *Client) PendingCalls() int {
	return c.pending.Len()
}

// Invoke calls method on the host and waits for the result.
//
// The call goes through the middleware chain, then the same path as InvokeCallback. If ctx
// ends after the call was sent, Invoke returns ctx.Err() but the call stays pending until
// the host answers; the late answer is discarded.
func (c *Client) Invoke(ctx context.Context, method string, params any) (message.Value, error) {
	return c.handler(ctx, &message.Call{Method: method, Params: params})
}

// invoke is the innermost handler of the chain.
func (c *Client) invoke(ctx context.Context, call *message.Call) (message.Value, error) {
	type outcome struct {
		result message.Value
		err    error
	}
	done := make(chan outcome, 1) // buffered so a late callback never blocks the demux path

	c.InvokeCallback(ctx, call.Method, call.Params, func(result message.Value, err error) {
		done <- outcome{result, err}
	})

	select {
	case out := <-done:
		return out.result, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// InvokeCallback calls method on the host and reports the outcome to cb exactly once.
//
// The call is registered under a fresh id right before it is posted; the response is
// matched by that id on the inbound stream. cb may run on the caller's goroutine (for
// errors detected before dispatch) or on the goroutine delivering host messages.
func (c *Client) InvokeCallback(ctx context.Context, method string, params any, cb message.Callback) {
	cb = once(cb)

	payload, err := codec.EncodeParams(c.codec, params)
	if err != nil {
		cb(nil, err)
		return
	}

	c.dispatch(ctx, method, func(ch channel.Channel) error {
		return c.post(ch, method, payload, cb)
	}, func(err error) {
		cb(nil, err)
	})
}

// InvokeSync calls method through the channel's own request/response primitive. No id is
// allocated and the answer does not pass through the inbound stream; cb is the channel's
// callback. Connection handling is the same as for InvokeCallback.
func (c *Client) InvokeSync(ctx context.Context, method string, params any, cb message.Callback) {
	cb = once(cb)

	payload, err := codec.EncodeParams(c.codec, params)
	if err != nil {
		cb(nil, err)
		return
	}

	c.dispatch(ctx, method, func(ch channel.Channel) error {
		c.log.Debug().Str("method", method).Msg("invoking directly")
		ch.Invoke(method, payload, func(result string) {
			cb(message.Value(result), nil)
		})
		return nil
	}, func(err error) {
		cb(nil, err)
	})
}

// Close stops background waits and rejects further calls. Calls already sent stay pending;
// the channel itself belongs to the host and is left alone.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
	return nil
}

func once(cb message.Callback) message.Callback {
	var o sync.Once
	return func(result message.Value, err error) {
		o.Do(func() {
			if cb != nil {
				cb(result, err)
			}
		})
	}
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying c.
func NewContext(ctx context.Context, c *Client) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the client stored by NewContext.
func FromContext(ctx context.Context) (*Client, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Client)
	return c, ok
}

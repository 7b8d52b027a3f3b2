package client

import (
	"bridge-rpc/codec"
	"bridge-rpc/config"
	"bridge-rpc/logger"
	"bridge-rpc/middleware"
)

// Option configures a Client.
type Option func(*Client)

// WithConfig replaces the default settings. New falls back to the defaults if cfg does not
// pass Validate.
func WithConfig(cfg *config.ClientConfig) Option {
	return func(c *Client) {
		c.cfg = cfg
	}
}

// WithLogger sets the parent logger; the client logs through a child of it.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// WithCodec overrides the payload codec.
func WithCodec(cdc codec.Codec) Option {
	return func(c *Client) {
		c.codec = cdc
	}
}

// WithMiddleware appends middlewares to the Invoke chain. They run inside the built-in
// logging, rate limit and timeout middlewares.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(c *Client) {
		c.middlewares = append(c.middlewares, mws...)
	}
}

package client

import "errors"

var (
	// ErrInvalidState is returned when a call finds the client in a state it has no rule for.
	ErrInvalidState = errors.New("invalid connection state")
	// ErrConnectionStalled is returned when a call made during a connection attempt gave up
	// waiting for the channel. The call was never sent.
	ErrConnectionStalled = errors.New("connection not ready")
	// ErrNilChannel is returned when the provider reports success without a channel.
	ErrNilChannel = errors.New("provider returned no channel")
	// ErrClosed is returned for calls made after Close.
	ErrClosed = errors.New("client closed")
)

package client

import (
	"context"
	"fmt"

	"bridge-rpc/channel"
)

// connectAttempt is the single in-flight request for the host channel. Everyone who needs
// the channel while it runs queues a waiter; waiters are released in the order they queued.
type connectAttempt struct {
	waiters []func(ch channel.Channel, err error)
	done    chan struct{} // closed once the attempt has settled, before waiters run
}

// settled reports whether the attempt has finished, successfully or not.
func (a *connectAttempt) settled() bool {
	select {
	case <-a.done:
		return true
	default:
		return false
	}
}

// Connect makes sure the channel is obtained. While an attempt is already running it waits
// for that attempt instead of starting another one. Returning early because ctx ended does
// not cancel the attempt.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	var attempt *connectAttempt
	switch c.state {
	case Connected:
		c.mu.Unlock()
		return nil
	case Disconnected:
		attempt = c.startAttemptLocked()
	case Connecting:
		attempt = c.attempt
	default:
		state := c.state
		c.mu.Unlock()
		c.log.Error().Stringer("state", state).Msg("connect in unknown state")
		return ErrInvalidState
	}

	result := make(chan error, 1)
	attempt.waiters = append(attempt.waiters, func(_ channel.Channel, err error) {
		result <- err
	})
	c.mu.Unlock()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// startAttemptLocked moves Disconnected → Connecting and asks the provider for the channel
// in the background. c.mu must be held.
func (c *Client) startAttemptLocked() *connectAttempt {
	attempt := &connectAttempt{done: make(chan struct{})}
	c.attempt = attempt
	c.state = Connecting
	c.connects++

	c.log.Info().Int("attempt", c.connects).Msg("connecting to host channel")

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.runAttempt(attempt)
	}()
	return attempt
}

func (c *Client) runAttempt(attempt *connectAttempt) {
	ctx := c.lifetime
	if c.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.ConnectTimeout)
		defer cancel()
	}

	ch, err := c.provider.Connect(ctx)
	if err == nil && ch == nil {
		err = ErrNilChannel
	}
	if err != nil {
		err = fmt.Errorf("connect to host channel: %w", err)
	} else {
		// Subscribe before anyone can send, so no response can slip past the demultiplexer.
		ch.OnMessage(c.handleMessage)
	}

	c.mu.Lock()
	if err != nil {
		c.state = Disconnected
	} else {
		c.state = Connected
		c.ch = ch
	}
	c.attempt = nil
	waiters := attempt.waiters
	attempt.waiters = nil
	close(attempt.done)
	c.mu.Unlock()

	if err != nil {
		c.log.Error().Err(err).Int("waiters", len(waiters)).Msg("connection attempt failed")
	} else {
		c.log.Info().Int("waiters", len(waiters)).Msg("host channel connected")
	}

	for _, w := range waiters {
		w(ch, err)
	}
}

// ConnectAttempts returns how many connection attempts have been started.
func (c *Client) ConnectAttempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connects
}

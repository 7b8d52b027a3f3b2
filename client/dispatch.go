package client

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"bridge-rpc/channel"
	"bridge-rpc/message"

	"github.com/sethvargo/go-retry"
)

// sendFunc performs the actual send once a channel is available.
type sendFunc func(ch channel.Channel) error

var errNotReady = errors.New("channel not ready")

// dispatch applies the connection policy to one call:
//
//   - Disconnected: start the connection attempt and send once it succeeds.
//   - Connecting:   queue behind the running attempt, bounded by the readiness poll.
//   - Connected:    send now.
//
// Calls queued on one attempt are sent in the order they arrived, on the goroutine that
// ran the attempt. Exactly one of send or fail runs, at most once.
func (c *Client) dispatch(ctx context.Context, method string, send sendFunc, fail func(error)) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		fail(ErrClosed)
		return
	}

	switch c.state {
	case Disconnected:
		attempt := c.startAttemptLocked()
		attempt.waiters = append(attempt.waiters, func(ch channel.Channel, err error) {
			if err != nil {
				fail(err)
				return
			}
			c.send(ctx, method, ch, send, fail)
		})
		c.mu.Unlock()

	case Connecting:
		attempt := c.attempt
		var claimed atomic.Bool
		attempt.waiters = append(attempt.waiters, func(ch channel.Channel, err error) {
			if !claimed.CompareAndSwap(false, true) {
				return // already dropped by the readiness poll
			}
			if err != nil {
				fail(err)
				return
			}
			c.send(ctx, method, ch, send, fail)
		})
		c.wg.Add(1)
		c.mu.Unlock()
		go func() {
			defer c.wg.Done()
			if err := c.awaitReadiness(ctx, method, attempt); err != nil && claimed.CompareAndSwap(false, true) {
				fail(err)
			}
		}()

	case Connected:
		ch := c.ch
		c.mu.Unlock()
		c.send(ctx, method, ch, send, fail)

	default:
		state := c.state
		c.mu.Unlock()
		c.log.Error().
			Str("method", method).
			Stringer("state", state).
			Msg("dispatch in unknown state, dropping call")
		fail(fmt.Errorf("%w: %s", ErrInvalidState, state))
	}
}

// send hands the call to the channel unless the caller already gave up.
func (c *Client) send(ctx context.Context, method string, ch channel.Channel, send sendFunc, fail func(error)) {
	if err := ctx.Err(); err != nil {
		c.log.Debug().Str("method", method).Err(err).Msg("caller gone before dispatch")
		fail(err)
		return
	}
	if err := send(ch); err != nil {
		c.log.Error().Str("method", method).Err(err).Msg("send failed")
		fail(err)
	}
}

// post registers the call and posts it. The entry exists before PostMessage is issued, so
// even a response delivered from inside PostMessage finds it.
func (c *Client) post(ch channel.Channel, method string, payload string, cb message.Callback) error {
	call := c.pending.Register(method, cb)

	c.log.Debug().
		Str("method", method).
		Int64("call_id", call.ID).
		Msg("posting call")

	if err := ch.PostMessage(call.ID, method, payload); err != nil {
		c.pending.Remove(call.ID)
		return fmt.Errorf("post %s (call %d): %w", method, call.ID, err)
	}
	return nil
}

// awaitReadiness is the readiness poll for a call queued behind another caller's attempt.
// It waits Poll.Delay, then checks whether the attempt has settled, and keeps checking with
// exponential backoff (capped at Poll.MaxDelay) for at most Poll.MaxAttempts checks in
// total. With MaxAttempts of 1 a single late check decides.
//
// A nil return means the attempt settled in time and its waiter owns the call. Otherwise
// the call is to be dropped: ErrConnectionStalled when the checks ran out, the caller's or
// the client's end otherwise. Nothing was registered or sent for a dropped call.
func (c *Client) awaitReadiness(ctx context.Context, method string, attempt *connectAttempt) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.lifetime, cancel)
	defer stop()

	policy := c.cfg.Poll

	timer := time.NewTimer(policy.Delay)
	select {
	case <-timer.C:
	case <-attempt.done:
		timer.Stop()
		return nil
	case <-ctx.Done():
		timer.Stop()
		return c.abandoned(ctx)
	}

	backoff := retry.NewExponential(policy.Delay)
	backoff = retry.WithCappedDuration(policy.MaxDelay, backoff)
	backoff = retry.WithMaxRetries(uint64(policy.MaxAttempts-1), backoff)

	checks := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		checks++
		if !attempt.settled() {
			return retry.RetryableError(errNotReady)
		}
		return nil
	})
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return c.abandoned(ctx)
	}

	c.log.Warn().
		Str("method", method).
		Int("checks", checks).
		Msg("channel still not ready, dropping call")
	return fmt.Errorf("%w: %s dropped after %d checks", ErrConnectionStalled, method, checks)
}

// abandoned maps the end of a readiness wait to the error the caller sees.
func (c *Client) abandoned(ctx context.Context) error {
	if c.lifetime.Err() != nil {
		return ErrClosed
	}
	return ctx.Err()
}

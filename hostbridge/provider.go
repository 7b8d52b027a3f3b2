package hostbridge

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"bridge-rpc/channel"
)

// Provider hands out a Bridge after a fixed delay, the way the host signals readiness
// some time after the page asked for the channel.
type Provider struct {
	bridge   *Bridge
	delay    time.Duration
	connects atomic.Int32

	mu  sync.Mutex
	err error
}

// Provider returns a channel.Provider yielding b after readyAfter.
func (b *Bridge) Provider(readyAfter time.Duration) *Provider {
	return &Provider{bridge: b, delay: readyAfter}
}

// Fail makes every later Connect return err after the delay. Pass nil to recover.
func (p *Provider) Fail(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

// Connect implements channel.Provider.
func (p *Provider) Connect(ctx context.Context) (channel.Channel, error) {
	p.connects.Add(1)

	if p.delay > 0 {
		timer := time.NewTimer(p.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	p.mu.Lock()
	err := p.err
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return p.bridge, nil
}

// Connects returns how many times Connect was called.
func (p *Provider) Connects() int {
	return int(p.connects.Load())
}

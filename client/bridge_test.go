package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"bridge-rpc/broadcast"
	"bridge-rpc/hostbridge"
	"bridge-rpc/logger"
	"bridge-rpc/message"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type VersionArgs struct{}

type SayHiArgs struct {
	Msg string `json:"msg"`
}

type Greeting struct {
	Reply string `json:"reply"`
}

type AddArgs struct {
	A int `json:"a"`
	B int `json:"b"`
}

func newHost(t testing.TB) *hostbridge.Bridge {
	t.Helper()
	b := hostbridge.New(logger.Nop())
	require.NoError(t, b.Bind("getVersion", func(args *VersionArgs, reply *string) error {
		*reply = "1.2.3"
		return nil
	}))
	require.NoError(t, b.Bind("say_hi", func(args *SayHiArgs, reply *Greeting) error {
		reply.Reply = "python say: " + args.Msg
		return nil
	}))
	require.NoError(t, b.Bind("add", func(args *AddArgs, reply *int) error {
		*reply = args.A + args.B
		return nil
	}))
	t.Cleanup(b.Close)
	return b
}

func newBridgedClient(t testing.TB, p *hostbridge.Provider) *Client {
	t.Helper()
	c := New(p, WithLogger(logger.Nop()), WithConfig(testConfig(10*time.Millisecond, 20)))
	t.Cleanup(func() { c.Close() })
	return c
}

// Concurrent calls trigger a single connect and each gets its own result.
func TestConcurrentCallsShareOneConnect(t *testing.T) {
	host := newHost(t)
	p := host.Provider(30 * time.Millisecond)
	c := newBridgedClient(t, p)

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 20; i++ {
		g.Go(func() error {
			result, err := c.Invoke(ctx, "add", AddArgs{A: i, B: 1})
			if err != nil {
				return err
			}
			var sum int
			if err := result.Decode(&sum); err != nil {
				return err
			}
			if sum != i+1 {
				return fmt.Errorf("add(%d, 1) = %d", i, sum)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, 1, p.Connects())
	assert.Equal(t, 1, host.Subscribers())
	assert.Equal(t, 0, c.PendingCalls())
}

func TestSayHiRoundTrip(t *testing.T) {
	host := newHost(t)
	c := newBridgedClient(t, host.Provider(0))

	result, err := c.Invoke(context.Background(), "say_hi", SayHiArgs{Msg: "hello"})
	require.NoError(t, err)

	var g Greeting
	require.NoError(t, result.Decode(&g))
	assert.Equal(t, "python say: hello", g.Reply)
}

func TestUnknownFunctionAnswersNull(t *testing.T) {
	host := newHost(t)
	c := newBridgedClient(t, host.Provider(0))

	result, err := c.Invoke(context.Background(), "nope", nil)
	require.NoError(t, err)
	assert.True(t, result.IsNull())
}

func TestInvokeSyncThroughBridge(t *testing.T) {
	host := newHost(t)
	c := newBridgedClient(t, host.Provider(0))

	got := make(chan message.Value, 1)
	c.InvokeSync(context.Background(), "getVersion", nil, func(result message.Value, err error) {
		assert.NoError(t, err)
		got <- result
	})

	select {
	case result := <-got:
		assert.Equal(t, `"1.2.3"`, result.String())
	case <-time.After(time.Second):
		t.Fatal("no result")
	}
	assert.Equal(t, 0, c.PendingCalls())
}

func TestBroadcastsArriveInOrder(t *testing.T) {
	host := newHost(t)
	c := newBridgedClient(t, host.Provider(0))
	require.NoError(t, c.Connect(context.Background()))

	var mu sync.Mutex
	var got []string
	all := make(chan struct{})
	c.Broadcasts().Subscribe(broadcast.KindMessage, func(e broadcast.Event) {
		var body struct {
			Msg string `json:"msg"`
		}
		assert.NoError(t, e.Payload.Decode(&body))
		mu.Lock()
		got = append(got, body.Msg)
		if len(got) == 2 {
			close(all)
		}
		mu.Unlock()
	})

	typed := make(chan broadcast.Event, 1)
	c.Broadcasts().Subscribe("progress", func(e broadcast.Event) { typed <- e })

	require.NoError(t, host.SendMessage(map[string]string{"msg": "hello javascript"}))
	require.NoError(t, host.SendMessage(map[string]string{"msg": "goodbye"}))
	require.NoError(t, host.SendMessage(map[string]any{"type": "progress", "percent": 50}))

	select {
	case <-all:
	case <-time.After(time.Second):
		t.Fatal("broadcasts not delivered")
	}
	mu.Lock()
	assert.Equal(t, []string{"hello javascript", "goodbye"}, got)
	mu.Unlock()

	e := <-typed
	assert.Equal(t, broadcast.Kind("progress"), e.Kind)
}

// A call made while connecting waits for the channel and is then sent.
func TestCallDuringConnectingWaitsForReadiness(t *testing.T) {
	host := newHost(t)
	p := host.Provider(40 * time.Millisecond)
	c := newBridgedClient(t, p)

	g := new(errgroup.Group)
	g.Go(func() error {
		_, err := c.Invoke(context.Background(), "getVersion", nil)
		return err
	})
	require.Eventually(t, func() bool { return c.State() == Connecting }, time.Second, time.Millisecond)

	result, err := c.Invoke(context.Background(), "say_hi", SayHiArgs{Msg: "late"})
	require.NoError(t, err)
	assert.Contains(t, result.String(), "python say: late")

	require.NoError(t, g.Wait())
	assert.Equal(t, 1, p.Connects())
}

func TestFailedConnectIsRetriedByNextCall(t *testing.T) {
	host := newHost(t)
	p := host.Provider(5 * time.Millisecond)
	c := newBridgedClient(t, p)

	unavailable := errors.New("qt object not exported")
	p.Fail(unavailable)

	g := new(errgroup.Group)
	for i := 0; i < 3; i++ {
		g.Go(func() error {
			_, err := c.Invoke(context.Background(), "getVersion", nil)
			if !errors.Is(err, unavailable) {
				return fmt.Errorf("want %v, got %v", unavailable, err)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, Disconnected, c.State())

	p.Fail(nil)
	result, err := c.Invoke(context.Background(), "getVersion", nil)
	require.NoError(t, err)
	assert.Equal(t, `"1.2.3"`, result.String())
	assert.GreaterOrEqual(t, p.Connects(), 2)
}

func TestCallTimeoutDoesNotWithdrawCall(t *testing.T) {
	host := newHost(t)
	release := make(chan struct{})
	require.NoError(t, host.Bind("slow", func(args *VersionArgs, reply *string) error {
		<-release
		*reply = "done"
		return nil
	}))

	cfg := testConfig(10*time.Millisecond, 3)
	cfg.CallTimeout = 30 * time.Millisecond
	c := New(host.Provider(0), WithLogger(logger.Nop()), WithConfig(cfg))
	t.Cleanup(func() { c.Close() })

	_, err := c.Invoke(context.Background(), "slow", nil)
	require.Error(t, err)
	assert.Equal(t, 1, c.PendingCalls())

	close(release)
	require.Eventually(t, func() bool { return c.PendingCalls() == 0 }, time.Second, time.Millisecond)
}

// ---- Benchmark ----

func setupBench(b *testing.B) *Client {
	host := newHost(b)
	c := newBridgedClient(b, host.Provider(0))
	if err := c.Connect(context.Background()); err != nil {
		b.Fatal(err)
	}
	return c
}

// Serial calls from one goroutine.
func BenchmarkSerialInvoke(b *testing.B) {
	c := setupBench(b)
	ctx := context.Background()
	args := AddArgs{A: 1, B: 2}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := c.Invoke(ctx, "add", args); err != nil {
			b.Fatal(err)
		}
	}
}

// Parallel calls from many goroutines.
func BenchmarkParallelInvoke(b *testing.B) {
	c := setupBench(b)
	ctx := context.Background()
	args := AddArgs{A: 1, B: 2}
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := c.Invoke(ctx, "add", args); err != nil {
				b.Error(err)
				return
			}
		}
	})
}

package broadcast

import (
	"testing"

	"bridge-rpc/message"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, Kind("file_drop"), KindOf(message.Value(`{"type":"file_drop","files":["a.txt"]}`)))
	assert.Equal(t, KindMessage, KindOf(message.Value(`{"msg":"hello javascript"}`)))
	assert.Equal(t, KindMessage, KindOf(message.Value(`{"type":42}`)))
	assert.Equal(t, KindMessage, KindOf(message.Value(`{"type":""}`)))
	assert.Equal(t, KindMessage, KindOf(message.Value(`"plain string"`)))
	assert.Equal(t, KindMessage, KindOf(nil))
}

func TestPublishRoutesByKind(t *testing.T) {
	bus := NewBus()

	var drops, messages, all []string
	bus.Subscribe("file_drop", func(e Event) { drops = append(drops, e.Payload.String()) })
	bus.Subscribe(KindMessage, func(e Event) { messages = append(messages, e.Payload.String()) })
	bus.SubscribeAll(func(e Event) { all = append(all, string(e.Kind)) })

	n := bus.Publish(message.Value(`{"type":"file_drop"}`))
	assert.Equal(t, 2, n)
	n = bus.Publish(message.Value(`{"msg":"hi"}`))
	assert.Equal(t, 2, n)

	assert.Equal(t, []string{`{"type":"file_drop"}`}, drops)
	assert.Equal(t, []string{`{"msg":"hi"}`}, messages)
	assert.Equal(t, []string{"file_drop", "message"}, all)
}

func TestPublishPreservesArrivalOrder(t *testing.T) {
	bus := NewBus()

	var got []string
	bus.SubscribeAll(func(e Event) { got = append(got, e.Payload.String()) })

	bus.Publish(message.Value(`1`))
	bus.Publish(message.Value(`2`))
	bus.Publish(message.Value(`3`))

	assert.Equal(t, []string{"1", "2", "3"}, got)
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus()

	calls := 0
	sub := bus.Subscribe(KindMessage, func(Event) { calls++ })
	wild := bus.SubscribeAll(func(Event) { calls++ })
	require.Equal(t, 2, bus.Len())

	assert.True(t, bus.Unsubscribe(sub.ID))
	assert.False(t, bus.Unsubscribe(sub.ID))
	assert.Equal(t, 1, bus.Len())

	bus.Publish(message.Value(`"x"`))
	assert.Equal(t, 1, calls)

	assert.True(t, bus.Unsubscribe(wild.ID))
	assert.Equal(t, 0, bus.Publish(message.Value(`"y"`)))
	assert.Equal(t, 1, calls)
}

func TestPanickingHandlerDoesNotStopDelivery(t *testing.T) {
	bus := NewBus()

	var panicked []Subscription
	bus.OnPanic = func(sub Subscription, _ any) { panicked = append(panicked, sub) }

	bad := bus.SubscribeAll(func(Event) { panic("boom") })
	delivered := false
	bus.SubscribeAll(func(Event) { delivered = true })

	assert.NotPanics(t, func() { bus.Publish(message.Value(`{}`)) })
	assert.True(t, delivered)
	require.Len(t, panicked, 1)
	assert.Equal(t, bad.ID, panicked[0].ID)
}

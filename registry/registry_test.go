package registry

import (
	"sync"
	"testing"

	"bridge-rpc/message"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(message.Value, error) {}

func TestRegisterAllocatesIncreasingIDs(t *testing.T) {
	r := New()

	prev := int64(0)
	for i := 0; i < 10; i++ {
		call := r.Register("ping", noop)
		assert.Greater(t, call.ID, prev)
		prev = call.ID
	}

	assert.Equal(t, 10, r.Len())
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, r.IDs())
}

func TestResolveIsOneShot(t *testing.T) {
	r := New()
	call := r.Register("getVersion", noop)

	got, ok := r.Resolve(call.ID)
	require.True(t, ok)
	assert.Equal(t, "getVersion", got.Method)
	assert.Equal(t, 0, r.Len())

	_, ok = r.Resolve(call.ID)
	assert.False(t, ok, "second resolve of the same id must miss")
}

func TestIDsAreNeverReused(t *testing.T) {
	r := New()
	first := r.Register("a", noop)
	r.Resolve(first.ID)

	second := r.Register("b", noop)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Greater(t, second.ID, first.ID)
}

func TestIssued(t *testing.T) {
	r := New()
	assert.False(t, r.Issued(1))

	call := r.Register("a", noop)
	assert.True(t, r.Issued(call.ID))

	r.Resolve(call.ID)
	assert.True(t, r.Issued(call.ID), "resolved ids stay issued")
	assert.False(t, r.Issued(call.ID+1))
	assert.False(t, r.Issued(0))
	assert.False(t, r.Issued(-1))
}

func TestRemove(t *testing.T) {
	r := New()
	call := r.Register("a", noop)
	r.Remove(call.ID)

	_, ok := r.Resolve(call.ID)
	assert.False(t, ok)
	assert.Empty(t, r.IDs())
}

// 并发注册时 id 必须两两不同
func TestRegisterConcurrent(t *testing.T) {
	r := New()

	var wg sync.WaitGroup
	ids := make(chan int64, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- r.Register("ping", noop).ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		require.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, 100)
	assert.Equal(t, 100, r.Len())
}

// Package registry tracks calls that have been sent to the host and are waiting for a response.
//
// Each call gets an id from a single counter that only ever moves forward, so ids are unique
// for the lifetime of a Registry. The entry is stored before the caller sends the message,
// which means a response racing the send can always be matched.
//
//	Register(getVersion) → id=1 ──post_message(1, ...)──→ host
//	                                                        │
//	Resolve(1)  ←──────────── {"callback_id":1,...} ────────┘
package registry

import (
	"sort"
	"sync"
	"sync/atomic"

	"bridge-rpc/message"
)

// Registry is a goroutine-safe map of pending calls keyed by call id.
type Registry struct {
	seq     atomic.Int64 // Last id handed out; the first id is 1
	pending sync.Map     // map[int64]*message.PendingCall
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{}
}

// Register allocates the next id and stores the pending call under it.
func (r *Registry) Register(method string, cb message.Callback) *message.PendingCall {
	call := &message.PendingCall{
		ID:       r.seq.Add(1),
		Method:   method,
		Callback: cb,
	}
	r.pending.Store(call.ID, call)
	return call
}

// Resolve removes and returns the pending call for id. A second Resolve for the same id
// misses, which is what makes delivery one-shot.
func (r *Registry) Resolve(id int64) (*message.PendingCall, bool) {
	v, ok := r.pending.LoadAndDelete(id)
	if !ok {
		return nil, false
	}
	return v.(*message.PendingCall), true
}

// Issued reports whether id was handed out by Register, whether or not it is still pending.
func (r *Registry) Issued(id int64) bool {
	return id >= 1 && id <= r.seq.Load()
}

// Remove drops id without delivering anything. Used when the send itself failed.
func (r *Registry) Remove(id int64) {
	r.pending.Delete(id)
}

// Len returns the number of pending calls.
func (r *Registry) Len() int {
	n := 0
	r.pending.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// IDs returns the pending ids in ascending order.
func (r *Registry) IDs() []int64 {
	ids := make([]int64, 0)
	r.pending.Range(func(key, _ any) bool {
		ids = append(ids, key.(int64))
		return true
	})
	sort.Slice(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	})
	return ids
}

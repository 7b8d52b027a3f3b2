// Package message defines the values exchanged between the RPC client and the host channel.
//
// Outbound calls are described by Call. Every inbound string from the host decodes into an
// Inbound envelope, which is either a response to a PendingCall (its CallbackID is registered)
// or a broadcast to the UI (no CallbackID, or one the client never issued).
package message

import (
	"bytes"
	"encoding/json"
	"errors"
)

// BroadcastID is the callback id the host stamps on unsolicited messages.
const BroadcastID int64 = -1

// Value is an arbitrary JSON value as received from or sent to the host.
// The zero Value is JSON null.
type Value []byte

var null = []byte("null")

// NewValue marshals v into a Value.
func NewValue(v any) (Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Value(b), nil
}

// Decode unmarshals the value into out.
func (v Value) Decode(out any) error {
	if len(v) == 0 {
		return json.Unmarshal(null, out)
	}
	return json.Unmarshal(v, out)
}

// IsNull reports whether the value is absent or JSON null.
func (v Value) IsNull() bool {
	trimmed := bytes.TrimSpace(v)
	return len(trimmed) == 0 || bytes.Equal(trimmed, null)
}

func (v Value) String() string {
	if len(v) == 0 {
		return string(null)
	}
	return string(v)
}

// MarshalJSON keeps the raw bytes so a Value embeds verbatim.
func (v Value) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return null, nil
	}
	return v, nil
}

// UnmarshalJSON stores a copy of data.
func (v *Value) UnmarshalJSON(data []byte) error {
	if v == nil {
		return errors.New("message.Value: UnmarshalJSON on nil pointer")
	}
	*v = append((*v)[0:0], data...)
	return nil
}

// Callback receives the outcome of a single call. Exactly one of result or err is meaningful.
type Callback func(result Value, err error)

// Call is one outbound invocation as it travels through the middleware chain.
type Call struct {
	Method string
	Params any
}

// PendingCall is a dispatched call awaiting its response.
//
// It is created by the registry immediately before the send is issued and removed the instant
// a response carrying ID arrives.
type PendingCall struct {
	ID       int64
	Method   string
	Callback Callback
}

// Inbound is the envelope of every message the host emits:
//
//	{"callback_id": 7, "result": ...}
//
// CallbackID is nil when the field is absent.
type Inbound struct {
	CallbackID *int64 `json:"callback_id,omitempty"`
	Result     Value  `json:"result"`
}

// ID returns the callback id and whether one was present.
func (m *Inbound) ID() (int64, bool) {
	if m.CallbackID == nil {
		return 0, false
	}
	return *m.CallbackID, true
}

// NewResponse builds the envelope the host emits for a completed call.
func NewResponse(id int64, result Value) *Inbound {
	return &Inbound{CallbackID: &id, Result: result}
}

// NewBroadcast builds the envelope the host emits for an unsolicited message.
func NewBroadcast(result Value) *Inbound {
	id := BroadcastID
	return &Inbound{CallbackID: &id, Result: result}
}

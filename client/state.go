package client

import "fmt"

// State is the connection state of a Client.
//
//	Disconnected ──first call / Connect──→ Connecting ──provider yields channel──→ Connected
//	      ↑                                    │
//	      └──────────provider error────────────┘
//
// Connected is terminal.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

package client

import (
	"bridge-rpc/codec"
)

// handleMessage is subscribed to the channel's message stream and routes each message:
//
//   - callback_id pending                → resolve that call and drop the entry
//   - callback_id issued, already settled → stale duplicate, dropped
//   - absent, -1 or never issued         → broadcast
//
// Nothing escapes it: bad input is logged and dropped, and a panicking callback is logged.
func (c *Client) handleMessage(raw string) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Msg("inbound message handler panicked")
		}
	}()

	msg, err := codec.DecodeInbound(c.codec, raw)
	if err != nil {
		c.log.Error().Err(err).Int("size", len(raw)).Msg("discarding inbound message")
		return
	}

	if id, ok := msg.ID(); ok {
		if call, found := c.pending.Resolve(id); found {
			c.log.Debug().
				Str("method", call.Method).
				Int64("call_id", call.ID).
				Msg("response received")
			call.Callback(msg.Result, nil)
			return
		}
		if c.pending.Issued(id) {
			c.log.Debug().Int64("call_id", id).Msg("ignoring response for settled call")
			return
		}
	}

	delivered := c.bus.Publish(msg.Result)
	c.log.Debug().Int("subscribers", delivered).Msg("broadcast received")
}

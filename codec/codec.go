// Package codec is the single place where call parameters and host messages are
// serialized. The host channel speaks strings, so everything crossing it goes through
// a Codec first.
package codec

import (
	"fmt"

	"bridge-rpc/message"
)

type CodecType byte

const (
	CodecTypeJSON CodecType = 0
)

type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
	Type() CodecType
}

// GetCodec returns the codec for codecType, falling back to JSON.
func GetCodec(codecType CodecType) Codec {
	switch codecType {
	case CodecTypeJSON:
		return &JSONCodec{}
	default:
		return &JSONCodec{}
	}
}

// EncodeParams renders call parameters as the payload string handed to the channel.
// Nil params become an empty object, which is what the host expects for "no arguments".
func EncodeParams(c Codec, params any) (string, error) {
	if params == nil {
		return "{}", nil
	}
	data, err := c.Encode(params)
	if err != nil {
		return "", fmt.Errorf("encode params: %w", err)
	}
	return string(data), nil
}

// DecodeInbound parses one raw message from the host.
//
// An empty string yields ErrEmptyMessage. Anything that is not a JSON object (including
// a bare null) yields ErrMalformedMessage.
func DecodeInbound(c Codec, raw string) (*message.Inbound, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyMessage
	}

	var msg *message.Inbound
	if err := c.Decode([]byte(raw), &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if msg == nil {
		return nil, ErrMalformedMessage
	}
	return msg, nil
}

// EncodeInbound renders an envelope the way the host emits it.
func EncodeInbound(c Codec, msg *message.Inbound) (string, error) {
	data, err := c.Encode(msg)
	if err != nil {
		return "", fmt.Errorf("encode inbound: %w", err)
	}
	return string(data), nil
}

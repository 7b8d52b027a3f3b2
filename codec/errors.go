package codec

import "errors"

var (
	// ErrEmptyMessage is returned for a zero-length inbound message.
	ErrEmptyMessage = errors.New("empty message")
	// ErrMalformedMessage is returned when an inbound message is not a JSON object.
	ErrMalformedMessage = errors.New("malformed message")
)

package config

import "errors"

var (
	// ErrInvalidPollConfig indicates an unusable readiness poll policy.
	ErrInvalidPollConfig = errors.New("invalid poll configuration")
	// ErrInvalidTimeoutConfig indicates a negative timeout.
	ErrInvalidTimeoutConfig = errors.New("invalid timeout configuration")
	// ErrInvalidRateConfig indicates a negative rate or a rate without burst.
	ErrInvalidRateConfig = errors.New("invalid rate limit configuration")
)

// Package config loads the bridge client settings.
//
// Values come from built-in defaults, overridden by BRIDGE_* environment variables
// (parsed with caarlos0/env). The merged result is validated before use.
package config

import (
	"time"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "BRIDGE_"

// ClientConfig holds everything the RPC client can be tuned with.
type ClientConfig struct {
	// Poll controls how a call arriving while a connection attempt is underway waits for
	// the channel to become ready.
	Poll Poll `envPrefix:"POLL_"`

	// ConnectTimeout bounds a single connection attempt. Zero means wait forever.
	// Env: BRIDGE_CONNECT_TIMEOUT
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT"`

	// CallTimeout bounds how long Invoke waits for a response. It does not withdraw the
	// call. Zero means wait forever.
	// Env: BRIDGE_CALL_TIMEOUT
	CallTimeout time.Duration `env:"CALL_TIMEOUT"`

	// RateLimit is the sustained number of calls per second. Zero disables limiting.
	// Env: BRIDGE_RATE_LIMIT
	RateLimit float64 `env:"RATE_LIMIT"`

	// RateBurst is the token bucket size used with RateLimit.
	// Env: BRIDGE_RATE_BURST
	RateBurst int `env:"RATE_BURST"`

	// LogLevel is a zerolog level name ("debug", "info", "warn", ...).
	// Env: BRIDGE_LOG_LEVEL
	LogLevel string `env:"LOG_LEVEL"`
}

// Poll is the readiness poll policy.
type Poll struct {
	// Delay is the wait before the first readiness check and the base of the backoff.
	// Env: BRIDGE_POLL_DELAY
	Delay time.Duration `env:"DELAY"`

	// MaxAttempts is the number of readiness checks before the call is dropped.
	// 1 reproduces a single one-shot check.
	// Env: BRIDGE_POLL_MAX_ATTEMPTS
	MaxAttempts int `env:"MAX_ATTEMPTS"`

	// MaxDelay caps the backoff between checks.
	// Env: BRIDGE_POLL_MAX_DELAY
	MaxDelay time.Duration `env:"MAX_DELAY"`
}

// Default returns the built-in settings.
func Default() *ClientConfig {
	return &ClientConfig{
		Poll: Poll{
			Delay:       300 * time.Millisecond,
			MaxAttempts: 5,
			MaxDelay:    5 * time.Second,
		},
		RateBurst: 1,
		LogLevel:  "info",
	}
}

// Load returns the defaults overridden by the environment, validated.
func Load() (*ClientConfig, error) {
	return newConfigBuilder().
		withDefaults().
		withEnv().
		build()
}

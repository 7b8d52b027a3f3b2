package config

import "fmt"

// Validate reports the first setting the client cannot run with.
func (cfg *ClientConfig) Validate() error {
	if cfg.Poll.Delay <= 0 {
		return fmt.Errorf("%w: delay must be positive, got %s", ErrInvalidPollConfig, cfg.Poll.Delay)
	}
	if cfg.Poll.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be at least 1, got %d", ErrInvalidPollConfig, cfg.Poll.MaxAttempts)
	}
	if cfg.Poll.MaxDelay < cfg.Poll.Delay {
		return fmt.Errorf("%w: max delay %s is below delay %s", ErrInvalidPollConfig, cfg.Poll.MaxDelay, cfg.Poll.Delay)
	}
	if cfg.ConnectTimeout < 0 || cfg.CallTimeout < 0 {
		return ErrInvalidTimeoutConfig
	}
	if cfg.RateLimit < 0 {
		return fmt.Errorf("%w: rate must not be negative", ErrInvalidRateConfig)
	}
	if cfg.RateLimit > 0 && cfg.RateBurst < 1 {
		return fmt.Errorf("%w: burst must be at least 1", ErrInvalidRateConfig)
	}
	return nil
}

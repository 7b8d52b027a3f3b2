package config

import (
	"errors"
	"fmt"

	"dario.cat/mergo"
)

// configBuilder layers settings: defaults, then the environment parsed on top of them, then
// explicit overrides. The environment is parsed onto the defaults in place so a variable set
// to zero reaches Validate instead of being mistaken for "unset".
type configBuilder struct {
	config    *ClientConfig
	overrides []*ClientConfig
	err       error
}

func newConfigBuilder() *configBuilder {
	return &configBuilder{
		config: new(ClientConfig),
	}
}

// build applies the overrides in order (non-zero fields win) and validates the result.
func (b *configBuilder) build() (*ClientConfig, error) {
	if b.err != nil {
		return nil, fmt.Errorf("error occurred during building config: %w", b.err)
	}

	config := b.config
	for _, cfg := range b.overrides {
		if err := mergo.Merge(config, cfg, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("error merging configs: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (b *configBuilder) withDefaults() *configBuilder {
	b.config = Default()
	return b
}

// withEnv sets the fields whose BRIDGE_* variable is present and leaves the rest alone.
func (b *configBuilder) withEnv() *configBuilder {
	if err := parseEnv(b.config); err != nil {
		b.err = errors.Join(b.err, err)
	}
	return b
}

func (b *configBuilder) with(cfg *ClientConfig) *configBuilder {
	b.overrides = append(b.overrides, cfg)
	return b
}

package main

import (
	"os"
	"strings"
	"sync"
	"time"

	"bridge-rpc/client"
	"bridge-rpc/config"
	"bridge-rpc/hostbridge"
	"bridge-rpc/logger"
)

type commandContext struct {
	readyAfter *time.Duration
	logLevel   *string

	configOnce sync.Once
	config     *config.ClientConfig
	configErr  error
}

func newCommandContext(readyAfter *time.Duration, logLevel *string) *commandContext {
	return &commandContext{
		readyAfter: readyAfter,
		logLevel:   logLevel,
	}
}

func (c *commandContext) ensureConfig() (*config.ClientConfig, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevel != nil {
			if level := strings.TrimSpace(*c.logLevel); level != "" {
				cfg.LogLevel = level
			}
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// withClient starts a loopback host and a client bound to it, runs fn and tears both down.
func (c *commandContext) withClient(fn func(cli *client.Client, host *hostbridge.Bridge) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	log := logger.New(os.Stderr, "bridgedemo").WithLevel(cfg.LogLevel)
	host, err := newDemoHost(log)
	if err != nil {
		return err
	}
	defer host.Close()

	var readyAfter time.Duration
	if c.readyAfter != nil {
		readyAfter = *c.readyAfter
	}

	cli := client.New(host.Provider(readyAfter),
		client.WithConfig(cfg),
		client.WithLogger(log),
	)
	defer cli.Close()

	return fn(cli, host)
}

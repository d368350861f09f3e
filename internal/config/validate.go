package config

import (
	"errors"
	"fmt"
	"strings"

	"remote-support-backend/internal/logger"
	"remote-support-backend/internal/room"
)

// Validate checks values shared by both binaries.
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if _, err := room.ParseHostPolicy(c.Relay.HostPolicy); err != nil {
		return fmt.Errorf("relay.host_policy: %w", err)
	}
	if !strings.HasPrefix(c.HTTP.APIPrefix, "/") {
		return fmt.Errorf("http.api_prefix %q must start with /", c.HTTP.APIPrefix)
	}
	if !strings.HasPrefix(c.HTTP.WSPrefix, "/") {
		return fmt.Errorf("http.ws_prefix %q must start with /", c.HTTP.WSPrefix)
	}

	if c.Relay.SweepInterval < 0 {
		return errors.New("relay.sweep_interval must be positive")
	}
	if c.Relay.InactivityThreshold < 0 {
		return errors.New("relay.inactivity_threshold must be positive")
	}
	if c.Relay.VolatileBuffer < 1 {
		return errors.New("relay.volatile_buffer must be >= 1")
	}
	if c.Relay.MaxMessageSize < 1 {
		return errors.New("relay.max_message_size must be >= 1")
	}
	if c.Relay.PingTimeout >= c.Relay.PingInterval {
		return fmt.Errorf("relay.ping_timeout (%s) must be less than relay.ping_interval (%s)",
			c.Relay.PingTimeout, c.Relay.PingInterval)
	}
	if c.Relay.RequireToken && c.Auth.TokenSecret == "" {
		return errors.New("auth.token_secret is required when relay.require_token is set")
	}

	if c.Redis.DB < 0 {
		return errors.New("redis.db must be >= 0")
	}

	if c.Queue.Size < 1 {
		return errors.New("queue.size must be >= 1")
	}
	if c.Queue.Workers < 1 {
		return errors.New("queue.workers must be >= 1")
	}
	return nil
}

// ValidateAPI adds the checks only the api-server needs.
func (c *Config) ValidateAPI() error {
	if c.Dynamo.Region == "" {
		return errors.New("aws.region is required")
	}
	if c.Auth.TokenSecret == "" {
		return errors.New("auth.token_secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	return nil
}

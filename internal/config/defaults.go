package config

import (
	"time"

	"remote-support-backend/internal/room"
)

// Default values for optional configuration fields.
const (
	DefaultLogLevel            = "info"
	DefaultAPIListenAddr       = ":5002"
	DefaultRelayListenAddr     = ":5001"
	DefaultAPIPrefix           = "/api"
	DefaultWSPrefix            = "/ws"
	DefaultSweepInterval       = room.DefaultSweepInterval
	DefaultInactivityThreshold = room.DefaultInactivityThreshold
	DefaultVolatileBuffer      = 8
	DefaultMaxMessageSize      = 10 << 20
	DefaultPingInterval        = 10 * time.Second
	DefaultPingTimeout         = 5 * time.Second
	DefaultHostPolicy          = string(room.PolicyExplicitRole)
	DefaultRedisKeyPrefix      = "relay"
	DefaultHostsTable          = "Hosts"
	DefaultTokenTTL            = 12 * time.Hour
	DefaultQueueSize           = 64
	DefaultQueueWorkers        = 16
)

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}

	if c.HTTP.APIListenAddr == "" {
		c.HTTP.APIListenAddr = DefaultAPIListenAddr
	}
	if c.HTTP.RelayListenAddr == "" {
		c.HTTP.RelayListenAddr = DefaultRelayListenAddr
	}
	if c.HTTP.APIPrefix == "" {
		c.HTTP.APIPrefix = DefaultAPIPrefix
	}
	if c.HTTP.WSPrefix == "" {
		c.HTTP.WSPrefix = DefaultWSPrefix
	}

	// Relay
	if c.Relay.SweepInterval == 0 {
		c.Relay.SweepInterval = DefaultSweepInterval
	}
	if c.Relay.InactivityThreshold == 0 {
		c.Relay.InactivityThreshold = DefaultInactivityThreshold
	}
	if c.Relay.VolatileBuffer == 0 {
		c.Relay.VolatileBuffer = DefaultVolatileBuffer
	}
	if c.Relay.MaxMessageSize == 0 {
		c.Relay.MaxMessageSize = DefaultMaxMessageSize
	}
	if c.Relay.PingInterval == 0 {
		c.Relay.PingInterval = DefaultPingInterval
	}
	if c.Relay.PingTimeout == 0 {
		c.Relay.PingTimeout = DefaultPingTimeout
	}
	if c.Relay.HostPolicy == "" {
		c.Relay.HostPolicy = DefaultHostPolicy
	}
	if len(c.Relay.AllowedOrigins) == 0 {
		c.Relay.AllowedOrigins = []string{"*"}
	}

	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if c.Dynamo.HostsTable == "" {
		c.Dynamo.HostsTable = DefaultHostsTable
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = DefaultTokenTTL
	}

	if c.Queue.Size == 0 {
		c.Queue.Size = DefaultQueueSize
	}
	if c.Queue.Workers == 0 {
		c.Queue.Workers = DefaultQueueWorkers
	}
}

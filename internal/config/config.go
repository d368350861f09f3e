package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"remote-support-backend/internal/broadcast"
	"remote-support-backend/internal/env"
	"remote-support-backend/internal/relay"
	"remote-support-backend/internal/room"

	"github.com/joho/godotenv"
)

// Config is the process configuration shared by api-server and relay-server.
type Config struct {
	Log    LogConfig
	HTTP   HTTPConfig
	Relay  RelayConfig
	Redis  RedisConfig
	Dynamo DynamoConfig
	Auth   AuthConfig
	Queue  QueueConfig
}

type LogConfig struct {
	Level string
}

type HTTPConfig struct {
	APIListenAddr   string
	RelayListenAddr string
	// APIPrefix and WSPrefix are mount points without a trailing slash.
	APIPrefix string
	WSPrefix  string
}

type RelayConfig struct {
	SweepInterval       time.Duration
	InactivityThreshold time.Duration
	VolatileBuffer      int
	MaxMessageSize      int64
	PingInterval        time.Duration
	PingTimeout         time.Duration
	HostPolicy          string
	RequireToken        bool
	AllowedOrigins      []string
}

type RedisConfig struct {
	URL       string
	Password  string
	DB        int
	KeyPrefix string
}

// Enabled reports whether cross-process broadcast is configured.
func (r RedisConfig) Enabled() bool { return r.URL != "" }

type DynamoConfig struct {
	Region     string
	Endpoint   string
	HostsTable string
}

type AuthConfig struct {
	TokenSecret string
	TokenTTL    time.Duration
}

type QueueConfig struct {
	Size    int
	Workers int
}

// Load reads an optional .env file, then the process environment, applies
// defaults and validates the result.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg, err := fromEnv()
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func fromEnv() (*Config, error) {
	cfg := &Config{
		Log: LogConfig{Level: env.Get(env.LogLevel)},
		HTTP: HTTPConfig{
			APIListenAddr:   env.Get(env.APIListenAddr),
			RelayListenAddr: env.Get(env.RelayListenAddr),
			APIPrefix:       strings.TrimRight(strings.TrimSpace(env.Get(env.APIPrefix)), "/"),
			WSPrefix:        strings.TrimRight(strings.TrimSpace(env.Get(env.RelayWSPrefix)), "/"),
		},
		Relay: RelayConfig{
			HostPolicy:     env.Get(env.RelayHostPolicy),
			AllowedOrigins: env.GetList(env.RelayAllowedOrigins, nil),
		},
		Redis: RedisConfig{
			URL:       env.Get(env.RedisURL),
			Password:  env.Get(env.RedisPass),
			KeyPrefix: env.Get(env.RedisKeyPrefix),
		},
		Dynamo: DynamoConfig{
			Region:     env.Get(env.AWSRegion),
			Endpoint:   env.Get(env.DynamoDBEndpoint),
			HostsTable: env.Get(env.HostsTable),
		},
		Auth: AuthConfig{TokenSecret: env.Get(env.AuthTokenSecret)},
	}

	var err error
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{env.RelaySweepInterval, &cfg.Relay.SweepInterval},
		{env.RelayInactivityThreshold, &cfg.Relay.InactivityThreshold},
		{env.RelayPingInterval, &cfg.Relay.PingInterval},
		{env.RelayPingTimeout, &cfg.Relay.PingTimeout},
		{env.AuthTokenTTL, &cfg.Auth.TokenTTL},
	}
	for _, d := range durations {
		if *d.dst, err = env.GetDuration(d.key, 0); err != nil {
			return nil, fmt.Errorf("%s: %w", d.key, err)
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{env.RelayVolatileBuffer, &cfg.Relay.VolatileBuffer},
		{env.RedisDB, &cfg.Redis.DB},
		{env.QueueSize, &cfg.Queue.Size},
		{env.QueueWorkers, &cfg.Queue.Workers},
	}
	for _, i := range ints {
		if *i.dst, err = env.GetInt(i.key, 0); err != nil {
			return nil, fmt.Errorf("%s: %w", i.key, err)
		}
	}

	maxSize, err := env.GetInt(env.RelayMaxMessageSize, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", env.RelayMaxMessageSize, err)
	}
	cfg.Relay.MaxMessageSize = int64(maxSize)

	if cfg.Relay.RequireToken, err = env.GetBool(env.RelayRequireToken, false); err != nil {
		return nil, fmt.Errorf("%s: %w", env.RelayRequireToken, err)
	}
	return cfg, nil
}

// RelayOptions converts the relay section into relay.Config.
func (c *Config) RelayOptions() relay.Config {
	policy, _ := room.ParseHostPolicy(c.Relay.HostPolicy)
	return relay.Config{
		HostPolicy:          policy,
		SweepInterval:       c.Relay.SweepInterval,
		InactivityThreshold: c.Relay.InactivityThreshold,
		KeyPrefix:           c.Redis.KeyPrefix,
		Handler: relay.HandlerConfig{
			AllowedOrigins: c.Relay.AllowedOrigins,
			Client: relay.ClientOptions{
				PingInterval:   c.Relay.PingInterval,
				PingTimeout:    c.Relay.PingTimeout,
				MaxMessageSize: c.Relay.MaxMessageSize,
				VolatileBuffer: c.Relay.VolatileBuffer,
			},
		},
	}
}

func (c *Config) RedisOptions() broadcast.RedisOptions {
	return broadcast.RedisOptions{
		Addr:     c.Redis.URL,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	}
}

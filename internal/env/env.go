package env

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	LogLevel                 = "LOG_LEVEL"
	APIListenAddr            = "API_LISTEN_ADDR"
	RelayListenAddr          = "RELAY_LISTEN_ADDR"
	APIPrefix                = "API_PREFIX"
	RelayWSPrefix            = "RELAY_WS_PREFIX"
	RelaySweepInterval       = "RELAY_SWEEP_INTERVAL"
	RelayInactivityThreshold = "RELAY_INACTIVITY_THRESHOLD"
	RelayVolatileBuffer      = "RELAY_VOLATILE_BUFFER"
	RelayMaxMessageSize      = "RELAY_MAX_MESSAGE_SIZE"
	RelayPingInterval        = "RELAY_PING_INTERVAL"
	RelayPingTimeout         = "RELAY_PING_TIMEOUT"
	RelayHostPolicy          = "RELAY_HOST_POLICY"
	RelayRequireToken        = "RELAY_REQUIRE_TOKEN"
	RelayAllowedOrigins      = "RELAY_ALLOWED_ORIGINS"
	RedisURL                 = "REDIS_URL"
	RedisPass                = "REDIS_PASS"
	RedisDB                  = "REDIS_DB"
	RedisKeyPrefix           = "REDIS_KEY_PREFIX"
	AWSRegion                = "AWS_REGION"
	AWSID                    = "AWS_ID"
	AWSSecret                = "AWS_SECRET"
	AWSToken                 = "AWS_TOKEN"
	DynamoDBEndpoint         = "DYNAMODB_ENDPOINT"
	HostsTable               = "HOSTS_TABLE"
	AuthTokenSecret          = "AUTH_TOKEN_SECRET"
	AuthTokenTTL             = "AUTH_TOKEN_TTL"
	QueueSize                = "QUEUE_SIZE"
	QueueWorkers             = "QUEUE_WORKERS"
)

func Get(key string) string {
	return os.Getenv(key)
}

func GetOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func MustGet(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic("env: required environment variable not set: " + key)
	}
	return val
}

// GetInt returns defaultVal when key is unset; a malformed value is an error.
func GetInt(key string, defaultVal int) (int, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(val)
}

func GetDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(val)
}

func GetBool(key string, defaultVal bool) (bool, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	return strconv.ParseBool(val)
}

// GetList splits a comma separated value, dropping empty items.
func GetList(key string, defaultVal []string) []string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

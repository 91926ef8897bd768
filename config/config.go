package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage and cache backend selectors.
const (
	StoreBackendMemory = "memory"
	StoreBackendMongo  = "mongo"

	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// ServerConfig holds all configuration for the authorization server. Tags use
// mapstructure for viper unmarshalling; every key is also bindable from the
// environment.
type ServerConfig struct {
	HTTPPort  string `mapstructure:"HTTP_PORT"`
	PublicURL string `mapstructure:"PUBLIC_URL"`

	StoreBackend string `mapstructure:"STORE_BACKEND"` // memory | mongo
	MongoURI     string `mapstructure:"MONGO_URI"`
	MongoDBName  string `mapstructure:"MONGO_DB_NAME"`

	CacheBackend string `mapstructure:"CACHE_BACKEND"` // memory | redis
	RedisAddr    string `mapstructure:"REDIS_ADDR"`
	RedisPrefix  string `mapstructure:"REDIS_PREFIX"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogPretty bool   `mapstructure:"LOG_PRETTY"`

	AuthCodeTTLMin    int `mapstructure:"AUTH_CODE_TTL_MIN"`
	AccessTokenTTLMin int `mapstructure:"ACCESS_TOKEN_TTL_MIN"`
	RefreshTokenTTLHr int `mapstructure:"REFRESH_TOKEN_TTL_HOUR"`
	SessionTTLMin     int `mapstructure:"SESSION_TTL_MIN"`
	PendingAuthTTLMin int `mapstructure:"PENDING_AUTH_TTL_MIN"`

	// SweepIntervalMin controls the housekeeping sweep that removes expired
	// codes and tokens. Zero disables the sweep; expiry stays correct either
	// way because it is evaluated lazily at lookup time.
	SweepIntervalMin int `mapstructure:"SWEEP_INTERVAL_MIN"`

	// SeedDevData creates the development client and user at startup.
	SeedDevData bool `mapstructure:"SEED_DEV_DATA"`
}

// AuthCodeTTL returns the authorization code lifetime.
func (c *ServerConfig) AuthCodeTTL() time.Duration {
	return time.Duration(c.AuthCodeTTLMin) * time.Minute
}

// AccessTokenTTL returns the access token lifetime.
func (c *ServerConfig) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMin) * time.Minute
}

// RefreshTokenTTL returns the refresh token lifetime.
func (c *ServerConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenTTLHr) * time.Hour
}

// SessionTTL returns the browser session lifetime.
func (c *ServerConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMin) * time.Minute
}

// PendingAuthTTL returns how long a suspended authorize request stays
// resumable.
func (c *ServerConfig) PendingAuthTTL() time.Duration {
	return time.Duration(c.PendingAuthTTLMin) * time.Minute
}

// LoadConfig reads configuration from file, environment variables, and
// defaults, in that order of precedence (lowest first).
func LoadConfig() (*ServerConfig, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/sentinel/")
	v.AddConfigPath("$HOME/.sentinel")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("PUBLIC_URL", "http://localhost:8080")
	v.SetDefault("STORE_BACKEND", StoreBackendMemory)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017/sentinel_dev")
	v.SetDefault("MONGO_DB_NAME", "sentinel_dev")
	v.SetDefault("CACHE_BACKEND", CacheBackendMemory)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PREFIX", "sentinel")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", true)
	v.SetDefault("AUTH_CODE_TTL_MIN", 10)
	v.SetDefault("ACCESS_TOKEN_TTL_MIN", 60)
	v.SetDefault("REFRESH_TOKEN_TTL_HOUR", 168) // 7 days
	v.SetDefault("SESSION_TTL_MIN", 15)
	v.SetDefault("PENDING_AUTH_TTL_MIN", 10)
	v.SetDefault("SWEEP_INTERVAL_MIN", 30)
	v.SetDefault("SEED_DEV_DATA", false)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file is fine; defaults and env vars apply.
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if cfg.StoreBackend != StoreBackendMemory && cfg.StoreBackend != StoreBackendMongo {
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	if cfg.CacheBackend != CacheBackendMemory && cfg.CacheBackend != CacheBackendRedis {
		return nil, fmt.Errorf("unknown CACHE_BACKEND %q", cfg.CacheBackend)
	}

	return &cfg, nil
}

// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"scriptorium/pkg/platform/pagination"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config holds all environment configuration for the server.
type Config struct {
	Server     Server
	Log        Log
	Events     Events
	Pagination pagination.Config
	Redis      RedisConfig
	Database   Database
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"SCRIPTORIUM_ADDR"  envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"  envDefault:"10s"`
	CacheBackend    string        `env:"CACHE_BACKEND"     envDefault:"memory"`
	// AdminToken guards /admin routes. Empty leaves them open.
	AdminToken string `env:"ADMIN_API_TOKEN"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL"  envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

type Events struct {
	HandlerTimeout time.Duration `env:"EVENT_HANDLER_TIMEOUT"  envDefault:"5s"`
	LogAsyncBuffer int           `env:"EVENT_LOG_ASYNC_BUFFER" envDefault:"0"`
}

// RedisConfig is empty-URL-disabled; the redis cache backend requires it.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE"      envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT"   envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT"   envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT"  envDefault:"3s"`
	CacheTTL     time.Duration `env:"REDIS_CACHE_TTL"      envDefault:"0s"`
}

// Database selects the PostgreSQL event log when DATABASE_URL is set.
type Database struct {
	URL string `env:"DATABASE_URL"`
}

// Load parses environment variables into Config and validates combinations
// env tags cannot express.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.Pagination.MaxPageSize <= 0 {
		cfg.Pagination.MaxPageSize = pagination.DefaultMaxPageSize
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Server.CacheBackend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("CACHE_BACKEND=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.Server.CacheBackend)
	}
	if c.Events.HandlerTimeout < 0 {
		return fmt.Errorf("EVENT_HANDLER_TIMEOUT must not be negative")
	}
	if c.Events.LogAsyncBuffer < 0 {
		return fmt.Errorf("EVENT_LOG_ASYNC_BUFFER must not be negative")
	}
	return nil
}

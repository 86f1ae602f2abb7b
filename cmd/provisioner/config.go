package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dmitrymomot/provisioner/pkg/config"
	"github.com/dmitrymomot/provisioner/pkg/gateway"
	"github.com/dmitrymomot/provisioner/pkg/httpserver"
	"github.com/dmitrymomot/provisioner/pkg/logger"
	"github.com/dmitrymomot/provisioner/pkg/redis"
)

const (
	lockBackendMemory = "memory"
	lockBackendRedis  = "redis"

	envReadOnly = "READ_ONLY"

	// lockLeaseMargin is kept between the dispatch deadline and the lock lease
	// to cover the time spent acquiring the lease and releasing it.
	lockLeaseMargin = 5 * time.Second
)

var errInvalidConfig = errors.New("invalid configuration")

type appConfig struct {
	AppEnv      string        `env:"APP_ENV" envDefault:"development"`
	ServiceName string        `env:"SERVICE_NAME" envDefault:"provisioner"`
	LogLevel    string        `env:"LOG_LEVEL"`
	ReadOnly    config.Flag   `env:"READ_ONLY"`
	LockBackend string        `env:"LOCK_BACKEND" envDefault:"memory"`
	LockTTL     time.Duration `env:"REDIS_LOCK_TTL" envDefault:"60s"`

	HTTP    httpserver.Config
	Gateway gateway.Config
	Redis   redis.Config
}

func (c appConfig) validate() error {
	switch c.LockBackend {
	case lockBackendMemory, lockBackendRedis:
	default:
		return fmt.Errorf("%w: LOCK_BACKEND must be %q or %q, got %q",
			errInvalidConfig, lockBackendMemory, lockBackendRedis, c.LockBackend)
	}
	if c.LockTTL <= 0 {
		return fmt.Errorf("%w: REDIS_LOCK_TTL must be positive", errInvalidConfig)
	}
	if c.LockBackend == lockBackendRedis {
		if need := c.Gateway.WorstCaseDuration() + lockLeaseMargin; c.LockTTL <= need {
			return fmt.Errorf("%w: REDIS_LOCK_TTL %s must exceed %s, the slowest gateway read and write plus %s",
				errInvalidConfig, c.LockTTL, need, lockLeaseMargin)
		}
	}
	return nil
}

// dispatchDeadline bounds one event so it finishes before its lock lease
// expires. The in-process lock has no lease.
func (c appConfig) dispatchDeadline() time.Duration {
	if c.LockBackend != lockBackendRedis {
		return 0
	}
	return c.LockTTL - lockLeaseMargin
}

func (c appConfig) loggerOptions() ([]logger.Option, error) {
	opts := []logger.Option{logger.WithEnvironment(c.AppEnv, c.ServiceName)}
	if c.LogLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
			return nil, fmt.Errorf("%w: LOG_LEVEL: %w", errInvalidConfig, err)
		}
		opts = append(opts, logger.WithLevel(level))
	}
	return opts, nil
}

func loadConfig() (appConfig, error) {
	if err := config.LoadEnv(); err != nil {
		return appConfig{}, err
	}
	cfg, err := config.Load[appConfig]()
	if err != nil {
		return appConfig{}, err
	}
	cfg.resolveFlags(os.LookupEnv)
	return cfg, cfg.validate()
}

// resolveFlags applies presence-only switches that struct parsing skips
// when they are exported with an empty value.
func (c *appConfig) resolveFlags(lookup func(string) (string, bool)) {
	if f, ok := config.LookupFlag(lookup, envReadOnly); ok {
		c.ReadOnly = f
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// LoadEnv loads variables from .env files into the process environment.
// Variables that are already set are not overridden, so the real environment
// always wins over files. With no paths it loads ./.env if the file exists.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		if _, err := os.Stat(defaultEnvFile); errors.Is(err, os.ErrNotExist) {
			return nil
		}
		paths = []string{defaultEnvFile}
	}
	if err := godotenv.Load(paths...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// Load parses the process environment into a new T using `env` struct tags.
// Call it once at startup and pass the value to the components that need it.
//
//	type Config struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	cfg, err := config.Load[Config]()
func Load[T any]() (T, error) {
	var cfg T
	if err := env.Parse(&cfg); err != nil {
		return cfg, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// LoadFrom parses T from the given variables only, ignoring the process
// environment. Tests use it to build configs without touching global state.
func LoadFrom[T any](environ map[string]string) (T, error) {
	var cfg T
	if environ == nil {
		environ = map[string]string{}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return cfg, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// MustLoad works like Load but panics on failure.
func MustLoad[T any]() T {
	cfg, err := Load[T]()
	if err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
	return cfg
}

// Flag is a boolean switch enabled by the mere presence of a variable:
// any value except false, 0, no and off turns it on.
type Flag bool

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Flag) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "false", "0", "no", "off":
		*f = false
	default:
		*f = true
	}
	return nil
}

// Enabled reports whether the flag is on.
func (f Flag) Enabled() bool {
	return bool(f)
}

// LookupFlag resolves a Flag from presence. Struct parsing treats an empty
// value as unset, so a variable exported with no value is only seen here.
// The second result is false when the variable is absent.
//
//	if f, ok := config.LookupFlag(os.LookupEnv, "READ_ONLY"); ok {
//		cfg.ReadOnly = f
//	}
func LookupFlag(lookup func(string) (string, bool), key string) (Flag, bool) {
	value, ok := lookup(key)
	if !ok {
		return false, false
	}
	var f Flag
	_ = f.UnmarshalText([]byte(value))
	return f, true
}

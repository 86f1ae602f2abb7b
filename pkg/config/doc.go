// Package config loads application configuration from environment variables.
//
// It wraps github.com/joho/godotenv for .env files and
// github.com/caarlos0/env/v11 for struct parsing. Unlike a global registry,
// every call returns a fresh value: build the configuration once in main and
// inject it into the components that need it.
//
//	if err := config.LoadEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	cfg, err := config.Load[AppConfig]()
//
// LoadFrom parses from an explicit map, which keeps tests free of
// process-wide environment mutation.
//
// Flag is a bool that is switched on by the presence of a variable, for
// options such as READ_ONLY where any value should enable the behaviour.
package config

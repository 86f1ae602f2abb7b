package gateway

import "time"

// Config holds the environment settings of a Gateway client.
type Config struct {
	BaseURL         string        `env:"GATEWAY_BASE_URL,required"`                      // BaseURL is the Gateway origin, e.g. "https://marketplace.example.com/api".
	AuthToken       string        `env:"GATEWAY_AUTH_TOKEN,required"`                    // AuthToken is sent with every Gateway call.
	AuthHeader      string        `env:"GATEWAY_AUTH_HEADER" envDefault:"Authorization"` // AuthHeader is the header carrying the token.
	AuthScheme      string        `env:"GATEWAY_AUTH_SCHEME" envDefault:"Bearer"`        // AuthScheme prefixes the token.
	Timeout         time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"10s"`               // Timeout bounds a single Gateway call.
	MaxRetries      int           `env:"GATEWAY_MAX_RETRIES" envDefault:"2"`             // MaxRetries applies to reads only.
	CircuitFailures int           `env:"GATEWAY_CIRCUIT_FAILURES" envDefault:"5"`        // CircuitFailures opens the breaker after this many consecutive upstream failures. Zero disables it.
	CircuitRecovery time.Duration `env:"GATEWAY_CIRCUIT_RECOVERY" envDefault:"30s"`      // CircuitRecovery is how long the breaker stays open.
}

// NewFromConfig creates a Client from cfg. Options passed explicitly are
// applied after the ones derived from cfg.
func NewFromConfig(cfg Config, opts ...Option) (*Client, error) {
	configOpts := []Option{
		WithAuthHeader(cfg.AuthHeader, cfg.AuthScheme),
		WithTimeout(cfg.Timeout),
		WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.CircuitFailures > 0 {
		configOpts = append(configOpts, WithCircuitBreaker(NewCircuitBreaker(cfg.CircuitFailures, 1, cfg.CircuitRecovery)))
	}
	return New(cfg.BaseURL, cfg.AuthToken, append(configOpts, opts...)...)
}

// WorstCaseDuration bounds one read with all its retries followed by one
// write, for a client built by NewFromConfig.
func (cfg Config) WorstCaseDuration() time.Duration {
	timeout, retries := cfg.Timeout, cfg.MaxRetries
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if retries < 0 {
		retries = defaultMaxRetries
	}
	total := time.Duration(retries+2) * timeout
	for attempt := 1; attempt <= retries; attempt++ {
		total += defaultBackoff.MaxInterval(attempt)
	}
	return total
}

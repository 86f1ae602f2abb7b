package gateway

import "errors"

// Client errors. Request failures are additionally wrapped with one of the
// provisioning taxonomy errors, so callers usually only need those.
var (
	// ErrInvalidConfiguration is returned by New for unusable settings.
	ErrInvalidConfiguration = errors.New("invalid gateway configuration")
	// ErrCircuitOpen is returned without a call while the breaker is open.
	ErrCircuitOpen = errors.New("gateway circuit breaker is open")
	// ErrTimeout marks a call that exceeded the per-call timeout.
	ErrTimeout = errors.New("gateway request timeout")
	// ErrPermanentFailure marks answers that will not change on retry.
	ErrPermanentFailure = errors.New("permanent gateway failure")
)

// IsCircuitOpen checks if an error was caused by an open circuit breaker.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, ErrCircuitOpen)
}

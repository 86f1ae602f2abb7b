package gateway

import (
	"math"
	"math/rand/v2"
	"time"
)

// BackoffStrategy computes the delay before a read retry.
// Attempt starts at 1 for the first retry.
type BackoffStrategy interface {
	NextInterval(attempt int) time.Duration
}

// ExponentialBackoff grows the delay geometrically with optional jitter:
// min(Initial * Multiplier^(attempt-1) * (1 ± Jitter), Max).
type ExponentialBackoff struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     float64
}

// NextInterval implements BackoffStrategy.
func (e ExponentialBackoff) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	interval, maxDelay := e.base(attempt)
	if e.Jitter > 0 {
		interval *= 1 + (rand.Float64()*2-1)*e.Jitter
	}
	return time.Duration(math.Min(interval, float64(maxDelay)))
}

// MaxInterval is the longest delay NextInterval can return for attempt.
func (e ExponentialBackoff) MaxInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	interval, maxDelay := e.base(attempt)
	if e.Jitter > 0 {
		interval *= 1 + e.Jitter
	}
	return time.Duration(math.Min(interval, float64(maxDelay)))
}

func (e ExponentialBackoff) base(attempt int) (float64, time.Duration) {
	initial := e.Initial
	if initial == 0 {
		initial = 200 * time.Millisecond
	}
	maxDelay := e.Max
	if maxDelay == 0 {
		maxDelay = 5 * time.Second
	}
	multiplier := e.Multiplier
	if multiplier == 0 {
		multiplier = 2
	}
	return float64(initial) * math.Pow(multiplier, float64(attempt-1)), maxDelay
}

// FixedBackoff waits the same interval before every retry.
type FixedBackoff struct {
	Interval time.Duration
}

// NextInterval implements BackoffStrategy.
func (f FixedBackoff) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return f.Interval
}

// DefaultBackoff is short on purpose: reads happen inside an inbound webhook
// request and the sender is waiting for the answer.
func DefaultBackoff() BackoffStrategy {
	return defaultBackoff
}

var defaultBackoff = ExponentialBackoff{
	Initial:    200 * time.Millisecond,
	Max:        2 * time.Second,
	Multiplier: 2,
	Jitter:     0.1,
}

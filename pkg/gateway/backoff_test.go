package gateway_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/provisioner/pkg/gateway"
)

func TestExponentialBackoff(t *testing.T) {
	t.Parallel()
	b := gateway.ExponentialBackoff{Initial: 100 * time.Millisecond, Max: time.Second, Multiplier: 2}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 0},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{5, time.Second},
		{10, time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, b.NextInterval(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestExponentialBackoff_Jitter(t *testing.T) {
	t.Parallel()
	b := gateway.ExponentialBackoff{Initial: 100 * time.Millisecond, Max: time.Second, Multiplier: 2, Jitter: 0.5}

	for range 100 {
		d := b.NextInterval(1)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}

func TestExponentialBackoff_MaxInterval(t *testing.T) {
	t.Parallel()
	b := gateway.ExponentialBackoff{Initial: 100 * time.Millisecond, Max: time.Second, Multiplier: 2, Jitter: 0.5}

	assert.Zero(t, b.MaxInterval(0))
	assert.Equal(t, 150*time.Millisecond, b.MaxInterval(1))
	assert.Equal(t, time.Second, b.MaxInterval(5))
	for range 100 {
		assert.LessOrEqual(t, b.NextInterval(2), b.MaxInterval(2))
	}
}

func TestConfig_WorstCaseDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  gateway.Config
		want time.Duration
	}{
		{"defaults", gateway.Config{Timeout: 10 * time.Second, MaxRetries: 2}, 40*time.Second + 220*time.Millisecond + 440*time.Millisecond},
		{"no retries", gateway.Config{Timeout: time.Second, MaxRetries: 0}, 2 * time.Second},
		{"unset values fall back", gateway.Config{MaxRetries: -1}, 40*time.Second + 220*time.Millisecond + 440*time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, float64(tt.want), float64(tt.cfg.WorstCaseDuration()), float64(time.Microsecond))
		})
	}
}

func TestFixedBackoff(t *testing.T) {
	t.Parallel()
	b := gateway.FixedBackoff{Interval: 5 * time.Millisecond}
	assert.Zero(t, b.NextInterval(0))
	assert.Equal(t, 5*time.Millisecond, b.NextInterval(1))
	assert.Equal(t, 5*time.Millisecond, b.NextInterval(7))
}

func TestDefaultBackoff(t *testing.T) {
	t.Parallel()
	b := gateway.DefaultBackoff()
	for attempt := 1; attempt <= 10; attempt++ {
		assert.LessOrEqual(t, b.NextInterval(attempt), 2*time.Second)
	}
}

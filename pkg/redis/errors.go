package redis

import "errors"

var (
	// ErrFailedToParseRedisConnString is returned for a malformed REDIS_URL.
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")
	// ErrRedisNotReady is returned when no ping succeeds within the retry budget.
	ErrRedisNotReady = errors.New("redis did not become ready within the given time period")
	// ErrEmptyConnectionURL is returned when REDIS_URL is empty.
	ErrEmptyConnectionURL = errors.New("empty redis connection URL")
	// ErrHealthcheckFailed wraps a failed readiness ping.
	ErrHealthcheckFailed = errors.New("redis healthcheck failed")
)

package logger

import (
	"log/slog"
	"time"
)

// Error records err under the key "error". A nil error yields an empty Attr,
// which slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the emitting component under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// RequestID records the inbound request id. Empty ids are dropped.
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// SubscriptionID records the subscription id.
func SubscriptionID(id int64) slog.Attr {
	return slog.Int64("subscription_id", id)
}

// Entity records the notification entity type.
func Entity(name string) slog.Attr {
	return slog.String("entity", name)
}

// Lifecycle records the notification lifecycle.
func Lifecycle(kind string) slog.Attr {
	return slog.String("lifecycle", kind)
}

// Status records a deployment status.
func Status(status string) slog.Attr {
	return slog.String("deployment_status", status)
}

// Action records the decided action.
func Action(kind string) slog.Attr {
	return slog.String("action", kind)
}

// Paid records whether the subscription is paid.
func Paid(paid bool) slog.Attr {
	return slog.Bool("paid", paid)
}

// Attempt records a 1-based attempt number.
func Attempt(n int) slog.Attr {
	return slog.Int("attempt", n)
}

// Duration records an elapsed time.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// StatusCode records an HTTP status code.
func StatusCode(code int) slog.Attr {
	return slog.Int("status_code", code)
}

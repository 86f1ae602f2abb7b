package provisioning

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the dispatcher and every Gateway implementation.
// Gateway clients wrap one of these so callers can classify failures with errors.Is
// regardless of the transport in use.
var (
	// ErrUpstreamUnavailable covers network failures, timeouts and 5xx answers.
	ErrUpstreamUnavailable = errors.New("subscription gateway unavailable")
	// ErrMalformedResponse means the Gateway answered with data that cannot be parsed.
	ErrMalformedResponse = errors.New("malformed subscription gateway response")
	// ErrTransitionRejected means the Gateway refused a status write. Never retried.
	ErrTransitionRejected = errors.New("subscription status transition rejected")
	// ErrSubscriptionNotFound means the Gateway does not know the notified id.
	ErrSubscriptionNotFound = errors.New("subscription not found")
	// ErrInvalidNotification is returned for notifications that cannot be routed.
	ErrInvalidNotification = errors.New("invalid event notification")
	// ErrLockUnavailable means the per-subscription lock could not be acquired.
	ErrLockUnavailable = errors.New("subscription lock unavailable")
)

// DispatchError describes which step of a dispatch failed.
// It unwraps to the underlying error, so taxonomy checks keep working.
type DispatchError struct {
	SubscriptionID int64
	Lifecycle      Lifecycle
	Op             string
	Err            error
}

// Error describes the failed step and subscription.
func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %s for subscription %d: %s: %v", e.Lifecycle, e.SubscriptionID, e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DispatchError) Unwrap() error {
	return e.Err
}

// Dispatch operations reported in DispatchError.Op.
const (
	OpValidate  = "validate"
	OpLock      = "lock"
	OpFetch     = "fetch"
	OpProvision = "provision"
	OpApply     = "apply"
)

// IsRetryable reports whether the caller may redeliver the notification later.
// Rejected transitions and invalid notifications will fail the same way again.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable) || errors.Is(err, ErrLockUnavailable)
}

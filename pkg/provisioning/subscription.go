package provisioning

import "fmt"

// EntitySubscription is the only notification entity the dispatcher acts upon.
const EntitySubscription = "Subscription"

// DeploymentStatus is the Gateway's authoritative provisioning state of a subscription.
type DeploymentStatus string

const (
	// StatusPending is a subscription waiting to be deployed.
	StatusPending DeploymentStatus = "PENDING"
	// StatusDeployed is a running tenant.
	StatusDeployed DeploymentStatus = "DEPLOYED"
	// StatusStopped is a suspended tenant.
	StatusStopped DeploymentStatus = "STOPPED"
	// StatusUndeployed is a tenant that has been torn down.
	StatusUndeployed DeploymentStatus = "UNDEPLOYED"
)

// Valid reports whether s is one of the four statuses the Gateway defines.
func (s DeploymentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusDeployed, StatusStopped, StatusUndeployed:
		return true
	default:
		return false
	}
}

// String returns the wire value.
func (s DeploymentStatus) String() string {
	return string(s)
}

// MarshalText implements encoding.TextMarshaler.
func (s DeploymentStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown deployment status %q", string(s))
	}
	return []byte(s), nil
}

// UnmarshalText is case-sensitive; the Gateway never sends lower-case values.
func (s *DeploymentStatus) UnmarshalText(text []byte) error {
	v := DeploymentStatus(text)
	if !v.Valid() {
		return fmt.Errorf("unknown deployment status %q", string(text))
	}
	*s = v
	return nil
}

// Lifecycle is the kind of change a notification reports.
type Lifecycle string

const (
	// LifecycleCreated notifies a new subscription.
	LifecycleCreated Lifecycle = "CREATED"
	// LifecycleModified notifies a changed subscription.
	LifecycleModified Lifecycle = "MODIFIED"
	// LifecycleDeleted notifies a removed subscription.
	LifecycleDeleted Lifecycle = "DELETED"
)

// Valid reports whether l is a known lifecycle.
func (l Lifecycle) Valid() bool {
	switch l {
	case LifecycleCreated, LifecycleModified, LifecycleDeleted:
		return true
	default:
		return false
	}
}

// String returns the wire value.
func (l Lifecycle) String() string {
	return string(l)
}

// MarshalText implements encoding.TextMarshaler.
func (l Lifecycle) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("unknown lifecycle %q", string(l))
	}
	return []byte(l), nil
}

// UnmarshalText accepts the wire values and rejects anything else.
func (l *Lifecycle) UnmarshalText(text []byte) error {
	v := Lifecycle(text)
	if !v.Valid() {
		return fmt.Errorf("unknown lifecycle %q", string(text))
	}
	*l = v
	return nil
}

// Subscription is a snapshot of the remote subscription state.
// It is created and mutated only by the Gateway.
type Subscription struct {
	ID               int64            `json:"id"`
	DeploymentStatus DeploymentStatus `json:"deploymentStatus"`
	Paid             bool             `json:"paid"`
}

// EventNotification is an inbound lifecycle notification. It lives for a single dispatch.
type EventNotification struct {
	Entity    string    `json:"entity"`
	ID        int64     `json:"id"`
	Lifecycle Lifecycle `json:"type"`
}

// Managed reports whether the notification targets a subscription.
// Anything else is unmanaged and dropped by the dispatcher.
func (n EventNotification) Managed() bool {
	return n.Entity == EntitySubscription
}

// Validate checks the fields the dispatcher relies on for a managed notification.
func (n EventNotification) Validate() error {
	if n.ID <= 0 {
		return fmt.Errorf("%w: id must be positive, got %d", ErrInvalidNotification, n.ID)
	}
	if !n.Lifecycle.Valid() {
		return fmt.Errorf("%w: unknown lifecycle %q", ErrInvalidNotification, string(n.Lifecycle))
	}
	return nil
}

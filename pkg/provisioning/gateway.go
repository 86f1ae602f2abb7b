package provisioning

import "context"

// SubscriptionReader is the read side of the remote subscription Gateway.
type SubscriptionReader interface {
	GetSubscription(ctx context.Context, id int64) (Subscription, error)
}

// StatusWriter is the write side of the remote subscription Gateway.
type StatusWriter interface {
	SetDeploymentStatus(ctx context.Context, id int64, status DeploymentStatus) error
}

// Gateway combines both sides. pkg/gateway provides the HTTP client and an
// in-memory implementation.
type Gateway interface {
	SubscriptionReader
	StatusWriter
}

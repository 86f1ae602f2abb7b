package provisioning

import (
	"context"
	"fmt"
)

// Fetcher reads a fresh subscription snapshot for every event. It never caches.
type Fetcher struct {
	reader SubscriptionReader
}

// NewFetcher creates a Fetcher reading through reader.
func NewFetcher(reader SubscriptionReader) *Fetcher {
	if reader == nil {
		panic("provisioning: subscription reader cannot be nil")
	}
	return &Fetcher{reader: reader}
}

// Fetch returns the current snapshot for id. A snapshot that does not match the
// requested id or carries an unknown status is reported as ErrMalformedResponse.
func (f *Fetcher) Fetch(ctx context.Context, id int64) (Subscription, error) {
	sub, err := f.reader.GetSubscription(ctx, id)
	if err != nil {
		return Subscription{}, err
	}
	if sub.ID != id {
		return Subscription{}, fmt.Errorf("%w: requested subscription %d, got %d", ErrMalformedResponse, id, sub.ID)
	}
	if !sub.DeploymentStatus.Valid() {
		return Subscription{}, fmt.Errorf("%w: unknown deployment status %q", ErrMalformedResponse, string(sub.DeploymentStatus))
	}
	return sub, nil
}

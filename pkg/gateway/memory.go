package gateway

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrymomot/provisioner/pkg/provisioning"
)

// Write is a status write recorded by Memory.
type Write struct {
	ID     int64
	Status provisioning.DeploymentStatus
}

// Memory is an in-process Gateway. It keeps subscriptions in a map, records
// every call and can be told to fail, which makes it the Gateway of choice
// for tests and local runs.
type Memory struct {
	mu       sync.Mutex
	subs     map[int64]provisioning.Subscription
	reads    int
	writes   []Write
	readErr  error
	writeErr error
}

// NewMemory creates a Memory Gateway seeded with subs.
func NewMemory(subs ...provisioning.Subscription) *Memory {
	m := &Memory{subs: make(map[int64]provisioning.Subscription, len(subs))}
	for _, sub := range subs {
		m.subs[sub.ID] = sub
	}
	return m
}

// Put stores or replaces a subscription.
func (m *Memory) Put(sub provisioning.Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[sub.ID] = sub
}

// Get returns the stored subscription without counting a read.
func (m *Memory) Get(id int64) (provisioning.Subscription, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[id]
	return sub, ok
}

// FailReads makes every following read return err. Pass nil to reset.
func (m *Memory) FailReads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// FailWrites makes every following write return err. Pass nil to reset.
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// GetSubscription returns the stored subscription or ErrSubscriptionNotFound.
func (m *Memory) GetSubscription(ctx context.Context, id int64) (provisioning.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return provisioning.Subscription{}, fmt.Errorf("%w: %w", provisioning.ErrUpstreamUnavailable, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.reads++
	if m.readErr != nil {
		return provisioning.Subscription{}, m.readErr
	}
	sub, ok := m.subs[id]
	if !ok {
		return provisioning.Subscription{}, fmt.Errorf("%w: id %d", provisioning.ErrSubscriptionNotFound, id)
	}
	return sub, nil
}

// SetDeploymentStatus records the write and updates the stored subscription.
func (m *Memory) SetDeploymentStatus(ctx context.Context, id int64, status provisioning.DeploymentStatus) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", provisioning.ErrUpstreamUnavailable, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.writeErr != nil {
		return m.writeErr
	}
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", provisioning.ErrTransitionRejected, string(status))
	}
	sub, ok := m.subs[id]
	if !ok {
		return fmt.Errorf("%w: subscription %d does not exist", provisioning.ErrTransitionRejected, id)
	}

	m.writes = append(m.writes, Write{ID: id, Status: status})
	sub.DeploymentStatus = status
	m.subs[id] = sub
	return nil
}

// Reads returns the number of read calls, including failed ones.
func (m *Memory) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

// Writes returns a copy of the successful writes in call order.
func (m *Memory) Writes() []Write {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.writes)
}

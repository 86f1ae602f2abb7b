package provisioning_test

import (
	"context"
	"sync"

	"github.com/dmitrymomot/provisioner/pkg/gateway"
	"github.com/dmitrymomot/provisioner/pkg/provisioning"
)

var allStatuses = []provisioning.DeploymentStatus{
	provisioning.StatusPending,
	provisioning.StatusDeployed,
	provisioning.StatusStopped,
	provisioning.StatusUndeployed,
}

func sub(id int64, status provisioning.DeploymentStatus, paid bool) provisioning.Subscription {
	return provisioning.Subscription{ID: id, DeploymentStatus: status, Paid: paid}
}

func notification(id int64, lifecycle provisioning.Lifecycle) provisioning.EventNotification {
	return provisioning.EventNotification{Entity: provisioning.EntitySubscription, ID: id, Lifecycle: lifecycle}
}

func newDispatcher(gw *gateway.Memory, dryRun bool, opts ...provisioning.DispatcherOption) *provisioning.Dispatcher {
	return provisioning.NewDispatcher(
		provisioning.NewFetcher(gw),
		provisioning.NewSynchronizer(gw, provisioning.WithDryRun(dryRun)),
		opts...,
	)
}

// recordingProvisioner records hook calls and can fail on demand.
type recordingProvisioner struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (p *recordingProvisioner) record(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, name)
	return p.err
}

func (p *recordingProvisioner) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *recordingProvisioner) Provision(context.Context, provisioning.Subscription) error {
	return p.record("provision")
}

func (p *recordingProvisioner) Suspend(context.Context, provisioning.Subscription) error {
	return p.record("suspend")
}

func (p *recordingProvisioner) CheckHealth(context.Context, provisioning.Subscription) error {
	return p.record("health_check")
}

func (p *recordingProvisioner) Unprovision(context.Context, provisioning.Subscription) error {
	return p.record("unprovision")
}

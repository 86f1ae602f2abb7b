package provisioning

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/provisioner/pkg/logger"
)

// TenantProvisioner performs the tenant-side work behind each action.
// Returning an error aborts the event before any status is written.
type TenantProvisioner interface {
	Provision(ctx context.Context, sub Subscription) error
	Suspend(ctx context.Context, sub Subscription) error
	CheckHealth(ctx context.Context, sub Subscription) error
	Unprovision(ctx context.Context, sub Subscription) error
}

// LogProvisioner only reports what would be done to the tenant.
type LogProvisioner struct {
	log *slog.Logger
}

// NewLogProvisioner creates a LogProvisioner. A nil logger discards output.
func NewLogProvisioner(l *slog.Logger) *LogProvisioner {
	if l == nil {
		l = logger.Discard()
	}
	return &LogProvisioner{log: l}
}

// Provision logs the provisioning step.
func (p *LogProvisioner) Provision(ctx context.Context, sub Subscription) error {
	p.log.InfoContext(ctx, "provision tenant resources", logger.SubscriptionID(sub.ID))
	return nil
}

// Suspend logs the suspension step.
func (p *LogProvisioner) Suspend(ctx context.Context, sub Subscription) error {
	p.log.InfoContext(ctx, "temporarily suspend the subscription", logger.SubscriptionID(sub.ID))
	return nil
}

// CheckHealth logs the health check.
func (p *LogProvisioner) CheckHealth(ctx context.Context, sub Subscription) error {
	p.log.InfoContext(ctx, "check if tenant is OK", logger.SubscriptionID(sub.ID))
	return nil
}

// Unprovision logs the teardown step.
func (p *LogProvisioner) Unprovision(ctx context.Context, sub Subscription) error {
	p.log.InfoContext(ctx, "unprovision tenant and release resources", logger.SubscriptionID(sub.ID))
	return nil
}

// perform runs the provisioner hook that matches the action kind.
func perform(ctx context.Context, p TenantProvisioner, action Action, sub Subscription) error {
	switch action.Kind {
	case ActionProvision:
		return p.Provision(ctx, sub)
	case ActionSuspend:
		return p.Suspend(ctx, sub)
	case ActionHealthCheck:
		return p.CheckHealth(ctx, sub)
	case ActionUnprovision:
		return p.Unprovision(ctx, sub)
	default:
		return nil
	}
}

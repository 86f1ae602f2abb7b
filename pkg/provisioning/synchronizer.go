package provisioning

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/provisioner/pkg/logger"
)

// Synchronizer writes a new deployment status back to the Gateway.
// In dry-run mode the write is logged and skipped.
type Synchronizer struct {
	writer StatusWriter
	dryRun bool
	log    *slog.Logger
}

// SynchronizerOption configures a Synchronizer.
type SynchronizerOption func(*Synchronizer)

// WithDryRun suppresses every write while keeping the log line.
func WithDryRun(enabled bool) SynchronizerOption {
	return func(s *Synchronizer) { s.dryRun = enabled }
}

// WithSynchronizerLogger sets the logger for writes and dry-run reports.
func WithSynchronizerLogger(l *slog.Logger) SynchronizerOption {
	return func(s *Synchronizer) {
		if l != nil {
			s.log = l
		}
	}
}

// NewSynchronizer creates a Synchronizer writing through writer.
func NewSynchronizer(writer StatusWriter, opts ...SynchronizerOption) *Synchronizer {
	if writer == nil {
		panic("provisioning: status writer cannot be nil")
	}
	s := &Synchronizer{writer: writer, log: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DryRun reports whether writes are suppressed.
func (s *Synchronizer) DryRun() bool {
	return s.dryRun
}

// Apply issues a single write. It is not retried; failures go back to the caller.
func (s *Synchronizer) Apply(ctx context.Context, id int64, status DeploymentStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: refusing to write unknown status %q", ErrTransitionRejected, string(status))
	}

	if s.dryRun {
		s.log.InfoContext(ctx, "dry-run: skipping status update",
			logger.SubscriptionID(id),
			logger.Status(status.String()),
		)
		return nil
	}

	s.log.InfoContext(ctx, "setting subscription status",
		logger.SubscriptionID(id),
		logger.Status(status.String()),
	)
	return s.writer.SetDeploymentStatus(ctx, id, status)
}

package provisioning

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/provisioner/pkg/logger"
)

// Dispatcher routes lifecycle notifications into the decision engine and
// performs the resulting action. It holds no state of its own besides the locker.
type Dispatcher struct {
	fetcher     *Fetcher
	sync        *Synchronizer
	provisioner TenantProvisioner
	locker      Locker
	metrics     *Metrics
	log         *slog.Logger
	deadline    time.Duration
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithProvisioner replaces the default LogProvisioner.
func WithProvisioner(p TenantProvisioner) DispatcherOption {
	return func(d *Dispatcher) {
		if p != nil {
			d.provisioner = p
		}
	}
}

// WithLocker replaces the default in-process MemoryLocker.
func WithLocker(l Locker) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.locker = l
		}
	}
}

// WithDeadline bounds the work done while the subscription lock is held.
// Set it below the lock lease so a slow event cannot outlive its lease.
func WithDeadline(d time.Duration) DispatcherOption {
	return func(dp *Dispatcher) {
		if d > 0 {
			dp.deadline = d
		}
	}
}

// WithMetrics records dispatch metrics into m.
func WithMetrics(m *Metrics) DispatcherOption {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithLogger sets the logger for dispatch events.
func WithLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// NewDispatcher creates a Dispatcher. It panics when fetcher or sync is nil.
func NewDispatcher(fetcher *Fetcher, sync *Synchronizer, opts ...DispatcherOption) *Dispatcher {
	if fetcher == nil || sync == nil {
		panic("provisioning: fetcher and synchronizer are required")
	}
	d := &Dispatcher{
		fetcher: fetcher,
		sync:    sync,
		locker:  NewMemoryLocker(),
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.provisioner == nil {
		d.provisioner = NewLogProvisioner(d.log)
	}
	return d
}

// Dispatch handles one notification. Unmanaged entities are logged and dropped
// without touching the Gateway. Failures are returned as *DispatchError.
func (d *Dispatcher) Dispatch(ctx context.Context, n EventNotification) error {
	d.log.InfoContext(ctx, "received notification",
		logger.Entity(n.Entity),
		logger.SubscriptionID(n.ID),
		logger.Lifecycle(n.Lifecycle.String()),
	)
	d.metrics.observeNotification(n)

	if !n.Managed() {
		d.log.DebugContext(ctx, "skipping unmanaged notification", logger.Entity(n.Entity))
		return nil
	}

	start := time.Now()
	err := d.dispatch(ctx, n)
	d.metrics.observeDuration(time.Since(start))

	if err != nil {
		d.metrics.observeFailure(err)
		d.log.ErrorContext(ctx, "failed to dispatch notification",
			logger.SubscriptionID(n.ID),
			logger.Lifecycle(n.Lifecycle.String()),
			logger.Error(err),
		)
	}
	return err
}

func (d *Dispatcher) dispatch(ctx context.Context, n EventNotification) error {
	fail := func(op string, err error) error {
		return &DispatchError{SubscriptionID: n.ID, Lifecycle: n.Lifecycle, Op: op, Err: err}
	}

	if err := n.Validate(); err != nil {
		return fail(OpValidate, err)
	}

	unlock, err := d.locker.Lock(ctx, n.ID)
	if err != nil {
		return fail(OpLock, err)
	}
	defer unlock()

	if d.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.deadline)
		defer cancel()
	}

	sub, err := d.fetcher.Fetch(ctx, n.ID)
	if err != nil {
		return fail(OpFetch, err)
	}

	action := Decide(n.Lifecycle, sub)
	d.metrics.observeAction(action, d.sync.DryRun())
	d.log.DebugContext(ctx, "decided provisioning action",
		logger.SubscriptionID(sub.ID),
		logger.Status(sub.DeploymentStatus.String()),
		logger.Paid(sub.Paid),
		logger.Action(action.Kind.String()),
	)

	if err := perform(ctx, d.provisioner, action, sub); err != nil {
		return fail(OpProvision, err)
	}

	target, ok := action.Transition()
	if !ok {
		return nil
	}
	if err := d.sync.Apply(ctx, sub.ID, target); err != nil {
		return fail(OpApply, err)
	}
	return nil
}

package provisioning

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes dispatcher counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	notifications *prometheus.CounterVec
	actions       *prometheus.CounterVec
	failures      *prometheus.CounterVec
	duration      prometheus.Histogram
}

// NewMetrics registers the dispatcher collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		notifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "provisioner",
			Name:      "notifications_total",
			Help:      "Received lifecycle notifications by entity class and lifecycle.",
		}, []string{"class", "lifecycle"}),
		actions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "provisioner",
			Name:      "actions_total",
			Help:      "Decided provisioning actions.",
		}, []string{"action", "dry_run"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "provisioner",
			Name:      "dispatch_failures_total",
			Help:      "Failed dispatches by step and error class.",
		}, []string{"op", "reason"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "provisioner",
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent dispatching managed notifications.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) observeNotification(n EventNotification) {
	if m == nil {
		return
	}
	class := "managed"
	if !n.Managed() {
		class = "unmanaged"
	}
	lifecycle := n.Lifecycle.String()
	if !n.Lifecycle.Valid() {
		lifecycle = "unknown"
	}
	m.notifications.WithLabelValues(class, lifecycle).Inc()
}

func (m *Metrics) observeAction(a Action, dryRun bool) {
	if m == nil {
		return
	}
	dry := "false"
	if dryRun {
		dry = "true"
	}
	m.actions.WithLabelValues(a.Kind.String(), dry).Inc()
}

func (m *Metrics) observeFailure(err error) {
	if m == nil {
		return
	}
	op := "unknown"
	var dErr *DispatchError
	if errors.As(err, &dErr) {
		op = dErr.Op
	}
	m.failures.WithLabelValues(op, Reason(err)).Inc()
}

func (m *Metrics) observeDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.duration.Observe(d.Seconds())
}

// Reason returns a stable, low-cardinality name for err's taxonomy class.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSubscriptionNotFound):
		return "not_found"
	case errors.Is(err, ErrTransitionRejected):
		return "transition_rejected"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "upstream_unavailable"
	case errors.Is(err, ErrInvalidNotification):
		return "invalid_notification"
	case errors.Is(err, ErrLockUnavailable):
		return "lock_unavailable"
	default:
		return "internal"
	}
}

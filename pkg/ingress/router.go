package ingress

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/provisioner/pkg/httpserver"
	"github.com/dmitrymomot/provisioner/pkg/logger"
	"github.com/dmitrymomot/provisioner/pkg/provisioning"
)

// Dispatcher handles a decoded notification.
type Dispatcher interface {
	Dispatch(ctx context.Context, n provisioning.EventNotification) error
}

// RouterOption configures NewRouter.
type RouterOption func(*routerConfig)

type routerConfig struct {
	log      *slog.Logger
	checks   []httpserver.Check
	registry *prometheus.Registry
}

// WithLogger sets the logger for access logs and failed events.
func WithLogger(l *slog.Logger) RouterOption {
	return func(c *routerConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// WithReadinessChecks adds dependencies probed by GET /health/ready.
func WithReadinessChecks(checks ...httpserver.Check) RouterOption {
	return func(c *routerConfig) { c.checks = append(c.checks, checks...) }
}

// WithRegistry serves reg on GET /metrics and registers the HTTP collectors
// for POST /event with it.
func WithRegistry(reg *prometheus.Registry) RouterOption {
	return func(c *routerConfig) { c.registry = reg }
}

// NewRouter builds the inbound HTTP surface:
//
//	POST /event          lifecycle notification
//	GET  /health/live    liveness probe
//	GET  /health/ready   readiness probe
//	GET  /metrics        prometheus exposition, when a registry is set
func NewRouter(d Dispatcher, opts ...RouterOption) http.Handler {
	if d == nil {
		panic("ingress: dispatcher cannot be nil")
	}
	cfg := &routerConfig{log: logger.Discard()}
	for _, opt := range opts {
		opt(cfg)
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(RequestID)

	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(cfg.log, cfg.checks...))

	var event http.Handler = Wrap(EventHandler(d))
	if cfg.registry != nil {
		event = instrument(cfg.registry, event)
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.registry, promhttp.HandlerOpts{Registry: cfg.registry}))
	}

	r.Group(func(r chi.Router) {
		r.Use(AccessLog(cfg.log))
		r.Method(http.MethodPost, "/event", event)
	})

	return r
}

// EventHandler dispatches a notification and answers 204 whether or not it
// led to an action.
func EventHandler(d Dispatcher) HandlerFunc[provisioning.EventNotification] {
	return func(ctx context.Context, n provisioning.EventNotification) Response {
		if err := d.Dispatch(ctx, n); err != nil {
			return JSONError(err)
		}
		return Empty()
	}
}

func instrument(reg prometheus.Registerer, next http.Handler) http.Handler {
	f := promauto.With(reg)
	requests := f.NewCounterVec(prometheus.CounterOpts{
		Namespace: "provisioner",
		Name:      "http_requests_total",
		Help:      "Inbound event requests by status code.",
	}, []string{"code"})
	duration := f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "provisioner",
		Name:      "http_request_duration_seconds",
		Help:      "Inbound event request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"code"})

	return promhttp.InstrumentHandlerCounter(requests,
		promhttp.InstrumentHandlerDuration(duration, next))
}

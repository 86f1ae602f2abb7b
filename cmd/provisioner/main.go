// Command provisioner receives subscription lifecycle notifications over HTTP
// and keeps each subscription's deployment status in sync with the Gateway.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrymomot/provisioner/pkg/gateway"
	"github.com/dmitrymomot/provisioner/pkg/httpserver"
	"github.com/dmitrymomot/provisioner/pkg/ingress"
	"github.com/dmitrymomot/provisioner/pkg/logger"
	"github.com/dmitrymomot/provisioner/pkg/provisioning"
	"github.com/dmitrymomot/provisioner/pkg/redis"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "provisioner:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logOpts, err := cfg.loggerOptions()
	if err != nil {
		return err
	}
	log := logger.New(append(logOpts, logger.WithContextExtractors(ingress.RequestIDExtractor()))...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gw, err := gateway.NewFromConfig(cfg.Gateway, gateway.WithLogger(log.With(logger.Component("gateway"))))
	if err != nil {
		return err
	}

	locker, checks, closeLocker, err := newLocker(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeLocker()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	dispatcherLog := log.With(logger.Component("dispatcher"))
	dispatcher := provisioning.NewDispatcher(
		provisioning.NewFetcher(gw),
		provisioning.NewSynchronizer(gw,
			provisioning.WithDryRun(cfg.ReadOnly.Enabled()),
			provisioning.WithSynchronizerLogger(dispatcherLog),
		),
		provisioning.WithLocker(locker),
		provisioning.WithDeadline(cfg.dispatchDeadline()),
		provisioning.WithMetrics(provisioning.NewMetrics(reg)),
		provisioning.WithLogger(dispatcherLog),
	)

	router := ingress.NewRouter(dispatcher,
		ingress.WithLogger(log.With(logger.Component("ingress"))),
		ingress.WithReadinessChecks(checks...),
		ingress.WithRegistry(reg),
	)

	log.InfoContext(ctx, "starting provisioner",
		slog.String("gateway", cfg.Gateway.BaseURL),
		slog.Bool("read_only", cfg.ReadOnly.Enabled()),
		slog.String("lock_backend", cfg.LockBackend),
	)
	return httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log)).Run(ctx, router)
}

// newLocker builds the per-subscription locker. The redis backend also
// contributes a readiness check and a client to close on exit.
func newLocker(ctx context.Context, cfg appConfig, log *slog.Logger) (provisioning.Locker, []httpserver.Check, func(), error) {
	if cfg.LockBackend != lockBackendRedis {
		return provisioning.NewMemoryLocker(), nil, func() {}, nil
	}

	client, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, nil, err
	}
	locker := provisioning.NewRedisLocker(client,
		provisioning.WithLockTTL(cfg.LockTTL),
		provisioning.WithLockLogger(log.With(logger.Component("lock"))),
	)
	checks := []httpserver.Check{{Name: "redis", Fn: redis.Healthcheck(client)}}
	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Warn("failed to close redis client", logger.Error(err))
		}
	}
	return locker, checks, closeFn, nil
}

// Package httpserver runs an http.Handler with graceful shutdown and exposes
// liveness and readiness probe handlers.
//
// Server binds its listener synchronously inside Run, so bind errors are
// returned immediately wrapped with ErrStart, and Addr reports the actual
// address when an ephemeral port was requested. Run returns once ctx is
// cancelled and in-flight requests have drained within the shutdown timeout.
// Signal handling belongs to the caller:
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//	    log.Error("server stopped", logger.Error(err))
//	}
//
// ReadinessHandler runs named Check functions with a bounded timeout each and
// reports failures as 503 with a JSON body listing every check.
package httpserver

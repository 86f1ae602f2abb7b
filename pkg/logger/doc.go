// Package logger builds slog loggers for the provisioner.
//
// New returns a *slog.Logger configured through functional options: output
// format, level, static attributes and context extractors. Extractors run on
// every record and copy request-scoped values (such as the request id set by
// the ingress middleware) into the log line.
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.AppEnv, cfg.ServiceName),
//	    logger.WithContextExtractors(ingress.RequestIDExtractor()),
//	)
//	log.InfoContext(ctx, "received notification",
//	    logger.Entity(n.Entity),
//	    logger.SubscriptionID(n.ID),
//	    logger.Lifecycle(n.Lifecycle.String()),
//	)
//
// The attribute helpers in attr.go keep key names consistent across packages.
// Helpers that receive an empty value return an empty slog.Attr, which slog
// omits from the output.
package logger

// Package observability provides logging, Prometheus metrics and
// OpenTelemetry tracing for generation runs.
//
// # Logging
//
// Components take a logrus.FieldLogger at construction. The CLI builds one
// process logger:
//
//	log := observability.NewLogger(logrus.InfoLevel, observability.TextFormat, os.Stderr)
//	log.WithField("plugin", id).Debug("Resolved plugin")
//
// NopLogger is used when a component is built without a logger.
//
// # Metrics
//
// Metrics live on a private registry and are written once at the end of a
// run in the text exposition format:
//
//	metrics := observability.NewMetrics()
//	metrics.RecordStage("resolve_plugins", time.Since(start))
//	metrics.WriteToFile("/var/lib/node_exporter/protogen.prom")
//
// A nil *Metrics records nothing, so callers never need to check.
//
// # Tracing
//
// InitTracing installs an OTLP/gRPC exporter when enabled. Until then
// Tracer returns a no-op tracer and spans cost nothing.
//
//	tp, err := observability.InitTracing(ctx, cfg, log)
//	defer observability.ShutdownTracing(ctx, tp, log)
package observability

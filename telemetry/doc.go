// Package telemetry provides the observability surface of the routing
// engine: metrics sinks, audit sinks, invocation scopes, structured
// logging and an optional OpenTelemetry bootstrap.
//
// Telemetry is strictly an observer. Every sink failure, logger failure
// or panic is swallowed; a call's outcome is never changed by what this
// package does with it.
//
// # Recorders and scopes
//
// A Recorder binds a metrics Sink, an AuditSink, a Logger and a tracer.
// The router opens one Scope per routed call:
//
//	ctx, scope := recorder.StartInvocation(ctx, "search.Ranker", "Rank",
//	    "search.ranker", "ml", []string{"ml", "control"})
//	defer scope.Close()
//
//	scope.RecordVariant(ctx, "ml", "sticky")
//	scope.RecordSuccess(ctx)
//
// Close is idempotent and later Record calls become no-ops.
//
// # Bootstrap
//
// NewProvider configures the OpenTelemetry SDK (otlp, prometheus or
// stdout exporters) and hands back a Recorder wired to it. Hosts that
// already own an OTel setup can skip Provider and construct a Recorder
// from their own meter and tracer.
package telemetry

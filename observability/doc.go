// Package observability provides OpenTelemetry tracing and metrics for
// swiftkit clients.
//
// The library records spans and metrics through the global providers, which
// are no-ops until an application installs real ones:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("swiftkit"), log)
//	defer tp.Shutdown(ctx)
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("swiftkit"), log)
//	defer mp.Shutdown(ctx)
//
// Every authenticated request runs inside a "swift.request" span and every
// authentication inside a "swift.authenticate" span:
//
//	ctx, op := observability.StartOperation(ctx, observability.SpanRequest,
//	    attribute.String(observability.AttrMethod, "GET"))
//	defer op.End(err)
//
// Health checks:
//
//	health := observability.NewServiceHealth("swiftkit", version.GetVersion())
//	health.AddComponent(client.CheckHealth(ctx))
package observability

// Package observability provides OpenTelemetry tracing and metrics for the
// consultation pipeline.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("chiro-backend"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanTranscription)
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("chiro-backend"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("chiro-backend"))
//	metrics.RecordStage(ctx, "transcription", "ok", duration)
//
// Health checks:
//
//	health := observability.NewServiceHealth("chiro-backend", "1.0.0")
//	health.AddComponent(checker.CheckHealth(ctx))
package observability

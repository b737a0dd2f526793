package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"housingcli/internal/infrastructure"
)

const (
	TracerName = "housingcli.pipeline"
)

// OperationTracer provides OpenTelemetry instrumentation for pipeline runs
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewOperationTracer creates a tracer from initialized providers. A nil
// providers value traces and measures through the global no-op providers.
func NewOperationTracer(providers *infrastructure.OTelProviders) (*OperationTracer, error) {
	tracer := otel.Tracer(TracerName)
	meter := otel.Meter(TracerName)
	if providers != nil {
		if providers.Tracer != nil {
			tracer = providers.Tracer
		}
		if providers.Meter != nil {
			meter = providers.Meter
		}
	}

	metrics, err := infrastructure.CreatePipelineMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	return &OperationTracer{tracer: tracer, metrics: metrics}, nil
}

// Metrics returns the pipeline instruments
func (pt *OperationTracer) Metrics() *infrastructure.PipelineMetrics {
	return pt.metrics
}

// TraceRun creates the root span of a pipeline run
func (pt *OperationTracer) TraceRun(ctx context.Context, runID, input string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("run.input", input),
		),
	)
}

// TraceStep creates a span for individual step execution
func (pt *OperationTracer) TraceStep(ctx context.Context, runID, stepID string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, fmt.Sprintf("pipeline.step.%s", stepID),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("step.id", stepID),
		),
	)
}

// RecordStepCompletion records step completion with metrics and span events
func (pt *OperationTracer) RecordStepCompletion(ctx context.Context, span trace.Span, stepID string, duration time.Duration, rows int, err error) {
	success := err == nil
	status := "success"
	if !success {
		status = "failure"
	}

	span.SetAttributes(
		attribute.String("step.status", status),
		attribute.Float64("step.duration_seconds", duration.Seconds()),
		attribute.Int("step.rows", rows),
	)

	infrastructure.RecordStepMetrics(ctx, pt.metrics, stepID, duration, success)
	if rows > 0 {
		infrastructure.RecordRows(ctx, pt.metrics, stepID, rows)
	}

	if success {
		infrastructure.AddSpanEvent(ctx, "step.completed",
			attribute.String("step.id", stepID),
			attribute.Int("rows", rows))
		span.SetStatus(codes.Ok, "step completed successfully")
		return
	}

	infrastructure.RecordError(ctx, err,
		trace.WithAttributes(
			attribute.String("step.id", stepID),
			attribute.String("error.type", "step_execution_error"),
		),
	)
}

// RecordWarning counts a non-fatal anomaly and notes it on the current span
func (pt *OperationTracer) RecordWarning(ctx context.Context, stepID, kind, message string) {
	infrastructure.RecordWarning(ctx, pt.metrics, stepID, kind)
	infrastructure.AddSpanEvent(ctx, "step.warning",
		attribute.String("step.id", stepID),
		attribute.String("warning.kind", kind),
		attribute.String("warning.message", message))
}

// RecordArtifact counts a written file by kind
func (pt *OperationTracer) RecordArtifact(ctx context.Context, kind string) {
	infrastructure.RecordArtifact(ctx, pt.metrics, kind)
}

// RecordRunCompletion records the outcome of the whole run
func (pt *OperationTracer) RecordRunCompletion(ctx context.Context, span trace.Span, exitCode int, duration time.Duration) {
	span.SetAttributes(
		attribute.Int("run.exit_code", exitCode),
		attribute.Float64("run.duration_seconds", duration.Seconds()),
	)
	infrastructure.RecordRunMetrics(ctx, pt.metrics, exitCode, duration)

	if exitCode == 0 {
		span.SetStatus(codes.Ok, "run completed successfully")
	} else {
		span.SetStatus(codes.Error, fmt.Sprintf("run failed with exit code %d", exitCode))
	}
}


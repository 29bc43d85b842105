// Package telemetry implements ports.Tracer using OpenTelemetry, grounded
// on traiproject-same's internal/adapters/telemetry/provider.go (the
// bob-side tracer, not the cli/ TUI-bridged one — this project has no
// terminal renderer to bridge spans into, per spec.md §1's exclusion of
// terminal rendering from the core).
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"go.trai.ch/verify/internal/core/ports"
)

// OTelTracer implements ports.Tracer. It is installed as the process-wide
// tracer provider by NewProvider; absent a configured exporter, spans are
// recorded and discarded, which is sufficient to exercise EmitPlan/Start/
// End/SetAttribute/RecordError without any collector dependency.
type OTelTracer struct {
	tracer trace.Tracer
}

// NewProvider installs a bare sdktrace.TracerProvider as the global
// provider and returns an OTelTracer drawing spans from it. Call
// Shutdown when the invocation completes to flush any registered
// processors.
func NewProvider(instrumentationName string) (*OTelTracer, func(context.Context) error) {
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	return &OTelTracer{tracer: tp.Tracer(instrumentationName)}, tp.Shutdown
}

// Start creates a new span named name, a child of ctx's current span.
func (t *OTelTracer) Start(ctx context.Context, name string, opts ...ports.SpanOption) (context.Context, ports.Span) {
	cfg := &ports.SpanConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	ctx, span := t.tracer.Start(ctx, name)
	return ctx, &otelSpan{span: span}
}

// EmitPlan records the set of check names selected for one wave as an
// event on ctx's current span (spec.md §4.5/§4.7: the executor's plan for
// a run), named "plan_emitted" to match the teacher's bob-side tracer.
func (t *OTelTracer) EmitPlan(ctx context.Context, taskNames []string) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent("plan_emitted", trace.WithAttributes(
			attribute.StringSlice("tasks", taskNames),
		))
	}
}

type otelSpan struct {
	span trace.Span
}

func (s *otelSpan) End() {
	s.span.End()
}

func (s *otelSpan) RecordError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

func (s *otelSpan) SetAttribute(key string, value any) {
	switch v := value.(type) {
	case string:
		s.span.SetAttributes(attribute.String(key, v))
	case int:
		s.span.SetAttributes(attribute.Int(key, v))
	case int64:
		s.span.SetAttributes(attribute.Int64(key, v))
	case float64:
		s.span.SetAttributes(attribute.Float64(key, v))
	case bool:
		s.span.SetAttributes(attribute.Bool(key, v))
	case []string:
		s.span.SetAttributes(attribute.StringSlice(key, v))
	default:
		s.span.SetAttributes(attribute.String(key, fmt.Sprintf("%v", v)))
	}
}

// Write lets a Span double as the executor's --verbose tee target,
// recording each chunk of captured command output as a span event.
func (s *otelSpan) Write(p []byte) (int, error) {
	s.span.AddEvent("log", trace.WithAttributes(attribute.String("message", string(p))))
	return len(p), nil
}

package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/slighter12/brevo-mcp-go/tools"
	"github.com/slighter12/brevo-mcp-go/tools/types"
)

const (
	MetricInvocations = "brevo_mcp.tool.invocations"
	MetricDuration    = "brevo_mcp.tool.duration"
	SpanToolInvoke    = "tool.invoke"
)

// Observer records tool invocations as OpenTelemetry metrics and spans.
type Observer struct {
	tracer trace.Tracer

	invocations metric.Int64Counter
	duration    metric.Float64Histogram
}

// NewObserver creates an observer bound to the provided meter and tracer.
// A nil tracer disables spans.
func NewObserver(meter metric.Meter, tracer trace.Tracer) (*Observer, error) {
	invocations, err := meter.Int64Counter(
		MetricInvocations,
		metric.WithDescription("Number of tool invocations"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(
		MetricDuration,
		metric.WithDescription("Tool call latency in seconds, Brevo round trip included"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return nil, err
	}
	return &Observer{tracer: tracer, invocations: invocations, duration: duration}, nil
}

// Start opens the tool.invoke span. The returned context carries it to the
// executor so that outgoing work nests under the call.
func (o *Observer) Start(ctx context.Context, obs types.Observation) context.Context {
	if o == nil || o.tracer == nil {
		return ctx
	}
	ctx, _ = o.tracer.Start(ctx, SpanToolInvoke,
		trace.WithTimestamp(obs.Started),
		trace.WithAttributes(
			attribute.String("tool_name", obs.Tool),
			attribute.String("transport", obs.Transport),
			attribute.String("invocation_id", obs.InvocationID),
		),
	)
	return ctx
}

// Finish records the outcome and ends the span opened by Start.
func (o *Observer) Finish(ctx context.Context, obs types.Observation) {
	if o == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("tool_name", obs.Tool),
		attribute.String("transport", obs.Transport),
		attribute.String("outcome", obs.Outcome),
	}
	options := metric.WithAttributes(attrs...)
	o.invocations.Add(ctx, 1, options)
	o.duration.Record(ctx, obs.Duration.Seconds(), options)

	if o.tracer == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String("outcome", obs.Outcome))
	if obs.Status != 0 {
		span.SetAttributes(attribute.Int("http.status_code", obs.Status))
	}
	if obs.Outcome != types.OutcomeOK {
		span.SetStatus(codes.Error, obs.Outcome)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(obs.Started.Add(obs.Duration)))
}

var _ tools.Observer = (*Observer)(nil)

// Package telemetry wires OpenTelemetry metrics and tracing for tool calls.
// Metrics stay in process behind a manual reader and are exposed through
// Snapshot; spans are exported over OTLP/HTTP when an endpoint is set.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/slighter12/brevo-mcp-go/config"
	"github.com/slighter12/brevo-mcp-go/logger"
)

const instrumentationName = "github.com/slighter12/brevo-mcp-go/tools"

// Provider owns the meter and tracer providers of one process.
type Provider struct {
	reader   *sdkmetric.ManualReader
	meters   *sdkmetric.MeterProvider
	tracers  *sdktrace.TracerProvider
	observer *Observer
}

// Option customizes Setup.
type Option func(*setupOptions)

type setupOptions struct {
	spanProcessors []sdktrace.SpanProcessor
}

// WithSpanProcessor adds a span processor, used by tests to capture spans.
func WithSpanProcessor(sp sdktrace.SpanProcessor) Option {
	return func(o *setupOptions) {
		o.spanProcessors = append(o.spanProcessors, sp)
	}
}

// Setup builds the providers. A disabled config returns a Provider whose
// Observer is nil.
func Setup(ctx context.Context, cfg config.Telemetry, opts ...Option) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{}, nil
	}

	var options setupOptions
	for _, opt := range opts {
		opt(&options)
	}

	res := resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))
	reader := sdkmetric.NewManualReader()
	meters := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)

	traceOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	for _, sp := range options.spanProcessors {
		traceOpts = append(traceOpts, sdktrace.WithSpanProcessor(sp))
	}
	if cfg.OTLPEndpoint != "" {
		exporter, err := otlptracehttp.New(ctx, exporterOptions(cfg)...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}
		traceOpts = append(traceOpts, sdktrace.WithBatcher(exporter))
		logger.Info("Exporting traces over OTLP", "endpoint", cfg.OTLPEndpoint)
	}
	tracers := sdktrace.NewTracerProvider(traceOpts...)

	observer, err := NewObserver(meters.Meter(instrumentationName), tracers.Tracer(instrumentationName))
	if err != nil {
		return nil, errors.Join(err, meters.Shutdown(ctx), tracers.Shutdown(ctx))
	}

	return &Provider{
		reader:   reader,
		meters:   meters,
		tracers:  tracers,
		observer: observer,
	}, nil
}

func exporterOptions(cfg config.Telemetry) []otlptracehttp.Option {
	var opts []otlptracehttp.Option
	if strings.Contains(cfg.OTLPEndpoint, "://") {
		opts = append(opts, otlptracehttp.WithEndpointURL(cfg.OTLPEndpoint))
	} else {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.OTLPEndpoint))
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return opts
}

// Observer returns the tool observer, nil when telemetry is disabled.
func (p *Provider) Observer() *Observer {
	if p == nil {
		return nil
	}
	return p.observer
}

// Enabled reports whether metrics are being collected.
func (p *Provider) Enabled() bool {
	return p != nil && p.reader != nil
}

// Shutdown flushes pending spans and stops both providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}
	return errors.Join(p.tracers.Shutdown(ctx), p.meters.Shutdown(ctx))
}

// Snapshot is a JSON-friendly view of the collected metrics.
type Snapshot struct {
	Metrics []Metric `json:"metrics"`
}

// Metric is one instrument with its data points.
type Metric struct {
	Name   string  `json:"name"`
	Unit   string  `json:"unit,omitempty"`
	Points []Point `json:"points"`
}

// Point is one attribute combination. Counters fill Value; histograms fill
// Count and Sum.
type Point struct {
	Attributes map[string]string `json:"attributes"`
	Value      int64             `json:"value,omitempty"`
	Count      uint64            `json:"count,omitempty"`
	Sum        float64           `json:"sum,omitempty"`
}

// Snapshot collects the current cumulative metric values.
func (p *Provider) Snapshot(ctx context.Context) (Snapshot, error) {
	if !p.Enabled() {
		return Snapshot{Metrics: []Metric{}}, nil
	}

	var rm metricdata.ResourceMetrics
	if err := p.reader.Collect(ctx, &rm); err != nil {
		return Snapshot{}, fmt.Errorf("collect metrics: %w", err)
	}

	out := Snapshot{Metrics: []Metric{}}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			metric := Metric{Name: m.Name, Unit: m.Unit, Points: []Point{}}
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					metric.Points = append(metric.Points, Point{Attributes: attributeMap(dp.Attributes), Value: dp.Value})
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					metric.Points = append(metric.Points, Point{Attributes: attributeMap(dp.Attributes), Count: dp.Count, Sum: dp.Sum})
				}
			default:
				continue
			}
			sortPoints(metric.Points)
			out.Metrics = append(out.Metrics, metric)
		}
	}
	sort.Slice(out.Metrics, func(i, j int) bool {
		return out.Metrics[i].Name < out.Metrics[j].Name
	})
	return out, nil
}

func attributeMap(set attribute.Set) map[string]string {
	out := make(map[string]string, set.Len())
	for iter := set.Iter(); iter.Next(); {
		kv := iter.Attribute()
		out[string(kv.Key)] = kv.Value.Emit()
	}
	return out
}

func sortPoints(points []Point) {
	sort.Slice(points, func(i, j int) bool {
		return pointKey(points[i]) < pointKey(points[j])
	})
}

func pointKey(p Point) string {
	keys := make([]string, 0, len(p.Attributes))
	for k := range p.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(p.Attributes[k])
		b.WriteByte(';')
	}
	return b.String()
}

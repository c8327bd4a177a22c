package observe

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// AttrKioskLocation labels the resource with where the kiosk stands.
const AttrKioskLocation = attribute.Key("kiosk.location")

// ProviderConfig configures the OpenTelemetry SDK providers.
type ProviderConfig struct {
	// ServiceName defaults to "courtkiosk".
	ServiceName    string
	ServiceVersion string

	// KioskID becomes service.instance.id so several kiosks can share one
	// Prometheus. Defaults to the host name.
	KioskID string

	// Location is an optional free-form place name, e.g. "District Court,
	// ground floor".
	Location string

	// SampleRatio is the fraction of new traces recorded. Zero or one
	// samples everything. Requests that arrive with a sampled parent are
	// always recorded.
	SampleRatio float64

	// TraceExporter receives finished spans. When nil, spans are recorded
	// for log correlation but never exported.
	TraceExporter sdktrace.SpanExporter
}

// InitProvider installs global meter and tracer providers plus the W3C
// trace context propagator. Metrics are exported through a Prometheus
// bridge served by [MetricsHandler]. The returned function flushes and
// closes both providers.
func InitProvider(ctx context.Context, cfg ProviderConfig) (shutdown func(context.Context) error, err error) {
	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	promExp, err := promexporter.New()
	if err != nil {
		return nil, err
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(promExp),
	)
	tp := sdktrace.NewTracerProvider(tracerOptions(res, cfg)...)

	otel.SetMeterProvider(mp)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}

// newResource describes this kiosk process.
func newResource(ctx context.Context, cfg ProviderConfig) (*resource.Resource, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "courtkiosk"
	}
	if cfg.KioskID == "" {
		cfg.KioskID, _ = os.Hostname()
	}
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	}
	if cfg.KioskID != "" {
		attrs = append(attrs, semconv.ServiceInstanceID(cfg.KioskID))
	}
	if cfg.Location != "" {
		attrs = append(attrs, AttrKioskLocation.String(cfg.Location))
	}
	// No schema URL: the SDK default carries its own and Merge rejects a
	// second, different one.
	own, err := resource.New(ctx, resource.WithAttributes(attrs...))
	if err != nil {
		return nil, err
	}
	return resource.Merge(resource.Default(), own)
}

// tracerOptions builds the tracer provider options for cfg.
func tracerOptions(res *resource.Resource, cfg ProviderConfig) []sdktrace.TracerProviderOption {
	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if r := cfg.SampleRatio; r > 0 && r < 1 {
		opts = append(opts, sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(r))))
	}
	if cfg.TraceExporter != nil {
		opts = append(opts, sdktrace.WithBatcher(cfg.TraceExporter))
	}
	return opts
}

// MetricsHandler serves the metrics collected by the Prometheus exporter
// bridge installed by [InitProvider].
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

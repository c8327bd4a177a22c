package observe

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// kioskMux serves a small subset of the kiosk routes behind the middleware.
func kioskMux(t *testing.T) (http.Handler, *sdkmetric.ManualReader, *tracetest.InMemoryExporter) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	orig := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(orig) })

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /api/conversation", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /api/search", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	return Middleware(m)(mux), reader, exp
}

func spanAttr(s tracetest.SpanStub, key string) (attribute.Value, bool) {
	for _, a := range s.Attributes {
		if string(a.Key) == key {
			return a.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestMiddleware_SpanNamedAfterRoute(t *testing.T) {
	tests := []struct {
		method, path string
		wantSpan     string
		wantRoute    string
		wantStatus   int64
	}{
		{"GET", "/api/conversation", "GET /api/conversation", "/api/conversation", 200},
		{"POST", "/api/search", "POST /api/search", "/api/search", 503},
		{"GET", "/cases/CRM-12-2023", "HTTP GET", "", 404},
	}
	for _, tt := range tests {
		t.Run(tt.wantSpan, func(t *testing.T) {
			h, _, exp := kioskMux(t)
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tt.method, tt.path, nil))

			spans := exp.GetSpans()
			if len(spans) != 1 {
				t.Fatalf("spans = %d, want 1", len(spans))
			}
			s := spans[0]
			if s.Name != tt.wantSpan {
				t.Errorf("span name = %q, want %q", s.Name, tt.wantSpan)
			}
			v, ok := spanAttr(s, "http.route")
			if tt.wantRoute == "" {
				if ok {
					t.Errorf("unmatched request has http.route %q", v.AsString())
				}
			} else if v.AsString() != tt.wantRoute {
				t.Errorf("http.route = %q, want %q", v.AsString(), tt.wantRoute)
			}
			if v, _ := spanAttr(s, "http.response.status_code"); v.AsInt64() != tt.wantStatus {
				t.Errorf("status attribute = %d, want %d", v.AsInt64(), tt.wantStatus)
			}
		})
	}
}

func TestMiddleware_DurationByRoute(t *testing.T) {
	h, reader, _ := kioskMux(t)
	for range 2 {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/conversation", nil))
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	met := findMetric(rm, "courtkiosk.http.request.duration")
	if met == nil {
		t.Fatal("metric not found")
	}
	hist, ok := met.Data.(metricdata.Histogram[float64])
	if !ok || len(hist.DataPoints) != 1 {
		t.Fatalf("data = %#v, want one histogram point", met.Data)
	}
	dp := hist.DataPoints[0]
	if dp.Count != 2 {
		t.Errorf("count = %d, want 2", dp.Count)
	}
	if v, _ := dp.Attributes.Value("path"); v.AsString() != "/api/conversation" {
		t.Errorf("path = %q, want the route", v.AsString())
	}
	if v, _ := dp.Attributes.Value("method"); v.AsString() != "GET" {
		t.Errorf("method = %q, want GET", v.AsString())
	}
}

func TestMiddleware_CorrelationHeader(t *testing.T) {
	const traceID = "4bf92f3577b34da6a3ce929d0e0e4736"

	tests := []struct {
		name        string
		traceparent string
	}{
		{"new trace", ""},
		{"continued trace", "00-" + traceID + "-00f067aa0ba902b7-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _ := kioskMux(t)
			req := httptest.NewRequest("GET", "/api/conversation", nil)
			if tt.traceparent != "" {
				req.Header.Set("traceparent", tt.traceparent)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get(CorrelationHeader)
			if len(got) != 32 {
				t.Fatalf("%s = %q, want a 32-char trace ID", CorrelationHeader, got)
			}
			if tt.traceparent != "" && got != traceID {
				t.Errorf("%s = %q, want the incoming trace %q", CorrelationHeader, got, traceID)
			}
			if !strings.Contains(rec.Header().Get("traceparent"), got) {
				t.Errorf("traceparent = %q, want it to carry %s", rec.Header().Get("traceparent"), got)
			}
		})
	}
}

func TestMiddleware_ProbesLogAtDebug(t *testing.T) {
	h, _, _ := kioskMux(t)

	var buf bytes.Buffer
	orig := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))
	t.Cleanup(func() { slog.SetDefault(orig) })

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/healthz", nil))
	if buf.Len() != 0 {
		t.Errorf("probe logged at info: %s", buf.String())
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/search", nil))
	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "status=503") {
		t.Errorf("server error not logged as a warning: %s", out)
	}
}

func TestRoute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern, path, want string
	}{
		{"GET /ws/captions", "/ws/captions", "/ws/captions"},
		{"/readyz", "/readyz", "/readyz"},
		{"", "/unknown", "/unknown"},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", tt.path, nil)
		r.Pattern = tt.pattern
		if got := route(r); got != tt.want {
			t.Errorf("route(%q, %q) = %q, want %q", tt.pattern, tt.path, got, tt.want)
		}
	}
}

func TestStatusRecorder_HijackUnsupported(t *testing.T) {
	t.Parallel()

	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}
	if _, _, err := rec.Hijack(); err == nil {
		t.Fatal("Hijack on a recorder: want error")
	}
	if rec.statusCode != http.StatusOK {
		t.Errorf("status = %d, want unchanged", rec.statusCode)
	}
}

package observe

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope name for the kiosk tracer.
const tracerName = "github.com/MrWong99/courtkiosk"

// Span attribute keys shared by the kiosk spans.
const (
	AttrSessionID = attribute.Key("kiosk.session_id")
	AttrLanguage  = attribute.Key("kiosk.language")
	AttrOutcome   = attribute.Key("kiosk.outcome")
	AttrCaseID    = attribute.Key("kiosk.case_id")
)

type sessionKey struct{}

// Tracer returns the kiosk tracer from the global [trace.TracerProvider].
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartSpan starts a span under ctx. The caller must end it.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// StartConversation opens the root span of one visitor conversation and
// stores sessionID in the returned context for [Logger] and [SessionID].
// lang may be empty when the visitor has not chosen one yet.
func StartConversation(ctx context.Context, sessionID, lang string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{AttrSessionID.String(sessionID)}
	if lang != "" {
		attrs = append(attrs, AttrLanguage.String(lang))
	}
	ctx = WithSession(ctx, sessionID)
	return StartSpan(ctx, "kiosk.conversation", trace.WithAttributes(attrs...))
}

// EndSpan marks span failed when err is non-nil and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// WithSession returns a copy of ctx carrying the conversation session ID.
func WithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionID returns the session stored by [WithSession], or "".
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// CorrelationID returns the trace ID of the span in ctx, or "".
func CorrelationID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}

// Logger returns slog.Default() with the trace, span and session IDs found in
// ctx attached.
func Logger(ctx context.Context) *slog.Logger {
	return LoggerFrom(ctx, slog.Default())
}

// LoggerFrom is [Logger] with a caller-supplied base logger.
func LoggerFrom(ctx context.Context, l *slog.Logger) *slog.Logger {
	var attrs []any
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		attrs = append(attrs,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	if id := SessionID(ctx); id != "" {
		attrs = append(attrs, slog.String("session_id", id))
	}
	if len(attrs) == 0 {
		return l
	}
	return l.With(attrs...)
}

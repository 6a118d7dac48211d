package observe

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope name for the InfoBot tracer.
const tracerName = "github.com/MrWong99/infobot"

// Tracer returns the package-level [trace.Tracer]. It uses the globally
// registered [trace.TracerProvider].
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartSpan starts a new span and returns the updated context and span. The
// caller must end the span, typically with [EndSpan].
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// EndSpan records err on span (if non-nil), sets the span status accordingly
// and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// CorrelationID extracts the trace ID from the span context in ctx. Returns
// the empty string when no active span with a valid trace ID exists.
func CorrelationID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}

// Logger returns an [slog.Logger] enriched with trace_id and span_id from the
// span context in ctx. Without an active span it is [slog.Default].
func Logger(ctx context.Context) *slog.Logger {
	l := slog.Default()
	sc := trace.SpanContextFromContext(ctx)
	if sc.HasTraceID() {
		l = l.With(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return l
}

type servedByKey struct{}

type servedBy struct {
	mu   sync.Mutex
	name string
}

// TrackServedBy returns a context in which [MarkServedBy] records which
// provider handled a call, and a function reporting the last recorded name
// ("" if none was recorded).
func TrackServedBy(ctx context.Context) (context.Context, func() string) {
	s := &servedBy{}
	return context.WithValue(ctx, servedByKey{}, s), func() string {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.name
	}
}

// MarkServedBy records name as the provider handling the call in ctx. It is a
// no-op unless ctx comes from [TrackServedBy].
func MarkServedBy(ctx context.Context, name string) {
	if s, ok := ctx.Value(servedByKey{}).(*servedBy); ok {
		s.mu.Lock()
		s.name = name
		s.mu.Unlock()
	}
}

package observe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// testSetup installs an in-memory tracer provider for the test and returns
// metrics backed by a manual reader.
func testSetup(t *testing.T) (*Metrics, *sdkmetric.ManualReader, *tracetest.InMemoryExporter) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})
	return m, reader, exp
}

const upstreamTrace = "4bf92f3577b34da6a3ce929d0e0e4736"

func TestMiddleware_Requests(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		traceparent string
		status      int
		wantCID     string // empty: any generated 32-char id
	}{
		{name: "commands api", path: "/api/commands", status: http.StatusOK},
		{name: "readiness failing", path: "/readyz", status: http.StatusServiceUnavailable},
		{name: "unknown route", path: "/nope", status: http.StatusNotFound},
		{
			name:        "upstream trace context",
			path:        "/api/commands",
			traceparent: "00-" + upstreamTrace + "-00f067aa0ba902b7-01",
			status:      http.StatusOK,
			wantCID:     upstreamTrace,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, reader, exp := testSetup(t)

			var seenCID string
			handler := Middleware(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seenCID = CorrelationID(r.Context())
				w.WriteHeader(tt.status)
			}))

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.traceparent != "" {
				req.Header.Set("traceparent", tt.traceparent)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			switch {
			case tt.wantCID != "" && seenCID != tt.wantCID:
				t.Errorf("correlation id = %q, want %q", seenCID, tt.wantCID)
			case len(seenCID) != 32:
				t.Errorf("correlation id %q is not a trace id", seenCID)
			}
			if got := rec.Header().Get("X-Correlation-ID"); got != seenCID {
				t.Errorf("X-Correlation-ID = %q, want %q", got, seenCID)
			}

			spans := exp.GetSpans()
			if len(spans) != 1 {
				t.Fatalf("spans = %d, want 1", len(spans))
			}
			if want := "HTTP GET " + tt.path; spans[0].Name != want {
				t.Errorf("span name = %q, want %q", spans[0].Name, want)
			}
			if !hasAttr(spans[0].Attributes, attribute.Int("http.response.status_code", tt.status)) {
				t.Errorf("span lacks status attribute %d: %v", tt.status, spans[0].Attributes)
			}

			var rm metricdata.ResourceMetrics
			if err := reader.Collect(context.Background(), &rm); err != nil {
				t.Fatalf("Collect: %v", err)
			}
			met := findMetric(rm, "infobot.http.request.duration")
			if met == nil {
				t.Fatal("duration histogram not recorded")
			}
			hist := met.Data.(metricdata.Histogram[float64])
			if len(hist.DataPoints) != 1 || hist.DataPoints[0].Count != 1 {
				t.Fatalf("data points = %+v, want one sample", hist.DataPoints)
			}
			attrs := hist.DataPoints[0].Attributes
			if v, _ := attrs.Value("path"); v.AsString() != tt.path {
				t.Errorf("path attribute = %q, want %q", v.AsString(), tt.path)
			}
			if v, _ := attrs.Value("method"); v.AsString() != http.MethodGet {
				t.Errorf("method attribute = %q", v.AsString())
			}
		})
	}
}

func hasAttr(attrs []attribute.KeyValue, want attribute.KeyValue) bool {
	for _, a := range attrs {
		if a.Key == want.Key && a.Value.Emit() == want.Value.Emit() {
			return true
		}
	}
	return false
}

func TestMiddleware_HijackUnsupported(t *testing.T) {
	m, _, _ := testSetup(t)

	var hijackErr error
	handler := Middleware(m)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Fatal("wrapped writer does not implement http.Hijacker")
		}
		_, _, hijackErr = hj.Hijack()
	}))

	// httptest.ResponseRecorder cannot be hijacked.
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/ws", nil))
	if hijackErr == nil {
		t.Error("expected hijack error for a non-hijackable writer")
	}
}

func TestMiddleware_HijackThroughServer(t *testing.T) {
	m, _, _ := testSetup(t)

	handler := Middleware(m)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		conn, rw, err := http.NewResponseController(w).Hijack()
		if err != nil {
			t.Errorf("Hijack: %v", err)
			return
		}
		defer conn.Close()
		_, _ = rw.WriteString("HTTP/1.1 204 No Content\r\nConnection: close\r\n\r\n")
		_ = rw.Flush()
	}))
	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ws")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
}

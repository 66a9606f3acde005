package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newRecorder() (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	sr := tracetest.NewSpanRecorder()
	return sr, sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
}

func attrValue(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracingRecordsServerSpan(t *testing.T) {
	sr, tp := newRecorder()

	var inner trace.SpanContext
	h := RequestID(Tracing(
		WithTracerProvider(tp),
		WithAttributeExtractor(func(*http.Request) []attribute.KeyValue {
			return []attribute.KeyValue{attribute.String("test.attr", "ok")}
		}),
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner = trace.SpanContextFromContext(r.Context())
		w.WriteHeader(http.StatusNotFound)
	})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/1?x=2", nil))

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	span := spans[0]
	if span.Name() != "GET /users/1" {
		t.Errorf("span name = %q", span.Name())
	}
	if span.SpanKind() != trace.SpanKindServer {
		t.Errorf("span kind = %v", span.SpanKind())
	}
	if !inner.IsValid() || inner.SpanID() != span.SpanContext().SpanID() {
		t.Error("request context does not carry the request span")
	}
	if v, ok := attrValue(span, "http.target"); !ok || v.AsString() != "/users/1?x=2" {
		t.Errorf("http.target = %v", v)
	}
	if v, ok := attrValue(span, "http.status_code"); !ok || v.AsInt64() != 404 {
		t.Errorf("http.status_code = %v", v)
	}
	if _, ok := attrValue(span, "http.request_id"); !ok {
		t.Error("missing http.request_id")
	}
	if v, ok := attrValue(span, "test.attr"); !ok || v.AsString() != "ok" {
		t.Errorf("test.attr = %v", v)
	}
	if span.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", span.Status().Code)
	}
}

func TestTracingMarksServerErrors(t *testing.T) {
	sr, tp := newRecorder()

	h := Tracing(WithTracerProvider(tp))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got := sr.Ended()[0].Status().Code; got != codes.Error {
		t.Errorf("status = %v, want Error", got)
	}
}

func TestTracingFilterSkipsRequests(t *testing.T) {
	sr, tp := newRecorder()

	called := false
	h := Tracing(
		WithTracerProvider(tp),
		WithRequestFilter(func(r *http.Request) bool { return r.URL.Path != "/healthz" }),
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if !called {
		t.Error("filtered request did not reach the handler")
	}
	if n := len(sr.Ended()); n != 0 {
		t.Errorf("ended spans = %d, want 0", n)
	}
}

func TestOTelConfig(t *testing.T) {
	config := defaultOTelConfig()
	if config.TracerName != "prerender" {
		t.Errorf("default tracer name = %q", config.TracerName)
	}
	WithTracerName("custom")(&config)
	if config.TracerName != "custom" {
		t.Errorf("tracer name = %q", config.TracerName)
	}
}

func TestFormatSpanName(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/submit", nil)
	if got := formatSpanName(r); got != "POST /submit" {
		t.Errorf("formatSpanName = %q", got)
	}
	r.URL.Path = ""
	if got := formatSpanName(r); got != "POST /" {
		t.Errorf("formatSpanName(empty) = %q", got)
	}
}

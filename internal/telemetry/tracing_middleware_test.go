package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// newTestTracerProvider creates a tracer provider with in-memory exporter for testing.
func newTestTracerProvider(t *testing.T) (*tracetest.InMemoryExporter, *sdktrace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter, tp
}

func TestTracingMiddleware_NilProvider(t *testing.T) {
	t.Parallel()

	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusCreated)
	})

	rr := httptest.NewRecorder()
	TracingMiddleware(nil)(handler).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/forward", nil))

	assert.True(t, handlerCalled)
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestTracingMiddleware_Spans(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		wantStatus codes.Code
	}{
		{name: "success", status: http.StatusOK, wantStatus: codes.Ok},
		{name: "client error", status: http.StatusBadRequest, wantStatus: codes.Error},
		{name: "server error", status: http.StatusInternalServerError, wantStatus: codes.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			exporter, tp := newTestTracerProvider(t)

			router := chi.NewRouter()
			router.Use(TracingMiddleware(tp))
			router.Post("/api/v1/select", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/select", nil)
			req.Header.Set("User-Agent", "test-agent/1.0")
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			span := spans[0]

			assert.Equal(t, "POST /api/v1/select", span.Name)
			assert.Equal(t, tt.wantStatus, span.Status.Code)

			attrs := make(map[string]any)
			for _, kv := range span.Attributes {
				attrs[string(kv.Key)] = kv.Value.AsInterface()
			}
			assert.Equal(t, http.MethodPost, attrs[string(semconv.HTTPRequestMethodKey)])
			assert.Equal(t, "/api/v1/select", attrs[string(semconv.HTTPRouteKey)])
			assert.Equal(t, "test-agent/1.0", attrs[string(semconv.UserAgentOriginalKey)])
			assert.Equal(t, int64(tt.status), attrs[string(semconv.HTTPResponseStatusCodeKey)])
		})
	}
}

func TestTracingMiddleware_SkipsLowValueEndpoints(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"/health", "/readiness", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			t.Parallel()

			exporter, tp := newTestTracerProvider(t)
			handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			rr := httptest.NewRecorder()
			TracingMiddleware(tp)(handler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Empty(t, exporter.GetSpans())
		})
	}
}

func TestTruncateUserAgent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "short user agent unchanged", input: "Mozilla/5.0", expected: "Mozilla/5.0"},
		{
			name:     "exactly max length unchanged",
			input:    strings.Repeat("a", MaxUserAgentLength),
			expected: strings.Repeat("a", MaxUserAgentLength),
		},
		{
			name:     "exceeds max length truncated",
			input:    strings.Repeat("a", MaxUserAgentLength+100),
			expected: strings.Repeat("a", MaxUserAgentLength),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, truncateUserAgent(tt.input))
		})
	}
}

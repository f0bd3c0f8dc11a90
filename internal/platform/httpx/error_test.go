package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestWriteErrorEnvelope(t *testing.T) {
	t.Parallel()

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")
	ctx = trace.ContextWithSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID}))

	rec := httptest.NewRecorder()
	WriteError(ctx, rec, NewError("gallery_loading", "gallery is still loading\n", http.StatusServiceUnavailable).
		WithRetryAfter("5").
		WithDetails(map[string]any{"state": "loading"}))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "5", rec.Header().Get("Retry-After"))
	require.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "gallery_loading", body["error"])
	require.Equal(t, "gallery is still loading", body["message"])
	require.EqualValues(t, http.StatusServiceUnavailable, body["status"])
	require.Equal(t, "req-1", body["request_id"])
	require.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", body["trace_id"])
	require.Equal(t, "loading", body["state"])
}

func TestNewErrorDefaultsStatus(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteError(context.Background(), rec, NewError("internal_server_error", "boom", 0))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "request_id")
	require.NotContains(t, rec.Body.String(), "trace_id")
}

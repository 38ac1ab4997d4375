package observability

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"Error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}

func TestInitLogger_SetsDefault(t *testing.T) {
	for _, format := range []string{"json", "text", ""} {
		logger := InitLogger(LogConfig{Level: "debug", Format: format, Output: io.Discard})
		require.NotNil(t, logger)
		assert.Same(t, logger.Handler(), slog.Default().Handler())
		assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
	}
}

func TestInitLogger_ServiceAttribute(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger(LogConfig{Level: "info", Format: "json", Service: "settlement", Output: &buf})

	logger.Info("ready", "port", 50051)

	assert.Contains(t, buf.String(), `"service":"settlement"`)
	assert.Contains(t, buf.String(), `"port":50051`)
}

func TestInitTracer_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), TracingConfig{ServiceName: "settlement"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitMetrics_ServesRegistry(t *testing.T) {
	provider, handler, err := InitMetrics(MetricsConfig{ServiceName: "settlement"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	counter, err := provider.Meter("test").Int64Counter("settlement_test_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "settlement_test_total")
}

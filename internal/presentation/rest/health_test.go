package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dillanci/settlement/internal/presentation/rest"
)

func newMux(checks map[string]rest.Check, metrics http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	h := rest.NewHealthHandler("settlement-service", checks, slog.New(slog.NewTextHandler(io.Discard, nil)))
	h.RegisterRoutes(mux, metrics)
	return mux
}

func get(t *testing.T, mux *http.ServeMux, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestLiveness(t *testing.T) {
	rec, body := get(t, newMux(nil, nil), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "settlement-service", body["service"])
}

func TestReadiness(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	redisCheck := func(ctx context.Context) error { return client.Ping(ctx).Err() }

	t.Run("all dependencies reachable", func(t *testing.T) {
		rec, body := get(t, newMux(map[string]rest.Check{
			"redis":    redisCheck,
			"postgres": func(context.Context) error { return nil },
		}, nil), "/readyz")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ready", body["status"])
		assert.Equal(t, map[string]any{"redis": "ok", "postgres": "ok"}, body["checks"])
	})

	t.Run("a failing dependency makes the service unavailable", func(t *testing.T) {
		rec, body := get(t, newMux(map[string]rest.Check{
			"redis":    redisCheck,
			"postgres": func(context.Context) error { return errors.New("connection refused") },
		}, nil), "/readyz")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "not_ready", body["status"])
		checks := body["checks"].(map[string]any)
		assert.Equal(t, "connection refused", checks["postgres"])
		assert.Equal(t, "ok", checks["redis"])
	})

	t.Run("redis down", func(t *testing.T) {
		mr.SetError("LOADING")
		t.Cleanup(func() { mr.SetError("") })

		rec, _ := get(t, newMux(map[string]rest.Check{"redis": redisCheck}, nil), "/readyz")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("settlement_rpc_requests_total 1\n"))
	})

	rec, _ := get(t, newMux(nil, metrics), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "settlement_rpc_requests_total")

	rec, _ = get(t, newMux(nil, nil), "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

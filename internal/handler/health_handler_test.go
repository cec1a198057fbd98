package handler_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/code-quest-api/internal/config"
	"github.com/noah-isme/code-quest-api/internal/handler"
)

func TestServiceEndpoints(t *testing.T) {
	server := newTestServer(t, squareExecutor(t))

	resp, body := server.do(t, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Code Quest API", resp.Header.Get("X-Application"))
	health := decodeEnvelope[handler.HealthResponse](t, body).Data
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "test", health.Environment)
	require.Equal(t, map[string]string{"database": "ok"}, health.Dependencies)

	resp, body = server.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Welcome to Code Quest API", decodeEnvelope[any](t, body).Message)

	resp, body = server.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "codequest_http_requests_total")
}

func TestHealthCheckReportsFailingProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/health", handler.HealthCheck(config.Config{AppName: "Code Quest API"}, map[string]handler.HealthProbe{
		"redis": func(ctx context.Context) error { return errors.New("connection refused") },
	}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	health := decodeEnvelope[handler.HealthResponse](t, body).Data
	require.Equal(t, "degraded", health.Status)
	require.Equal(t, "connection refused", health.Dependencies["redis"])
}

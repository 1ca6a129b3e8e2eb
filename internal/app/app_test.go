package app_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gerador/internal/app"
	"gerador/internal/config"
	"gerador/internal/logger"
)

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func testConfig(dsn string) *config.Config {
	return &config.Config{
		Env:                 "test",
		Port:                ":0",
		DatabaseDSN:         dsn,
		QueryTimeout:        time.Second,
		JWTSecret:           "app_test_secret",
		JWTExpiration:       time.Hour,
		RabbitMQExchange:    "forms",
		CORSOrigins:         "http://localhost:3000",
		SubmitRatePerSecond: 100,
		SubmitRateBurst:     100,
		LogLevel:            "error",
	}
}

func TestNewApp_Memory(t *testing.T) {
	a, err := app.NewApp(testConfig(app.MemoryDSN))
	require.NoError(t, err)

	resp, err := a.Fiber.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "memory", health["database"])
	assert.Equal(t, "disabled", health["rabbitmq"])

	resp, err = a.Fiber.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	metricsBody, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(metricsBody), "gerador_http_requests_total")

	assert.NoError(t, a.StartConsumers())
}

func TestNewApp_SQLite(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	a, err := app.NewApp(testConfig(dsn))
	require.NoError(t, err)
	defer a.Shutdown()

	resp, err := a.Fiber.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "connected", health["database"])

	body, _ := json.Marshal(map[string]string{"email": "ann@example.com", "full_name": "Ann", "password": "secret1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = a.Fiber.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestNewApp_UnknownRoute(t *testing.T) {
	a, err := app.NewApp(testConfig(app.MemoryDSN))
	require.NoError(t, err)

	resp, err := a.Fiber.Test(httptest.NewRequest(http.MethodGet, "/nope", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var payload map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.NotEmpty(t, payload["message"])
}

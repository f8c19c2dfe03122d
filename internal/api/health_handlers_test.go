package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthCheck_Success(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get(healthPath)
	assert.Equal(t, http.StatusOK, resp.Code)

	var health HealthResponse
	env := decode(t, resp, &health)
	assert.True(t, env.Success)

	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.Components["docstore"].Status)
	assert.Equal(t, "healthy", health.Components["cache"].Status)
}

func TestHealthCheck_RemoteDownDegrades(t *testing.T) {
	ts := setupTestServer(t)
	ts.remote.Fail(http.MethodGet, "books", http.StatusServiceUnavailable)

	resp := ts.api.Get(healthPath)
	assert.Equal(t, http.StatusOK, resp.Code)

	var health HealthResponse
	decode(t, resp, &health)

	assert.Equal(t, "degraded", health.Status)
	assert.Equal(t, "degraded", health.Components["docstore"].Status)
	assert.NotEmpty(t, health.Components["docstore"].Message)
	assert.Equal(t, "healthy", health.Components["cache"].Status)
}

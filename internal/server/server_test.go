package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JorgeSaicoski/microservice-commons/middleware"
	"github.com/JorgeSaicoski/microservice-commons/responses"
	"github.com/JorgeSaicoski/timekeeper/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		ServiceName:    "timekeeper",
		ServiceVersion: "test",
		Server: config.ServerConfig{
			Port:            "0",
			GinMode:         gin.TestMode,
			AllowedOrigins:  []string{"http://localhost:3000"},
			ShutdownTimeout: time.Second,
		},
	}
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	srv := New(Options{Config: testConfig()})

	w := serve(srv.Router(), httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body middleware.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, middleware.HealthStatusHealthy, body.Status)
	assert.Equal(t, "timekeeper", body.Service)
	assert.Equal(t, "test", body.Version)
}

func TestHealth_ReportsFailingDatabase(t *testing.T) {
	srv := New(Options{
		Config: testConfig(),
		HealthCheckers: map[string]middleware.HealthChecker{
			"database": middleware.DatabaseHealthChecker(func() error { return errors.New("connection refused") }),
		},
	})

	w := serve(srv.Router(), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")

	w = serve(srv.Router(), httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetupRoutesAndCORS(t *testing.T) {
	srv := New(Options{
		Config: testConfig(),
		SetupRoutes: func(router *gin.Engine, cfg *config.Config) {
			router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, cfg.ServiceName) })
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := serve(srv.Router(), req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "timekeeper", w.Body.String())
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDReachesErrorBodies(t *testing.T) {
	srv := New(Options{
		Config: testConfig(),
		SetupRoutes: func(router *gin.Engine, _ *config.Config) {
			router.GET("/missing", func(c *gin.Context) { responses.NotFound(c, "no such thing") })
			router.GET("/panic", func(c *gin.Context) { panic("boom") })
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	w := serve(srv.Router(), req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "req-123", w.Header().Get(middleware.RequestIDHeader))
	var body responses.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "req-123", body.RequestID)
	assert.Equal(t, responses.ErrCodeNotFound, body.Code)

	w = serve(srv.Router(), httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/instafinder/backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStripPrefix(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/process-instagram", "/process-instagram"},
		{"/api", "/"},
		{"/api/", "/"},
		{"/apiary", "/apiary"},
		{"/process-instagram", "/process-instagram"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, StripPrefix(tt.path))
		})
	}
}

func TestNewDevProxy_InvalidTarget(t *testing.T) {
	for _, target := range []string{"", "localhost:8000", "://bad"} {
		_, err := NewDevProxy(target, nil)
		assert.Error(t, err, target)
	}
}

func TestDevProxy_ForwardsWithoutPrefix(t *testing.T) {
	var gotPath, gotBody, gotForwarded string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotForwarded = r.Header.Get("X-Forwarded-Host")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"detail": "Invalid URL"}`)
	}))
	defer backend.Close()

	core, logs := observer.New(zapcore.InfoLevel)
	proxy, err := NewDevProxy(backend.URL, zap.New(core))
	require.NoError(t, err)

	router := gin.New()
	router.Any(ProxyPrefix+"/*path", proxy)

	req := httptest.NewRequest(http.MethodPost, "/api/process-instagram", strings.NewReader(`{"url":"x"}`))
	req.Host = "localhost:8080"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"detail": "Invalid URL"}`, w.Body.String())
	assert.Equal(t, "/process-instagram", gotPath)
	assert.Equal(t, `{"url":"x"}`, gotBody)
	assert.Equal(t, "localhost:8080", gotForwarded)
	assert.Equal(t, 1, logs.FilterMessage("proxy response").Len())
}

func TestDevProxy_TargetWithBasePath(t *testing.T) {
	var gotPath string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	proxy, err := NewDevProxy(backend.URL+"/v1/", nil)
	require.NoError(t, err)

	router := gin.New()
	router.Any(ProxyPrefix+"/*path", proxy)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/process-instagram", nil))

	assert.Equal(t, "/v1/process-instagram", gotPath)
}

func TestDevProxy_UnavailableBackend(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	target := backend.URL
	backend.Close()

	core, logs := observer.New(zapcore.ErrorLevel)
	proxy, err := NewDevProxy(target, zap.New(core))
	require.NoError(t, err)

	router := gin.New()
	router.Any(ProxyPrefix+"/*path", proxy)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/process-instagram", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"detail":"Analysis service unavailable"}`, w.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("proxy error").Len())
}

func TestSetupRouter_ProxyRoute(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, r.URL.Path)
	}))
	defer backend.Close()

	cfg := &config.Config{
		Server: config.ServerConfig{Environment: "test"},
		Proxy:  config.ProxyConfig{Enabled: true, Target: backend.URL},
	}
	router, err := SetupRouter(cfg, NewHandler(nil, nil, HandlerConfig{}), nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/process-instagram", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/process-instagram", w.Body.String())

	cfg.Proxy.Target = "not a url"
	_, err = SetupRouter(cfg, NewHandler(nil, nil, HandlerConfig{}), nil)
	assert.Error(t, err)
}

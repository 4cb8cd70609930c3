package api

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_RequiresAPIKey(t *testing.T) {
	env := setupTestServer(t, ServerConfig{})
	srv := httptest.NewServer(env.handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/archives")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/archives", nil)
	require.NoError(t, err)
	req.Header.Set("X-API-Key", testAPIKey)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_VerifyRequiresPost(t *testing.T) {
	env := setupTestServer(t, ServerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/archives/"+env.archive.ID+"/verify", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRouter_Metrics(t *testing.T) {
	env := setupTestServer(t, ServerConfig{})

	env.do(t, http.MethodGet, "/api/v1/health")
	env.do(t, http.MethodGet, "/api/v1/archives/"+env.archive.ID+"/records?main=Rain")

	assert.Equal(t, float64(1), testutil.ToFloat64(env.server.metrics.healthChecksTotal.WithLabelValues(statusSuccess)))
	assert.Equal(t, float64(2), testutil.ToFloat64(env.server.metrics.recordsReturnedTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		env.server.metrics.httpRequestsTotal.WithLabelValues("GET", "/api/v1/health", "200")))

	srv := httptest.NewServer(env.handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "wbin_records_returned_total 2"))
}

func TestRouter_CORS(t *testing.T) {
	env := setupTestServer(t, ServerConfig{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/archives", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewMetrics_Independent(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics()
		NewMetrics()
	})
}

func freePort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestStartServer_Shutdown(t *testing.T) {
	env := setupTestServer(t, ServerConfig{})
	port := freePort(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- StartServer(ctx, env.catalog, ServerConfig{Bind: "127.0.0.1", Port: port, APIKey: testAPIKey})
	}()

	url := fmt.Sprintf("http://127.0.0.1:%d/metrics", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

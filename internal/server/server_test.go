package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MrSnakeDoc/borg-exporter/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.UseTestMode()
}

func stubHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, body)
	})
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRoutes(t *testing.T) {
	s := New(Config{Address: "127.0.0.1", Port: 9002, Metrics: stubHandler("metrics")})

	rec := do(t, s.Handler(), http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "metrics", rec.Body.String())

	rec = do(t, s.Handler(), http.MethodPost, "/metrics")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(t, s.Handler(), http.MethodGet, "/exporter/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s.Handler(), http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<a href="/metrics">`)
	assert.NotContains(t, rec.Body.String(), "/exporter/metrics")

	assert.Equal(t, "127.0.0.1:9002", s.Addr())
}

func TestRoutes_ExporterMetrics(t *testing.T) {
	s := New(Config{Metrics: stubHandler("metrics"), ExporterMetrics: stubHandler("self")})

	rec := do(t, s.Handler(), http.MethodGet, "/exporter/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "self", rec.Body.String())

	rec = do(t, s.Handler(), http.MethodGet, "/")
	assert.Contains(t, rec.Body.String(), "/exporter/metrics")
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := New(Config{Metrics: stubHandler("ok")})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

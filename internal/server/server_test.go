package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/tallyline/internal/config"
	"github.com/vanshika/tallyline/internal/logging"
)

func TestServer_StartAndShutdown(t *testing.T) {
	cfg := config.Defaults().HTTP
	cfg.Host = "127.0.0.1"
	cfg.Port = 0

	srv := New(logging.Discard(), cfg, http.NotFoundHandler())
	assert.Equal(t, "127.0.0.1:0", srv.Addr())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	require.NoError(t, srv.Shutdown(context.Background()))
	require.NoError(t, <-errCh)
}

func TestCORSMiddleware(t *testing.T) {
	router := NewRouter(logging.Discard(), RouterDependencies{
		AllowedOrigins:   []string{"https://review.example"},
		AllowCredentials: true,
	})

	rec := doRequest(router, http.MethodGet, "/healthz", "")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req := newRequestWithOrigin(http.MethodOptions, "/totals", "https://review.example")
	rec2 := serve(router, req)
	assert.Equal(t, http.StatusNoContent, rec2.Code)
	assert.Equal(t, "https://review.example", rec2.Header().Get("Access-Control-Allow-Origin"))

	req = newRequestWithOrigin(http.MethodOptions, "/totals", "https://evil.example")
	assert.Equal(t, http.StatusForbidden, serve(router, req).Code)
}

func newRequestWithOrigin(method, target, origin string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Origin", origin)
	return req
}

func serve(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

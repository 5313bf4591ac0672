package server

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abgdnv/stockguard/pkg/config"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
)

func TestNewHTTPServer_FromConfig(t *testing.T) {
	// given
	var c config.HTTPConfig
	c.Port = 8080
	c.MaxHeaderBytes = 1 << 20
	c.Timeout.Read = 5 * time.Second
	c.Timeout.Write = 10 * time.Second
	c.Timeout.Idle = time.Minute
	c.Timeout.ReadHeader = 2 * time.Second
	// when
	srv := NewHTTPServer(FromConfig(c), http.NotFoundHandler())
	// then
	assert.Equal(t, ":8080", srv.Addr)
	assert.Equal(t, 1<<20, srv.MaxHeaderBytes)
	assert.Equal(t, 5*time.Second, srv.ReadTimeout)
	assert.Equal(t, 10*time.Second, srv.WriteTimeout)
	assert.Equal(t, time.Minute, srv.IdleTimeout)
	assert.Equal(t, 2*time.Second, srv.ReadHeaderTimeout)
}

func TestNewChiRouter(t *testing.T) {
	// given
	mux := NewChiRouter(slog.Default())
	mux.Get("/ping", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	rr := httptest.NewRecorder()
	// when
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "//ping", nil))
	// then
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
}

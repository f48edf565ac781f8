package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avpress/convertd/internal/http/handlers"
)

func TestNewServer_RegistersMiddleware(t *testing.T) {
	server := NewServer(DefaultServerConfig(), nil, "test")

	server.Router().Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/ping", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestNewServer_HumaOperations(t *testing.T) {
	server := NewServer(DefaultServerConfig(), nil, "test")
	handlers.NewFormatsHandler().Register(server.API())

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/formats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mp3")
	assert.Contains(t, rec.Body.String(), "mp4")
}

func TestServer_PanicIsolation(t *testing.T) {
	server := NewServer(DefaultServerConfig(), nil, "test")

	server.Router().Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		server.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/boom", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig()

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Positive(t, cfg.ShutdownTimeout)
}

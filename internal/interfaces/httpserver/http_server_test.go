package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/surprise-api/internal/config"
	domain "github.com/janhq/surprise-api/internal/domain/surprise"
	"github.com/janhq/surprise-api/internal/infrastructure/qrcode"
	repository "github.com/janhq/surprise-api/internal/infrastructure/repository/surprise"
	"github.com/janhq/surprise-api/internal/infrastructure/storage"
)

func newTestServer(t *testing.T) *HttpServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		ServiceName:         "surprise-api",
		Environment:         "test",
		HTTPPort:            0,
		ShutdownTimeout:     time.Second,
		CORSAllowedOrigins:  []string{"*"},
		RecordBackend:       config.RecordBackendMemory,
		StorageBackend:      config.StorageBackendLocal,
		LocalStoragePath:    t.TempDir(),
		LocalStorageBaseURL: "/api/files",
		MaxUploadBytes:      50 * 1024 * 1024,
		MinMessageLength:    1,
		QRCodeSize:          200,
		QRCodeMargin:        2,
	}
	log := zerolog.Nop()
	store, err := storage.NewLocalStorage(cfg, log)
	require.NoError(t, err)
	service := domain.NewService(cfg, repository.NewMemoryRepository(), store, qrcode.NewGenerator(cfg), log)

	srv, err := New(cfg, log, service)
	require.NoError(t, err)
	return srv
}

func TestCoreRoutes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		path   string
		status int
	}{
		{"/healthz", http.StatusOK},
		{"/readyz", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/api", http.StatusOK},
		{"/", http.StatusOK},
		{"/success", http.StatusOK},
		{"/surprise/V1StGXR8_Z5j", http.StatusOK},
		{"/static/app.css", http.StatusOK},
		{"/api/surprises/V1StGXR8_Z5j", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/surprises", nil)
	req.Header.Set("Origin", "https://gift.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Less(t, w.Code, 300)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRunStopsOnCancel(t *testing.T) {
	srv := newTestServer(t)
	srv.cfg.HTTPPort = 0

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

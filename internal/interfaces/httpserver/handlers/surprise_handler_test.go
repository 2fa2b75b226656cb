package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/surprise-api/internal/config"
	domain "github.com/janhq/surprise-api/internal/domain/surprise"
	"github.com/janhq/surprise-api/internal/infrastructure/qrcode"
	repository "github.com/janhq/surprise-api/internal/infrastructure/repository/surprise"
	"github.com/janhq/surprise-api/internal/infrastructure/storage"
	"github.com/janhq/surprise-api/internal/interfaces/httpserver/handlers"
	"github.com/janhq/surprise-api/internal/interfaces/httpserver/middlewares"
	v1 "github.com/janhq/surprise-api/internal/interfaces/httpserver/routes/v1"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func newTestRouter(t *testing.T, mutate ...func(*config.Config)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		ServiceName:         "surprise-api",
		RecordBackend:       config.RecordBackendMemory,
		StorageBackend:      config.StorageBackendLocal,
		LocalStoragePath:    t.TempDir(),
		LocalStorageBaseURL: "/api/files",
		MaxUploadBytes:      50 * 1024 * 1024,
		MinMessageLength:    1,
		QRCodeSize:          200,
		QRCodeMargin:        2,
	}
	for _, m := range mutate {
		m(cfg)
	}

	log := zerolog.Nop()
	store, err := storage.NewLocalStorage(cfg, log)
	require.NoError(t, err)
	service := domain.NewService(cfg, repository.NewMemoryRepository(), store, qrcode.NewGenerator(cfg), log)

	router := gin.New()
	router.Use(middlewares.RequestID())
	v1.NewRoutes(handlers.NewProvider(cfg, service, log)).Register(router.Group("/"))
	return router
}

type upload struct {
	filename string
	content  []byte
	message  *string
	password string
}

func strPtr(s string) *string { return &s }

func postSurprise(t *testing.T, router *gin.Engine, u upload) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if u.content != nil {
		part, err := writer.CreateFormFile("file", u.filename)
		require.NoError(t, err)
		_, err = part.Write(u.content)
		require.NoError(t, err)
	}
	if u.message != nil {
		require.NoError(t, writer.WriteField("message", *u.message))
	}
	if u.password != "" {
		require.NoError(t, writer.WriteField("password", u.password))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/surprises", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Host = "surprise.test"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createSurprise(t *testing.T, router *gin.Engine, password string) map[string]any {
	t.Helper()
	w := postSurprise(t, router, upload{
		filename: "photo.png",
		content:  pngBytes,
		message:  strPtr("Happy birthday!"),
		password: password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	return created
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload
}

func TestCreateThenGet(t *testing.T) {
	router := newTestRouter(t)

	created := createSurprise(t, router, "")
	slug, _ := created["slug"].(string)
	require.True(t, domain.ValidateSlug(slug))
	assert.Equal(t, false, created["hasPassword"])
	assert.Equal(t, "http://surprise.test/surprise/"+slug, created["shareUrl"])
	assert.True(t, strings.HasPrefix(created["qrCode"].(string), "data:image/png;base64,"))
	assert.True(t, strings.HasPrefix(created["fileUrl"].(string), "/api/files/"+slug+"-"))

	w := doJSON(router, http.MethodGet, "/api/surprises/"+slug, "")
	require.Equal(t, http.StatusOK, w.Code)
	var view map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "Happy birthday!", view["message"])
	assert.Equal(t, "image/png", view["mimeType"])
	assert.Equal(t, "photo.png", view["originalName"])
	assert.Equal(t, false, view["hasPassword"])
	assert.Equal(t, created["fileUrl"], view["fileUrl"])
	assert.NotContains(t, view, "password")
	assert.NotContains(t, view, "passwordHash")

	again := doJSON(router, http.MethodGet, "/api/surprises/"+slug, "")
	assert.Equal(t, w.Body.String(), again.Body.String())
}

func TestCreateUsesOriginHeader(t *testing.T) {
	router := newTestRouter(t)
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "photo.png")
	require.NoError(t, err)
	_, _ = part.Write(pngBytes)
	require.NoError(t, writer.WriteField("message", "hi"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/surprises", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Origin", "https://gift.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, strings.HasPrefix(created["shareUrl"].(string), "https://gift.example.com/surprise/"))
}

func TestCreateValidation(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name    string
		upload  upload
		message string
	}{
		{
			name:    "missing file",
			upload:  upload{message: strPtr("hello")},
			message: "No file uploaded",
		},
		{
			name:    "missing message",
			upload:  upload{filename: "photo.png", content: pngBytes},
			message: "Message is required",
		},
		{
			name:    "blank message",
			upload:  upload{filename: "photo.png", content: pngBytes, message: strPtr("   ")},
			message: "Message is required",
		},
		{
			name:    "not media",
			upload:  upload{filename: "notes.txt", content: []byte("just some text"), message: strPtr("hello")},
			message: "Only images and videos are allowed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postSurprise(t, router, tt.upload)
			require.Equal(t, http.StatusBadRequest, w.Code)
			payload := decodeError(t, w)
			assert.Equal(t, tt.message, payload["message"])
			assert.NotEmpty(t, payload["request_id"])
		})
	}
}

func TestCreateRejectsNonMultipart(t *testing.T) {
	router := newTestRouter(t)
	w := doJSON(router, http.MethodPost, "/api/surprises", `{"message":"hi"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No file uploaded", decodeError(t, w)["message"])
}

func TestCreateTooLarge(t *testing.T) {
	router := newTestRouter(t, func(cfg *config.Config) {
		cfg.MaxUploadBytes = 1 << 20
	})

	content := append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{0}, 1<<20)...)
	w := postSurprise(t, router, upload{filename: "big.png", content: content, message: strPtr("hello")})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "File too large. Maximum size is 1MB", decodeError(t, w)["message"])

	// Far beyond the request limit the body reader stops early.
	huge := append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{0}, 3<<20)...)
	w = postSurprise(t, router, upload{filename: "huge.png", content: huge, message: strPtr("hello")})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "File too large. Maximum size is 1MB", decodeError(t, w)["message"])
}

func TestCreateMinimumMessageLength(t *testing.T) {
	router := newTestRouter(t, func(cfg *config.Config) {
		cfg.MinMessageLength = 10
	})
	w := postSurprise(t, router, upload{filename: "photo.png", content: pngBytes, message: strPtr("short")})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Message must be at least 10 characters", decodeError(t, w)["message"])
}

func TestGetUnknownSlug(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/api/surprises/doesNotExist", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Surprise not found", decodeError(t, w)["message"])

	w = doJSON(router, http.MethodGet, "/api/surprises/bad%20slug", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVerifyPassword(t *testing.T) {
	router := newTestRouter(t)

	open := createSurprise(t, router, "")
	locked := createSurprise(t, router, "hunter2")
	assert.Equal(t, true, locked["hasPassword"])

	lockedSlug := locked["slug"].(string)
	view := doJSON(router, http.MethodGet, "/api/surprises/"+lockedSlug, "")
	require.Equal(t, http.StatusOK, view.Code)
	assert.NotContains(t, view.Body.String(), "hunter2")
	assert.NotContains(t, view.Body.String(), "argon2id")

	tests := []struct {
		name    string
		slug    string
		body    string
		status  int
		message string
	}{
		{"unprotected", open["slug"].(string), `{"password":"anything"}`, http.StatusBadRequest, "This surprise is not password protected"},
		{"unknown slug", "doesNotExist", `{"password":"hunter2"}`, http.StatusNotFound, "Surprise not found"},
		{"missing password", lockedSlug, `{}`, http.StatusBadRequest, "Password is required"},
		{"malformed body", lockedSlug, `not json`, http.StatusBadRequest, "Password is required"},
		{"wrong password", lockedSlug, `{"password":"nope"}`, http.StatusUnauthorized, "Incorrect password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/api/surprises/"+tt.slug+"/verify-password", tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.message, decodeError(t, w)["message"])
		})
	}

	t.Run("correct password", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/surprises/"+lockedSlug+"/verify-password", `{"password":"hunter2"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true}`, w.Body.String())
	})
}

func TestServeFile(t *testing.T) {
	router := newTestRouter(t)
	created := createSurprise(t, router, "")

	w := doJSON(router, http.MethodGet, created["fileUrl"].(string), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Cache-Control"), "immutable")
	assert.Equal(t, pngBytes, w.Body.Bytes())

	missing := doJSON(router, http.MethodGet, "/api/files/missing.png", "")
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestServeFile_MarkupNameIsNotServedAsHTML(t *testing.T) {
	router := newTestRouter(t)

	script := []byte("<script>alert(document.domain)</script>")
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="x.html"`)
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, _ = part.Write(script)
	require.NoError(t, writer.WriteField("message", "hello"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/surprises", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	fileURL := created["fileUrl"].(string)
	assert.True(t, strings.HasSuffix(fileURL, ".png"), fileURL)

	served := doJSON(router, http.MethodGet, fileURL, "")
	require.Equal(t, http.StatusOK, served.Code)
	assert.NotContains(t, served.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, "image/png", served.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", served.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, served.Header().Get("Content-Security-Policy"), "sandbox")
}

func TestServeFile_HiddenFilesAreNotServed(t *testing.T) {
	dir := t.TempDir()
	router := newTestRouter(t, func(cfg *config.Config) {
		cfg.LocalStoragePath = dir
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".upload-1234"), []byte("partial"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".health_check"), []byte("ok"), 0o644))

	for _, name := range []string{".health_check", ".upload-1234"} {
		w := doJSON(router, http.MethodGet, "/api/files/"+name, "")
		assert.Equal(t, http.StatusNotFound, w.Code, name)
	}
}

func TestAPIIndex(t *testing.T) {
	router := newTestRouter(t)
	w := doJSON(router, http.MethodGet, "/api", "")
	require.Equal(t, http.StatusOK, w.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "Digital Surprise Sharing API", payload["message"])
	assert.Equal(t, "running", payload["status"])
	assert.Contains(t, payload["endpoints"], "createSurprise")
}

func TestBirthdayJPEGWithPassword(t *testing.T) {
	router := newTestRouter(t)

	jpeg := append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, bytes.Repeat([]byte{0x11}, 2048)...)
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="photo.jpg"`)
	header.Set("Content-Type", "image/jpeg")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, _ = part.Write(jpeg)
	require.NoError(t, writer.WriteField("message", "Happy Birthday!!"))
	require.NoError(t, writer.WriteField("password", "secret1"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/surprises", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, true, created["hasPassword"])
	slug := created["slug"].(string)

	view := doJSON(router, http.MethodGet, "/api/surprises/"+slug, "")
	require.Equal(t, http.StatusOK, view.Code)
	assert.Contains(t, view.Body.String(), `"message":"Happy Birthday!!"`)
	assert.Contains(t, view.Body.String(), `"mimeType":"image/jpeg"`)

	ok := doJSON(router, http.MethodPost, "/api/surprises/"+slug+"/verify-password", `{"password":"secret1"}`)
	require.Equal(t, http.StatusOK, ok.Code)
	assert.JSONEq(t, `{"success":true}`, ok.Body.String())

	wrong := doJSON(router, http.MethodPost, "/api/surprises/"+slug+"/verify-password", `{"password":"secret2"}`)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
}

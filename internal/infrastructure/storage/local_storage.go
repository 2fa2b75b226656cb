package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/janhq/surprise-api/internal/config"
)

const backendLocal = "local"

var errKeyOutsideRoot = errors.New("key escapes storage root")

// LocalStorage handles uploads and downloads to the local filesystem.
type LocalStorage struct {
	basePath string
	baseURL  string
	log      zerolog.Logger
}

// NewLocalStorage creates a new local filesystem storage backend.
func NewLocalStorage(cfg *config.Config, log zerolog.Logger) (*LocalStorage, error) {
	logger := log.With().Str("component", "local-storage").Logger()

	basePath := strings.TrimSpace(cfg.LocalStoragePath)
	if basePath == "" {
		return nil, fmt.Errorf("SURPRISE_LOCAL_STORAGE_PATH is empty")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create local storage directory: %w", err)
	}

	storage := &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimSpace(cfg.LocalStorageBaseURL),
		log:      logger,
	}

	logger.Info().
		Str("path", basePath).
		Str("base_url", storage.baseURL).
		Msg("local storage initialized")

	return storage, nil
}

func (l *LocalStorage) resolve(key string) (string, error) {
	fullPath := filepath.Join(l.basePath, filepath.FromSlash(key))
	rel, err := filepath.Rel(l.basePath, fullPath)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", errKeyOutsideRoot
	}
	return fullPath, nil
}

// Upload writes the body to a temporary file and renames it into place.
func (l *LocalStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (err error) {
	started := time.Now()
	defer func() { observe(backendLocal, "upload", started, err) }()

	fullPath, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	written, err := io.Copy(tmp, body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return fmt.Errorf("failed to finalize file: %w", err)
	}

	l.log.Debug().
		Str("key", key).
		Int64("bytes", written).
		Str("content_type", contentType).
		Msg("file uploaded to local storage")

	return nil
}

// URL returns the API path the file is served from.
func (l *LocalStorage) URL(ctx context.Context, key string) (string, error) {
	if _, err := l.resolve(key); err != nil {
		return "", err
	}
	if l.baseURL != "" {
		return joinURL(l.baseURL, key), nil
	}
	return "file://" + filepath.Join(l.basePath, filepath.FromSlash(key)), nil
}

// Download opens a stored file.
func (l *LocalStorage) Download(ctx context.Context, key string) (rc io.ReadCloser, contentType string, err error) {
	started := time.Now()
	defer func() { observe(backendLocal, "download", started, err) }()

	fullPath, err := l.resolve(key)
	if err != nil {
		return nil, "", notFound(ctx, key, err)
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", notFound(ctx, key, err)
		}
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	if info, statErr := file.Stat(); statErr == nil && info.IsDir() {
		file.Close()
		return nil, "", notFound(ctx, key, errors.New("is a directory"))
	}

	return file, detectContentTypeFromPath(fullPath), nil
}

// Health checks if the storage directory is writable.
func (l *LocalStorage) Health(ctx context.Context) error {
	testFile := filepath.Join(l.basePath, ".health_check")
	if err := os.WriteFile(testFile, []byte("ok"), 0o644); err != nil {
		return fmt.Errorf("storage directory not writable: %w", err)
	}
	_ = os.Remove(testFile)
	return nil
}

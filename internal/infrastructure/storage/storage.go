package storage

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/janhq/surprise-api/internal/config"
	domain "github.com/janhq/surprise-api/internal/domain/surprise"
	"github.com/janhq/surprise-api/internal/infrastructure/metrics"
	"github.com/janhq/surprise-api/internal/utils/platformerrors"
)

// New creates the blob storage backend selected by SURPRISE_STORAGE_BACKEND.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (domain.Storage, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendS3:
		s3Storage, err := NewS3Storage(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return s3Storage, nil
	case config.StorageBackendMinio:
		minioStorage, err := NewMinioStorage(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return minioStorage, nil
	case config.StorageBackendLocal, "":
		localStorage, err := NewLocalStorage(cfg, log)
		if err != nil {
			return nil, err
		}
		return localStorage, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}

// joinURL appends a key to a base URL or path, escaping each key segment.
func joinURL(base, key string) string {
	segments := strings.Split(strings.TrimPrefix(filepath.ToSlash(key), "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.Join(segments, "/")
}

// detectContentTypeFromPath determines the content type from a file extension.
func detectContentTypeFromPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	}
	if byExt := mime.TypeByExtension(ext); byExt != "" {
		return byExt
	}
	return "application/octet-stream"
}

func notFound(ctx context.Context, key string, err error) error {
	return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeNotFound,
		"File not found", fmt.Errorf("key %s: %w", key, err), "4af56a7b-8c9d-4e0f-9a2b-2c3d4e5f6a7b")
}

func observe(backend, operation string, started time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordStorageOperation(backend, operation, status, time.Since(started).Seconds())
}

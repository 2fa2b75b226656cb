package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/janhq/surprise-api/internal/config"
)

const backendMinio = "minio"

// MinioStorage stores surprise content in a MinIO bucket.
type MinioStorage struct {
	client    *minio.Client
	bucket    string
	publicURL string
	proxyURL  string
	log       zerolog.Logger
}

// NewMinioStorage connects to MinIO and creates the bucket when missing.
func NewMinioStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*MinioStorage, error) {
	logger := log.With().Str("component", "minio-storage").Logger()

	endpoint, secure, err := minioEndpoint(cfg.S3Endpoint, cfg.MinioUseSSL)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKeyID, cfg.S3SecretKey, ""),
		Secure: secure,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}

	storage := &MinioStorage{
		client:   client,
		bucket:   cfg.S3Bucket,
		proxyURL: cfg.LocalStorageBaseURL,
		log:      logger,
	}
	if cfg.S3PublicEndpoint != "" {
		storage.publicURL = joinURL(cfg.S3PublicEndpoint, cfg.S3Bucket)
	}

	if err := storage.ensureBucket(ctx, cfg.S3Region); err != nil {
		return nil, err
	}

	logger.Info().Str("endpoint", endpoint).Str("bucket", cfg.S3Bucket).Msg("minio storage initialized")
	return storage, nil
}

// minioEndpoint strips the scheme from an endpoint; minio-go expects host[:port].
func minioEndpoint(raw string, useSSL bool) (string, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, errors.New("minio endpoint is not configured")
	}
	if !strings.Contains(raw, "://") {
		return strings.TrimSuffix(raw, "/"), useSSL, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false, fmt.Errorf("parse minio endpoint: %w", err)
	}
	return u.Host, u.Scheme == "https", nil
}

func (m *MinioStorage) ensureBucket(ctx context.Context, region string) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", m.bucket, err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", m.bucket, err)
	}
	m.log.Info().Str("bucket", m.bucket).Msg("created bucket")
	return nil
}

func (m *MinioStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (err error) {
	started := time.Now()
	defer func() { observe(backendMinio, "upload", started, err) }()

	if size <= 0 {
		size = -1
	}
	info, err := m.client.PutObject(ctx, m.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return err
	}
	m.log.Debug().Str("key", key).Int64("bytes", info.Size).Msg("object uploaded")
	return nil
}

func (m *MinioStorage) URL(ctx context.Context, key string) (string, error) {
	if m.publicURL != "" {
		return joinURL(m.publicURL, key), nil
	}
	return joinURL(m.proxyURL, key), nil
}

func (m *MinioStorage) Download(ctx context.Context, key string) (rc io.ReadCloser, contentType string, err error) {
	started := time.Now()
	defer func() { observe(backendMinio, "download", started, err) }()

	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", err
	}
	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, "", notFound(ctx, key, err)
		}
		return nil, "", err
	}
	return obj, stat.ContentType, nil
}

func (m *MinioStorage) Health(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", m.bucket)
	}
	return nil
}

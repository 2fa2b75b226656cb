package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"

	"github.com/janhq/surprise-api/internal/config"
)

const backendS3 = "s3"

// S3Storage handles uploads and downloads to S3-compatible storage.
type S3Storage struct {
	bucket    string
	client    *s3.Client
	publicURL string
	proxyURL  string
	log       zerolog.Logger
}

func NewS3Storage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*S3Storage, error) {
	logger := log.With().Str("component", "s3-storage").Logger()

	bucket := strings.TrimSpace(cfg.S3Bucket)
	accessKey := strings.TrimSpace(cfg.S3AccessKeyID)
	secretKey := strings.TrimSpace(cfg.S3SecretKey)
	if bucket == "" || accessKey == "" || secretKey == "" {
		return nil, errors.New("SURPRISE_S3_BUCKET and credentials are required for s3 storage")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3UsePathStyle
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	storage := &S3Storage{
		bucket:   bucket,
		client:   client,
		proxyURL: cfg.LocalStorageBaseURL,
		log:      logger,
	}
	if cfg.S3PublicEndpoint != "" {
		storage.publicURL = joinURL(cfg.S3PublicEndpoint, bucket)
	}

	logger.Info().Str("bucket", bucket).Str("endpoint", cfg.S3Endpoint).Msg("s3 storage initialized")
	return storage, nil
}

func (s *S3Storage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (err error) {
	started := time.Now()
	defer func() { observe(backendS3, "upload", started, err) }()

	// The SDK signs the payload, which needs a seekable body.
	if _, ok := body.(io.ReadSeeker); !ok {
		data, readErr := io.ReadAll(body)
		if readErr != nil {
			return fmt.Errorf("buffer upload: %w", readErr)
		}
		body = bytes.NewReader(data)
		size = int64(len(data))
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return err
	}
	s.log.Debug().Str("key", key).Int64("bytes", size).Msg("object uploaded")
	return nil
}

// URL returns the public object URL when a public endpoint is configured,
// otherwise the API path that proxies the object.
func (s *S3Storage) URL(ctx context.Context, key string) (string, error) {
	if s.publicURL != "" {
		return joinURL(s.publicURL, key), nil
	}
	return joinURL(s.proxyURL, key), nil
}

func (s *S3Storage) Download(ctx context.Context, key string) (rc io.ReadCloser, contentType string, err error) {
	started := time.Now()
	defer func() { observe(backendS3, "download", started, err) }()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, "", notFound(ctx, key, err)
		}
		return nil, "", err
	}
	mime := ""
	if out.ContentType != nil {
		mime = *out.ContentType
	}
	return out.Body, mime, nil
}

// Health performs a HeadBucket request.
func (s *S3Storage) Health(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}

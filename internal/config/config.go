package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Storage and record backends understood by the service.
const (
	StorageBackendLocal = "local"
	StorageBackendS3    = "s3"
	StorageBackendMinio = "minio"

	RecordBackendPostgres = "postgres"
	RecordBackendBolt     = "bolt"
	RecordBackendMemory   = "memory"
)

// Config holds the environment driven configuration for the surprise service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"surprise-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"SURPRISE_API_PORT" envDefault:"5000"`
	LogLevel        string        `env:"SURPRISE_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"SURPRISE_LOG_FORMAT" envDefault:""`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Public URL used to build share links (e.g. https://surprise.example.com).
	// When empty the request Origin header or Host is used.
	PublicBaseURL      string   `env:"PUBLIC_URL"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// Record store
	RecordBackend  string        `env:"SURPRISE_RECORD_BACKEND" envDefault:"postgres"` // postgres, bolt or memory
	DBQueryTimeout time.Duration `env:"DB_QUERY_TIMEOUT" envDefault:"5s"`

	DBPostgresqlWriteDSN string        `env:"DB_POSTGRESQL_WRITE_DSN"`
	DBPostgresqlRead1DSN string        `env:"DB_POSTGRESQL_READ1_DSN"` // Optional read replica
	DBMaxIdleConns       int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns       int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime       time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	BoltPath string `env:"SURPRISE_BOLT_PATH" envDefault:"./data/surprises.db"`

	// Redis read-through cache for slug lookups (disabled when RedisAddr is empty)
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	RedisCacheTTL time.Duration `env:"REDIS_CACHE_TTL" envDefault:"1h"`

	// In-process LRU used for slug lookups when Redis is not configured (0 disables)
	MemoryCacheSize int `env:"SURPRISE_MEMORY_CACHE_SIZE" envDefault:"0"`

	// Storage Backend Selection
	StorageBackend string        `env:"SURPRISE_STORAGE_BACKEND" envDefault:"local"` // local, s3 or minio
	StorageTimeout time.Duration `env:"SURPRISE_STORAGE_TIMEOUT" envDefault:"60s"`

	// Local Storage Configuration
	LocalStoragePath    string `env:"SURPRISE_LOCAL_STORAGE_PATH" envDefault:"./uploads"`
	LocalStorageBaseURL string `env:"SURPRISE_LOCAL_STORAGE_BASE_URL" envDefault:"/api/files"`

	// S3 / MinIO Storage Configuration
	S3Endpoint       string `env:"SURPRISE_S3_ENDPOINT"`
	S3PublicEndpoint string `env:"SURPRISE_S3_PUBLIC_ENDPOINT"`
	S3Region         string `env:"SURPRISE_S3_REGION" envDefault:"us-east-1"`
	S3Bucket         string `env:"SURPRISE_S3_BUCKET"`
	S3AccessKeyID    string `env:"SURPRISE_S3_ACCESS_KEY_ID"`
	S3SecretKey      string `env:"SURPRISE_S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle   bool   `env:"SURPRISE_S3_USE_PATH_STYLE" envDefault:"true"`
	MinioUseSSL      bool   `env:"SURPRISE_MINIO_USE_SSL" envDefault:"false"`

	// Upload rules
	MaxUploadBytes   int64 `env:"SURPRISE_MAX_UPLOAD_BYTES" envDefault:"52428800"`
	MinMessageLength int   `env:"SURPRISE_MIN_MESSAGE_LENGTH" envDefault:"1"`

	// QR code rendering
	QRCodeSize   int `env:"SURPRISE_QR_SIZE" envDefault:"200"`
	QRCodeMargin int `env:"SURPRISE_QR_MARGIN" envDefault:"2"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	c.RecordBackend = strings.ToLower(strings.TrimSpace(c.RecordBackend))
	c.StorageBackend = strings.ToLower(strings.TrimSpace(c.StorageBackend))
	c.PublicBaseURL = strings.TrimSuffix(strings.TrimSpace(c.PublicBaseURL), "/")
	c.S3Bucket = strings.TrimSpace(c.S3Bucket)
	c.S3AccessKeyID = strings.TrimSpace(c.S3AccessKeyID)
	c.S3SecretKey = strings.TrimSpace(c.S3SecretKey)
	c.S3Endpoint = strings.TrimSpace(c.S3Endpoint)
	c.S3PublicEndpoint = strings.TrimSpace(c.S3PublicEndpoint)

	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 50 * 1024 * 1024
	}
	if c.MinMessageLength <= 0 {
		c.MinMessageLength = 1
	}
	if c.QRCodeSize <= 0 {
		c.QRCodeSize = 200
	}
	if c.QRCodeMargin < 0 {
		c.QRCodeMargin = 0
	}

	switch c.RecordBackend {
	case RecordBackendPostgres:
		if strings.TrimSpace(c.DBPostgresqlWriteDSN) == "" {
			return fmt.Errorf("DB_POSTGRESQL_WRITE_DSN is required when SURPRISE_RECORD_BACKEND is postgres")
		}
	case RecordBackendBolt:
		if strings.TrimSpace(c.BoltPath) == "" {
			return fmt.Errorf("SURPRISE_BOLT_PATH is required when SURPRISE_RECORD_BACKEND is bolt")
		}
	case RecordBackendMemory:
	default:
		return fmt.Errorf("unsupported SURPRISE_RECORD_BACKEND %q", c.RecordBackend)
	}

	switch c.StorageBackend {
	case StorageBackendLocal:
		if strings.TrimSpace(c.LocalStoragePath) == "" {
			return fmt.Errorf("SURPRISE_LOCAL_STORAGE_PATH is required when SURPRISE_STORAGE_BACKEND is local")
		}
	case StorageBackendS3, StorageBackendMinio:
		if c.S3Bucket == "" || c.S3AccessKeyID == "" || c.S3SecretKey == "" {
			return fmt.Errorf("SURPRISE_S3_BUCKET and credentials are required when SURPRISE_STORAGE_BACKEND is %s", c.StorageBackend)
		}
		if c.StorageBackend == StorageBackendMinio && c.S3Endpoint == "" {
			return fmt.Errorf("SURPRISE_S3_ENDPOINT is required when SURPRISE_STORAGE_BACKEND is minio")
		}
	default:
		return fmt.Errorf("unsupported SURPRISE_STORAGE_BACKEND %q", c.StorageBackend)
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// CacheEnabled reports whether slug lookups go through Redis.
func (c *Config) CacheEnabled() bool {
	return strings.TrimSpace(c.RedisAddr) != ""
}

// MemoryCacheEnabled reports whether slug lookups go through the in-process LRU.
func (c *Config) MemoryCacheEnabled() bool {
	return !c.CacheEnabled() && c.MemoryCacheSize > 0
}

package surprise

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	domain "github.com/janhq/surprise-api/internal/domain/surprise"
	"github.com/janhq/surprise-api/internal/utils/idgen"
	"github.com/janhq/surprise-api/internal/utils/platformerrors"
)

var bucketSurprises = []byte("surprises")

var errSlugTaken = errors.New("bolt: slug taken")

// BoltConfig configures the bbolt-backed record store.
type BoltConfig struct {
	Path    string
	Timeout time.Duration
}

// BoltRepository persists surprises in a single local bbolt file keyed by slug.
type BoltRepository struct {
	db *bolt.DB
}

// NewBoltRepository opens (or creates) the bolt file and its bucket.
func NewBoltRepository(cfg BoltConfig) (*BoltRepository, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("boltdb: path is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("boltdb: create directory: %w", err)
		}
	}

	db, err := bolt.Open(cfg.Path, 0o600, &bolt.Options{Timeout: cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("boltdb: open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketSurprises); err != nil {
			return fmt.Errorf("boltdb: create bucket %s: %w", bucketSurprises, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltRepository{db: db}, nil
}

func (r *BoltRepository) Create(ctx context.Context, s *domain.Surprise) error {
	if err := ctx.Err(); err != nil {
		return r.unavailable(ctx, "failed to create surprise", err, "a05b6c7d-8e9f-4a0b-9c2d-2e3f4a5b6c7d")
	}
	prepare(s, time.Now(), idgen.New)

	data, err := json.Marshal(toStored(s))
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeInternal,
			"failed to encode surprise", err, "b16c7d8e-9f0a-4b1c-8d3e-3f4a5b6c7d8e")
	}

	err = r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketSurprises)
		if bucket.Get([]byte(s.Slug)) != nil {
			return errSlugTaken
		}
		return bucket.Put([]byte(s.Slug), data)
	})
	if errors.Is(err, errSlugTaken) {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict,
			"slug already exists", domain.ErrDuplicateSlug, "c27d8e9f-0a1b-4c2d-9e4f-4a5b6c7d8e9f")
	}
	if err != nil {
		return r.unavailable(ctx, "failed to create surprise", err, "d38e9f0a-1b2c-4d3e-8f5a-5b6c7d8e9f0a")
	}
	return nil
}

func (r *BoltRepository) FindBySlug(ctx context.Context, slug string) (*domain.Surprise, error) {
	if err := ctx.Err(); err != nil {
		return nil, r.unavailable(ctx, "failed to find surprise by slug", err, "e49f0a1b-2c3d-4e4f-9a6b-6c7d8e9f0a1b")
	}

	var record *storedRecord
	err := r.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketSurprises).Get([]byte(slug))
		if data == nil {
			return nil
		}
		var stored storedRecord
		if err := json.Unmarshal(data, &stored); err != nil {
			return err
		}
		record = &stored
		return nil
	})
	if err != nil {
		return nil, r.unavailable(ctx, "failed to find surprise by slug", err, "f5a01b2c-3d4e-4f5a-8b7c-7d8e9f0a1b2c")
	}
	if record == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"Surprise not found", nil, "06b12c3d-4e5f-4a6b-9c8d-8e9f0a1b2c3d")
	}
	return record.toDomain(), nil
}

func (r *BoltRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.View(func(tx *bolt.Tx) error {
		exists = tx.Bucket(bucketSurprises).Get([]byte(slug)) != nil
		return nil
	})
	if err != nil {
		return false, r.unavailable(ctx, "failed to check slug", err, "17c23d4e-5f6a-4b7c-8d9e-9f0a1b2c3d4e")
	}
	return exists, nil
}

func (r *BoltRepository) Health(ctx context.Context) error {
	return r.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketSurprises) == nil {
			return fmt.Errorf("boltdb: bucket %s missing", bucketSurprises)
		}
		return nil
	})
}

// Close releases the bolt file lock.
func (r *BoltRepository) Close() error {
	return r.db.Close()
}

func (r *BoltRepository) unavailable(ctx context.Context, message string, err error, uuid string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, message, err, uuid)
}

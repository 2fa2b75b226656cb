package surprise

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	domain "github.com/janhq/surprise-api/internal/domain/surprise"
	"github.com/janhq/surprise-api/internal/infrastructure/cache"
	"github.com/janhq/surprise-api/internal/infrastructure/metrics"
)

const cacheKeyPrefix = "surprise:"

// Cache is the subset of the redis and memory caches used for slug lookups.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Ping(ctx context.Context) error
}

// CachedRepository serves FindBySlug through a read-through cache. Records are
// immutable, so entries only expire by TTL. Cache failures fall through to the
// backing repository.
type CachedRepository struct {
	next  domain.Repository
	cache Cache
	ttl   time.Duration
	log   zerolog.Logger
	group singleflight.Group
}

func NewCachedRepository(next domain.Repository, c Cache, ttl time.Duration, log zerolog.Logger) *CachedRepository {
	return &CachedRepository{
		next:  next,
		cache: c,
		ttl:   ttl,
		log:   log.With().Str("component", "surprise-cache").Logger(),
	}
}

func (r *CachedRepository) Create(ctx context.Context, s *domain.Surprise) error {
	if err := r.next.Create(ctx, s); err != nil {
		return err
	}
	r.store(ctx, s)
	return nil
}

func (r *CachedRepository) FindBySlug(ctx context.Context, slug string) (*domain.Surprise, error) {
	var stored storedRecord
	err := r.cache.Get(ctx, cacheKeyPrefix+slug, &stored)
	switch {
	case err == nil:
		metrics.RecordCacheLookup("hit")
		return stored.toDomain(), nil
	case errors.Is(err, cache.ErrCacheMiss):
		metrics.RecordCacheLookup("miss")
	default:
		metrics.RecordCacheLookup("error")
		r.log.Warn().Err(err).Str("slug", slug).Msg("cache lookup failed")
	}

	// Concurrent misses for one slug share a single backing lookup.
	v, err, _ := r.group.Do(slug, func() (interface{}, error) {
		record, err := r.next.FindBySlug(ctx, slug)
		if err != nil || record == nil {
			return record, err
		}
		r.store(ctx, record)
		return record, nil
	})
	if err != nil {
		return nil, err
	}
	record, _ := v.(*domain.Surprise)
	if record == nil {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (r *CachedRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	return r.next.SlugExists(ctx, slug)
}

func (r *CachedRepository) Health(ctx context.Context) error {
	if err := r.cache.Ping(ctx); err != nil {
		r.log.Warn().Err(err).Msg("cache ping failed")
	}
	return r.next.Health(ctx)
}

func (r *CachedRepository) store(ctx context.Context, s *domain.Surprise) {
	if err := r.cache.Set(ctx, cacheKeyPrefix+s.Slug, toStored(s), r.ttl); err != nil {
		r.log.Warn().Err(err).Str("slug", s.Slug).Msg("cache write failed")
	}
}

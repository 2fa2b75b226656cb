package surprise

import (
	"context"
	"sync"
	"time"

	domain "github.com/janhq/surprise-api/internal/domain/surprise"
	"github.com/janhq/surprise-api/internal/utils/idgen"
	"github.com/janhq/surprise-api/internal/utils/platformerrors"
)

// MemoryRepository keeps surprises in process memory. Used in development and tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]domain.Surprise
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]domain.Surprise)}
}

func (r *MemoryRepository) Create(ctx context.Context, s *domain.Surprise) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[s.Slug]; exists {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict,
			"slug already exists", domain.ErrDuplicateSlug, "28d34e5f-6a7b-4c8d-9e0f-0a1b2c3d4e5f")
	}
	prepare(s, time.Now(), idgen.New)
	r.records[s.Slug] = *s
	return nil
}

func (r *MemoryRepository) FindBySlug(ctx context.Context, slug string) (*domain.Surprise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[slug]
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"Surprise not found", nil, "39e45f6a-7b8c-4d9e-8f1a-1b2c3d4e5f6a")
	}
	return &record, nil
}

func (r *MemoryRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.records[slug]
	return ok, nil
}

func (r *MemoryRepository) Health(ctx context.Context) error {
	return nil
}

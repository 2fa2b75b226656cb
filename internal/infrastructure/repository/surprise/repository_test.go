package surprise

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/janhq/surprise-api/internal/domain/surprise"
	"github.com/janhq/surprise-api/internal/utils/platformerrors"
)

func newBoltRepo(t *testing.T) *BoltRepository {
	t.Helper()
	repo, err := NewBoltRepository(BoltConfig{Path: filepath.Join(t.TempDir(), "data", "surprises.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func repositories(t *testing.T) map[string]domain.Repository {
	return map[string]domain.Repository{
		"memory": NewMemoryRepository(),
		"bolt":   newBoltRepo(t),
	}
}

func sample(slug string) *domain.Surprise {
	return &domain.Surprise{
		Slug:         slug,
		ContentRef:   slug + "-1714564800000.jpg",
		OriginalName: "photo.jpg",
		MimeType:     "image/jpeg",
		Message:      "Happy Birthday!!",
		PasswordHash: "argon2id$v=19$m=65536,t=1,p=4$c2FsdA$a2V5",
	}
}

func TestRepositories_CreateAndFind(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := sample("V1StGXR8_Z5j")

			require.NoError(t, repo.Create(ctx, rec))
			assert.True(t, strings.HasPrefix(rec.ID, "srp_"))
			assert.False(t, rec.CreatedAt.IsZero())

			found, err := repo.FindBySlug(ctx, "V1StGXR8_Z5j")
			require.NoError(t, err)
			assert.Equal(t, rec.ID, found.ID)
			assert.Equal(t, rec.Message, found.Message)
			assert.Equal(t, rec.ContentRef, found.ContentRef)
			assert.Equal(t, rec.PasswordHash, found.PasswordHash)
			assert.WithinDuration(t, rec.CreatedAt, found.CreatedAt, time.Millisecond)

			exists, err := repo.SlugExists(ctx, "V1StGXR8_Z5j")
			require.NoError(t, err)
			assert.True(t, exists)

			require.NoError(t, repo.Health(ctx))
		})
	}
}

func TestRepositories_NotFound(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := repo.FindBySlug(ctx, "missing")
			assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))

			exists, err := repo.SlugExists(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, exists)
		})
	}
}

func TestRepositories_DuplicateSlug(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first := sample("dupSlug")
			require.NoError(t, repo.Create(ctx, first))

			second := sample("dupSlug")
			second.Message = "second writer"
			err := repo.Create(ctx, second)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrDuplicateSlug))
			assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict))

			found, err := repo.FindBySlug(ctx, "dupSlug")
			require.NoError(t, err)
			assert.Equal(t, "Happy Birthday!!", found.Message)
		})
	}
}

func TestRepositories_ConcurrentCreatesFirstWriterWins(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			const writers = 8
			var wg sync.WaitGroup
			results := make(chan error, writers)
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					results <- repo.Create(ctx, sample("raceSlug"))
				}()
			}
			wg.Wait()
			close(results)

			var ok, dup int
			for err := range results {
				switch {
				case err == nil:
					ok++
				case errors.Is(err, domain.ErrDuplicateSlug):
					dup++
				default:
					t.Fatalf("unexpected error: %v", err)
				}
			}
			assert.Equal(t, 1, ok)
			assert.Equal(t, writers-1, dup)
		})
	}
}

func TestRepositories_UnprotectedRecord(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := sample("openSlug")
			rec.PasswordHash = ""
			require.NoError(t, repo.Create(ctx, rec))

			found, err := repo.FindBySlug(ctx, "openSlug")
			require.NoError(t, err)
			assert.False(t, found.HasPassword())
		})
	}
}

func TestBoltRepository_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "surprises.db")
	repo, err := NewBoltRepository(BoltConfig{Path: path})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), sample("keepMe")))
	require.NoError(t, repo.Close())

	reopened, err := NewBoltRepository(BoltConfig{Path: path})
	require.NoError(t, err)
	defer reopened.Close()

	found, err := reopened.FindBySlug(context.Background(), "keepMe")
	require.NoError(t, err)
	assert.Equal(t, "photo.jpg", found.OriginalName)
}

func TestBoltRepository_CancelledContext(t *testing.T) {
	repo := newBoltRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Create(ctx, sample("lateSlug"))
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeDatabaseError))
}

func TestBoltRepository_RequiresPath(t *testing.T) {
	_, err := NewBoltRepository(BoltConfig{})
	require.Error(t, err)
}

func TestIsDuplicateKey(t *testing.T) {
	assert.False(t, isDuplicateKey(errors.New("boom")))
}

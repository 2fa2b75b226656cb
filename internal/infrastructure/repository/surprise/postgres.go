package surprise

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domain "github.com/janhq/surprise-api/internal/domain/surprise"
	"github.com/janhq/surprise-api/internal/infrastructure/database"
	"github.com/janhq/surprise-api/internal/infrastructure/database/entities"
	"github.com/janhq/surprise-api/internal/utils/idgen"
	"github.com/janhq/surprise-api/internal/utils/platformerrors"
)

const uniqueViolation = "23505"

// PostgresRepository handles surprise persistence in PostgreSQL.
type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, s *domain.Surprise) error {
	prepare(s, time.Now(), idgen.New)

	entity := entities.Surprise{
		ID:           s.ID,
		Slug:         s.Slug,
		ContentRef:   s.ContentRef,
		OriginalName: s.OriginalName,
		MimeType:     s.MimeType,
		Message:      s.Message,
		CreatedAt:    s.CreatedAt,
	}
	if s.PasswordHash != "" {
		hash := s.PasswordHash
		entity.PasswordHash = &hash
	}

	err := r.db.WithContext(ctx).Create(&entity).Error
	if err != nil {
		if isDuplicateKey(err) {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeConflict,
				"slug already exists",
				errors.Join(domain.ErrDuplicateSlug, err),
				"5b0c1d2e-3f4a-4b5c-8d6e-7f8a9b0c1d2e",
			)
		}
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create surprise",
			err,
			"6c1d2e3f-4a5b-4c6d-9e7f-8a9b0c1d2e3f",
		)
	}
	s.CreatedAt = entity.CreatedAt
	return nil
}

func (r *PostgresRepository) FindBySlug(ctx context.Context, slug string) (*domain.Surprise, error) {
	var entity entities.Surprise
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				"Surprise not found",
				err,
				"7d2e3f4a-5b6c-4d7e-8f9a-9b0c1d2e3f4a",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find surprise by slug",
			err,
			"8e3f4a5b-6c7d-4e8f-9a0b-0c1d2e3f4a5b",
		)
	}
	return mapEntity(entity), nil
}

func (r *PostgresRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Surprise{}).Where("slug = ?", slug).Count(&count).Error
	if err != nil {
		return false, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to check slug",
			err,
			"9f4a5b6c-7d8e-4f9a-8b1c-1d2e3f4a5b6c",
		)
	}
	return count > 0, nil
}

func (r *PostgresRepository) Health(ctx context.Context) error {
	return database.Ping(ctx, r.db)
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func mapEntity(entity entities.Surprise) *domain.Surprise {
	s := &domain.Surprise{
		ID:           entity.ID,
		Slug:         entity.Slug,
		ContentRef:   entity.ContentRef,
		OriginalName: entity.OriginalName,
		MimeType:     entity.MimeType,
		Message:      entity.Message,
		CreatedAt:    entity.CreatedAt,
	}
	if entity.PasswordHash != nil {
		s.PasswordHash = *entity.PasswordHash
	}
	return s
}

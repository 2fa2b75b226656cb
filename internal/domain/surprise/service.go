package surprise

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/janhq/surprise-api/internal/config"
	"github.com/janhq/surprise-api/internal/infrastructure/metrics"
	"github.com/janhq/surprise-api/internal/utils/platformerrors"
)

const sniffLen = 3072

// ErrDuplicateSlug is wrapped by repositories when a slug is already taken.
var ErrDuplicateSlug = errors.New("slug already exists")

// Repository defines persistence operations needed by the service.
type Repository interface {
	Create(ctx context.Context, s *Surprise) error
	FindBySlug(ctx context.Context, slug string) (*Surprise, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Health(ctx context.Context) error
}

// Storage defines blob storage operations for surprise content.
type Storage interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	URL(ctx context.Context, key string) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
	Health(ctx context.Context) error
}

// CodeImageEncoder renders a share URL as an inline image.
type CodeImageEncoder interface {
	DataURL(content string) (string, error)
}

// Service orchestrates surprise creation, lookup and unlocking.
type Service struct {
	cfg     *config.Config
	repo    Repository
	storage Storage
	codes   CodeImageEncoder
	slugs   *SlugGenerator
	log     zerolog.Logger
	now     func() time.Time
}

func NewService(cfg *config.Config, repo Repository, storage Storage, codes CodeImageEncoder, log zerolog.Logger) *Service {
	return &Service{
		cfg:     cfg,
		repo:    repo,
		storage: storage,
		codes:   codes,
		slugs:   NewSlugGenerator(repo),
		log:     log.With().Str("component", "surprise-service").Logger(),
		now:     time.Now,
	}
}

// Create validates an upload, stores its content and persists a new surprise.
func (s *Service) Create(ctx context.Context, in CreateInput) (*CreateResult, error) {
	if in.File == nil {
		return nil, validationError(ctx, "No file uploaded", "0f6c2b1e-3a4d-4c5e-8f9a-1b2c3d4e5f60")
	}
	if in.Size > s.cfg.MaxUploadBytes {
		return nil, validationError(ctx,
			fmt.Sprintf("File too large. Maximum size is %dMB", s.cfg.MaxUploadBytes/(1024*1024)),
			"1a7d3c2f-4b5e-4d6f-9a0b-2c3d4e5f6a71")
	}

	body, contentType, err := detectContentType(in.File, in.ContentType)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"Failed to read uploaded file", err, "2b8e4d3a-5c6f-4e7a-8b1c-3d4e5f6a7b82")
	}
	if !isAllowedMedia(contentType) {
		metrics.RecordUpload(contentType, "rejected", 0)
		return nil, validationError(ctx, "Only images and videos are allowed", "3c9f5e4b-6d7a-4f8b-9c2d-4e5f6a7b8c93")
	}

	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, validationError(ctx, "Message is required", "4d0a6f5c-7e8b-4a9c-8d3e-5f6a7b8c9da4")
	}
	if utf8.RuneCountInString(message) < s.cfg.MinMessageLength {
		return nil, validationError(ctx,
			fmt.Sprintf("Message must be at least %d characters", s.cfg.MinMessageLength),
			"5e1b7a6d-8f9c-4b0d-9e4f-6a7b8c9d0eb5")
	}

	slug, err := s.generateSlug(ctx)
	if err != nil {
		return nil, err
	}

	key := s.contentKey(slug, in.OriginalName, contentType)
	if err := s.upload(ctx, key, body, in.Size, contentType); err != nil {
		return nil, err
	}

	record := &Surprise{
		Slug:         slug,
		ContentRef:   key,
		OriginalName: in.OriginalName,
		MimeType:     contentType,
		Message:      message,
	}
	if in.Password != "" {
		digest, err := HashPassword(in.Password)
		if err != nil {
			s.log.Warn().Str("key", key).Msg("stored content has no record after hashing failure")
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
				"failed to hash password", err, "6f2c8b7e-9a0d-4c1e-8f5a-7b8c9d0e1fc6")
		}
		record.PasswordHash = digest
	}

	if err := s.insert(ctx, record); err != nil {
		s.log.Warn().Str("key", key).Str("slug", record.Slug).Msg("stored content has no record after insert failure")
		return nil, err
	}

	shareURL := s.shareURL(in.BaseURL, record.Slug)
	qr, err := s.codes.DataURL(shareURL)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"failed to generate QR code", err, "7a3d9c8f-0b1e-4d2f-9a6b-8c9d0e1f2ad7")
	}

	s.log.Info().
		Str("slug", record.Slug).
		Str("mime", contentType).
		Bool("protected", record.HasPassword()).
		Msg("surprise created")

	return &CreateResult{
		ID:          record.ID,
		Slug:        record.Slug,
		ShareURL:    shareURL,
		QRCode:      qr,
		HasPassword: record.HasPassword(),
		FileURL:     s.fileURL(ctx, record.ContentRef),
	}, nil
}

// GetBySlug returns the public view of a surprise.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*View, error) {
	record, err := s.find(ctx, slug)
	if err != nil {
		return nil, err
	}
	return &View{
		ID:           record.ID,
		Slug:         record.Slug,
		ContentRef:   record.ContentRef,
		OriginalName: record.OriginalName,
		MimeType:     record.MimeType,
		Message:      record.Message,
		CreatedAt:    record.CreatedAt,
		HasPassword:  record.HasPassword(),
		FileURL:      s.fileURL(ctx, record.ContentRef),
	}, nil
}

// VerifyPassword checks plaintext against the password of a protected surprise.
func (s *Service) VerifyPassword(ctx context.Context, slug, plaintext string) error {
	record, err := s.find(ctx, slug)
	if err != nil {
		return err
	}
	if !record.HasPassword() {
		metrics.RecordPasswordCheck("unprotected")
		return validationError(ctx, "This surprise is not password protected", "8b4e0d9a-1c2f-4e3a-8b7c-9d0e1f2a3be8")
	}
	if plaintext == "" {
		metrics.RecordPasswordCheck("missing")
		return validationError(ctx, "Password is required", "9c5f1e0b-2d3a-4f4b-9c8d-0e1f2a3b4cf9")
	}
	if !VerifyPassword(plaintext, record.PasswordHash) {
		metrics.RecordPasswordCheck("mismatch")
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized,
			"Incorrect password", nil, "ad6a2f1c-3e4b-4a5c-8d9e-1f2a3b4c5d0a")
	}
	metrics.RecordPasswordCheck("success")
	return nil
}

// OpenFile streams stored content by key for backends served through the API.
func (s *Service) OpenFile(ctx context.Context, filename string) (io.ReadCloser, string, error) {
	if filename == "" || filename != path.Base(filename) || strings.HasPrefix(filename, ".") || strings.ContainsAny(filename, `/\`) {
		return nil, "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			"File not found", nil, "be7b3a2d-4f5c-4b6d-9e0f-2a3b4c5d6e1b")
	}
	reader, contentType, err := s.storage.Download(ctx, filename)
	if err != nil {
		var perr *platformerrors.PlatformError
		if errors.As(err, &perr) {
			return nil, "", perr
		}
		return nil, "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeStorageError,
			"failed to read stored file", err, "cf8c4b3e-5a6d-4c7e-8f1a-3b4c5d6e7f2c")
	}
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(filename)); byExt != "" {
			contentType = byExt
		}
	}
	// Only media is ever served inline.
	if !isAllowedMedia(normalizeMediaType(contentType)) {
		contentType = "application/octet-stream"
	}
	return reader, contentType, nil
}

// Ready reports whether both backing stores are reachable.
func (s *Service) Ready(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.repo.Health(gctx); err != nil {
			return fmt.Errorf("record store: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.storage.Health(gctx); err != nil {
			return fmt.Errorf("blob store: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func (s *Service) find(ctx context.Context, slug string) (*Surprise, error) {
	if !ValidateSlug(slug) {
		return nil, notFoundError(ctx)
	}
	dbCtx, cancel := s.recordContext(ctx)
	defer cancel()

	record, err := s.repo.FindBySlug(dbCtx, slug)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, notFoundError(ctx)
	}
	return record, nil
}

func (s *Service) generateSlug(ctx context.Context) (string, error) {
	dbCtx, cancel := s.recordContext(ctx)
	defer cancel()

	slug, err := s.slugs.GenerateUniqueSlug(dbCtx)
	if err != nil {
		return "", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to allocate slug", "d09d5c4f-6b7e-4d8f-9a2b-4c5d6e7f8a3d")
	}
	return slug, nil
}

// insert persists record, regenerating the slug when another writer won the race.
// The already uploaded content is reused across attempts.
func (s *Service) insert(ctx context.Context, record *Surprise) error {
	var lastErr error
	for attempt := 0; attempt < MaxSlugRetries; attempt++ {
		if attempt > 0 {
			metrics.RecordSlugCollision()
			slug, err := s.generateSlug(ctx)
			if err != nil {
				return err
			}
			record.Slug = slug
		}

		dbCtx, cancel := s.recordContext(ctx)
		err := s.repo.Create(dbCtx, record)
		cancel()
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrDuplicateSlug) {
			return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to save surprise", "e1ae6d5a-7c8f-4e9a-8b3c-5d6e7f8a9b4e")
		}
		s.log.Debug().Str("slug", record.Slug).Int("attempt", attempt+1).Msg("slug collision on insert")
		lastErr = err
	}
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
		fmt.Sprintf("failed to save surprise after %d slug attempts", MaxSlugRetries), lastErr, "f2bf7e6b-8d9a-4f0b-9c4d-6e7f8a9b0c5f")
}

func (s *Service) upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	storageCtx, cancel := s.storageContext(ctx)
	defer cancel()

	if err := s.storage.Upload(storageCtx, key, body, size, contentType); err != nil {
		metrics.RecordUpload(contentType, "error", size)
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeStorageError,
			"failed to store surprise content", err, "03c08f7c-9e0b-4a1c-8d5e-7f8a9b0c1d6a")
	}
	metrics.RecordUpload(contentType, "success", size)
	return nil
}

func (s *Service) contentKey(slug, originalName, contentType string) string {
	return fmt.Sprintf("%s-%d%s", slug, s.now().UnixMilli(), contentExtension(originalName, contentType))
}

// contentExtension picks the stored file extension for a validated media type.
// The uploader's extension is kept only when it maps back to that same type.
func contentExtension(originalName, contentType string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext != "" && isPlainExtension(ext) && normalizeMediaType(mime.TypeByExtension(ext)) == contentType {
		return ext
	}
	if mt := mimetype.Lookup(contentType); mt != nil {
		return mt.Extension()
	}
	return ""
}

func isPlainExtension(ext string) bool {
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return len(ext) > 1
}

func (s *Service) shareURL(requestBase, slug string) string {
	base := s.cfg.PublicBaseURL
	if base == "" {
		base = requestBase
	}
	return strings.TrimSuffix(base, "/") + "/surprise/" + slug
}

func (s *Service) fileURL(ctx context.Context, ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	url, err := s.storage.URL(ctx, ref)
	if err != nil {
		s.log.Warn().Err(err).Str("key", ref).Msg("failed to resolve content url")
		return ""
	}
	return url
}

func (s *Service) recordContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.DBQueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.DBQueryTimeout)
}

func (s *Service) storageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.StorageTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.StorageTimeout)
}

// detectContentType returns the effective media type of an upload. Declared
// types are trusted unless missing or generic, in which case the head of the
// stream is sniffed and replayed in front of the remaining body.
func detectContentType(file io.Reader, declared string) (io.Reader, string, error) {
	declared = normalizeMediaType(declared)
	if declared != "" && declared != "application/octet-stream" {
		return file, declared, nil
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, "", err
	}
	head = head[:n]
	detected := normalizeMediaType(mimetype.Detect(head).String())
	return io.MultiReader(bytes.NewReader(head), file), detected, nil
}

func normalizeMediaType(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if parsed, _, err := mime.ParseMediaType(value); err == nil {
		return parsed
	}
	return strings.ToLower(value)
}

func isAllowedMedia(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") || strings.HasPrefix(contentType, "video/")
}

func validationError(ctx context.Context, message, uuid string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, message, nil, uuid)
}

func notFoundError(ctx context.Context) error {
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
		"Surprise not found", nil, "14d19a8d-0f1c-4b2d-9e6f-8a9b0c1d2e7b")
}

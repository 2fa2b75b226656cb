package surprise

import (
	"time"

	domain "github.com/janhq/surprise-api/internal/domain/surprise"
)

// storedRecord is the JSON document persisted by bolt and the redis cache.
// Unlike the domain type it keeps the password hash.
type storedRecord struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	ContentRef   string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	Message      string    `json:"message"`
	PasswordHash string    `json:"password,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toStored(s *domain.Surprise) storedRecord {
	return storedRecord{
		ID:           s.ID,
		Slug:         s.Slug,
		ContentRef:   s.ContentRef,
		OriginalName: s.OriginalName,
		MimeType:     s.MimeType,
		Message:      s.Message,
		PasswordHash: s.PasswordHash,
		CreatedAt:    s.CreatedAt,
	}
}

func (r storedRecord) toDomain() *domain.Surprise {
	return &domain.Surprise{
		ID:           r.ID,
		Slug:         r.Slug,
		ContentRef:   r.ContentRef,
		OriginalName: r.OriginalName,
		MimeType:     r.MimeType,
		Message:      r.Message,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
	}
}

// prepare assigns the identifier and creation time of a new record.
func prepare(s *domain.Surprise, now time.Time, newID func() string) {
	if s.ID == "" {
		s.ID = newID()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now.UTC()
	}
}

package surprise

import (
	"io"
	"time"
)

// Surprise is the persisted record pairing a media reference with a message.
type Surprise struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	ContentRef   string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	Message      string    `json:"message"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// HasPassword reports whether the surprise is password protected.
func (s *Surprise) HasPassword() bool {
	return s != nil && s.PasswordHash != ""
}

// CreateInput carries an upload received by the HTTP layer.
type CreateInput struct {
	File         io.Reader
	OriginalName string
	Size         int64
	ContentType  string
	Message      string
	Password     string
	// BaseURL is used for the share link when no public URL is configured.
	BaseURL string
}

// CreateResult is returned to the uploader after a successful create.
type CreateResult struct {
	ID          string
	Slug        string
	ShareURL    string
	QRCode      string
	HasPassword bool
	FileURL     string
}

// View is the public projection of a surprise. It never carries the hash.
type View struct {
	ID           string
	Slug         string
	ContentRef   string
	OriginalName string
	MimeType     string
	Message      string
	CreatedAt    time.Time
	HasPassword  bool
	FileURL      string
}

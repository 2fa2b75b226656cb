package responses

import (
	"time"

	domain "github.com/janhq/surprise-api/internal/domain/surprise"
)

// CreateSurpriseResponse is returned after a surprise is stored.
type CreateSurpriseResponse struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	ShareURL    string `json:"shareUrl"`
	QRCode      string `json:"qrCode"`
	HasPassword bool   `json:"hasPassword"`
	FileURL     string `json:"fileUrl"`
}

// BuildCreateSurpriseResponse creates the response from a create result.
func BuildCreateSurpriseResponse(res *domain.CreateResult) *CreateSurpriseResponse {
	return &CreateSurpriseResponse{
		ID:          res.ID,
		Slug:        res.Slug,
		ShareURL:    res.ShareURL,
		QRCode:      res.QRCode,
		HasPassword: res.HasPassword,
		FileURL:     res.FileURL,
	}
}

// SurpriseResponse is the public projection of a surprise. It has no password field.
type SurpriseResponse struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"createdAt"`
	HasPassword  bool      `json:"hasPassword"`
	FileURL      string    `json:"fileUrl"`
}

// BuildSurpriseResponse creates the response from a domain view.
func BuildSurpriseResponse(view *domain.View) *SurpriseResponse {
	return &SurpriseResponse{
		ID:           view.ID,
		Slug:         view.Slug,
		Filename:     view.ContentRef,
		OriginalName: view.OriginalName,
		MimeType:     view.MimeType,
		Message:      view.Message,
		CreatedAt:    view.CreatedAt.UTC(),
		HasPassword:  view.HasPassword,
		FileURL:      view.FileURL,
	}
}

// VerifyPasswordResponse reports a successful unlock.
type VerifyPasswordResponse struct {
	Success bool `json:"success"`
}

// APIStatusResponse describes the running API.
type APIStatusResponse struct {
	Message   string            `json:"message"`
	Status    string            `json:"status"`
	Endpoints map[string]string `json:"endpoints"`
}

package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/janhq/surprise-api/internal/interfaces/httpserver/requests"
	"github.com/janhq/surprise-api/internal/interfaces/httpserver/responses"
)

const defaultTimeout = 2 * time.Minute

// APIError is a non-2xx answer from the surprise API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("surprise api error (status %d, request %s): %s", e.StatusCode, e.RequestID, e.Message)
	}
	return fmt.Sprintf("surprise api error (status %d): %s", e.StatusCode, e.Message)
}

// Client talks to a running surprise API over HTTP.
type Client struct {
	http *resty.Client
}

// New creates a client for the API rooted at baseURL (e.g. http://localhost:5000).
func New(baseURL string) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("User-Agent", "surprise-cli/1.0").
		SetTimeout(defaultTimeout)
	return &Client{http: httpClient}
}

// Upload describes a surprise to create.
type Upload struct {
	Filename string
	File     io.Reader
	Message  string
	Password string
	// Origin, when set, is sent as the Origin header so share links use it.
	Origin string
}

// Create uploads the file and returns the share details.
func (c *Client) Create(ctx context.Context, up Upload) (*responses.CreateSurpriseResponse, error) {
	form := map[string]string{requests.FormFieldMessage: up.Message}
	if up.Password != "" {
		form[requests.FormFieldPassword] = up.Password
	}

	var result responses.CreateSurpriseResponse
	req := c.http.R().
		SetContext(ctx).
		SetFileReader(requests.FormFieldFile, up.Filename, up.File).
		SetFormData(form).
		SetResult(&result).
		SetError(&responses.ErrorResponse{})
	if up.Origin != "" {
		req.SetHeader("Origin", up.Origin)
	}

	resp, err := req.Post("/api/surprises")
	if err != nil {
		return nil, fmt.Errorf("failed to create surprise: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return &result, nil
}

// Get fetches the public view of a surprise.
func (c *Client) Get(ctx context.Context, slug string) (*responses.SurpriseResponse, error) {
	var result responses.SurpriseResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("slug", slug).
		SetResult(&result).
		SetError(&responses.ErrorResponse{}).
		Get("/api/surprises/{slug}")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch surprise: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return &result, nil
}

// VerifyPassword checks a password against a protected surprise.
func (c *Client) VerifyPassword(ctx context.Context, slug, password string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("slug", slug).
		SetHeader("Content-Type", "application/json").
		SetBody(requests.VerifyPasswordRequest{Password: password}).
		SetError(&responses.ErrorResponse{}).
		Post("/api/surprises/{slug}/verify-password")
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if resp.IsError() {
		return apiError(resp)
	}
	return nil
}

// Status returns the API index document.
func (c *Client) Status(ctx context.Context) (*responses.APIStatusResponse, error) {
	var result responses.APIStatusResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&responses.ErrorResponse{}).
		Get("/api")
	if err != nil {
		return nil, fmt.Errorf("failed to query api status: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return &result, nil
}

func apiError(resp *resty.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode(), Message: http.StatusText(resp.StatusCode())}
	if body, ok := resp.Error().(*responses.ErrorResponse); ok && body != nil {
		if body.Message != "" {
			apiErr.Message = body.Message
		}
		apiErr.Code = body.Code
		apiErr.RequestID = body.RequestID
	}
	return apiErr
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/janhq/surprise-api/internal/config"
	domain "github.com/janhq/surprise-api/internal/domain/surprise"
	"github.com/janhq/surprise-api/internal/interfaces/httpserver/requests"
	"github.com/janhq/surprise-api/internal/interfaces/httpserver/responses"
	"github.com/janhq/surprise-api/internal/utils/platformerrors"
)

const (
	multipartMemory   = 32 << 20
	multipartOverhead = 1 << 20
)

// SurpriseHandler exposes the surprise endpoints.
type SurpriseHandler struct {
	cfg     *config.Config
	service *domain.Service
	log     zerolog.Logger
}

func NewSurpriseHandler(cfg *config.Config, service *domain.Service, log zerolog.Logger) *SurpriseHandler {
	return &SurpriseHandler{
		cfg:     cfg,
		service: service,
		log:     log.With().Str("component", "surprise-handler").Logger(),
	}
}

// Create godoc
// @Summary      Create a surprise
// @Description  Uploads a photo or video with a message and optional password. Returns the share link and a QR code.
// @Tags         surprises
// @Accept       multipart/form-data
// @Produce      json
// @Param        file      formData  file    true   "Image or video, at most 50MB"
// @Param        message   formData  string  true   "Message shown with the media"
// @Param        password  formData  string  false  "Optional password"
// @Success      200  {object}  responses.CreateSurpriseResponse
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /api/surprises [post]
func (h *SurpriseHandler) Create(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxUploadBytes+multipartOverhead)

	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, h.tooLargeMessage(), "5bf67b8c-9d0e-4f1a-8b3c-3d4e5f6a7b8c")
		case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "No file uploaded", "6c078c9d-0e1f-4a2b-9c4d-4e5f6a7b8c9d")
		default:
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "Invalid upload", "7d189dae-1f2a-4b3c-8d5e-5f6a7b8c9d0e")
		}
		return
	}
	defer func() {
		if c.Request.MultipartForm != nil {
			_ = c.Request.MultipartForm.RemoveAll()
		}
	}()

	input := domain.CreateInput{
		Message:  c.Request.FormValue(requests.FormFieldMessage),
		Password: c.Request.FormValue(requests.FormFieldPassword),
		BaseURL:  requestBaseURL(c),
	}

	file, header, err := c.Request.FormFile(requests.FormFieldFile)
	switch {
	case err == nil:
		defer file.Close()
		input.File = file
		input.OriginalName = header.Filename
		input.Size = header.Size
		input.ContentType = header.Header.Get("Content-Type")
	case errors.Is(err, http.ErrMissingFile):
	default:
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "Invalid upload", "8e29aebf-2a3b-4c4d-9e6f-6a7b8c9d0e1f")
		return
	}

	result, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		h.logFailure(err, "create surprise failed")
		responses.HandleError(c, err, "Failed to create surprise")
		return
	}

	c.JSON(http.StatusOK, responses.BuildCreateSurpriseResponse(result))
}

// Get godoc
// @Summary      Get a surprise
// @Description  Returns the surprise for a slug. The password hash is never included.
// @Tags         surprises
// @Produce      json
// @Param        slug  path      string  true  "Surprise slug"
// @Success      200   {object}  responses.SurpriseResponse
// @Failure      404   {object}  responses.ErrorResponse
// @Failure      500   {object}  responses.ErrorResponse
// @Router       /api/surprises/{slug} [get]
func (h *SurpriseHandler) Get(c *gin.Context) {
	view, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.logFailure(err, "get surprise failed")
		responses.HandleError(c, err, "Failed to fetch surprise")
		return
	}
	c.JSON(http.StatusOK, responses.BuildSurpriseResponse(view))
}

// VerifyPassword godoc
// @Summary      Verify a surprise password
// @Tags         surprises
// @Accept       json
// @Produce      json
// @Param        slug     path      string                          true  "Surprise slug"
// @Param        request  body      requests.VerifyPasswordRequest  true  "Password"
// @Success      200      {object}  responses.VerifyPasswordResponse
// @Failure      400      {object}  responses.ErrorResponse
// @Failure      401      {object}  responses.ErrorResponse
// @Failure      404      {object}  responses.ErrorResponse
// @Failure      500      {object}  responses.ErrorResponse
// @Router       /api/surprises/{slug}/verify-password [post]
func (h *SurpriseHandler) VerifyPassword(c *gin.Context) {
	var req requests.VerifyPasswordRequest
	// A missing or malformed body is treated as an empty password.
	_ = c.ShouldBindJSON(&req)

	if err := h.service.VerifyPassword(c.Request.Context(), c.Param("slug"), req.Password); err != nil {
		h.logFailure(err, "verify password failed")
		responses.HandleError(c, err, "Failed to verify password")
		return
	}
	c.JSON(http.StatusOK, responses.VerifyPasswordResponse{Success: true})
}

func (h *SurpriseHandler) tooLargeMessage() string {
	return "File too large. Maximum size is " + formatMB(h.cfg.MaxUploadBytes)
}

func (h *SurpriseHandler) logFailure(err error, msg string) {
	var perr *platformerrors.PlatformError
	if errors.As(err, &perr) {
		platformerrors.LogError(h.log, perr)
		return
	}
	h.log.Error().Err(err).Msg(msg)
}

// requestBaseURL derives the public origin of the current request.
func requestBaseURL(c *gin.Context) string {
	if origin := strings.TrimSpace(c.GetHeader("Origin")); origin != "" && origin != "null" {
		return strings.TrimSuffix(origin, "/")
	}
	scheme := "http"
	if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	host := c.Request.Host
	if forwarded := c.GetHeader("X-Forwarded-Host"); forwarded != "" {
		host = forwarded
	}
	return scheme + "://" + host
}

func formatMB(n int64) string {
	return strconv.FormatInt(n/(1024*1024), 10) + "MB"
}

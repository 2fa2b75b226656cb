package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	domain "github.com/janhq/surprise-api/internal/domain/surprise"
	"github.com/janhq/surprise-api/internal/interfaces/httpserver/responses"
)

// FileHandler serves stored surprise content.
type FileHandler struct {
	service *domain.Service
	log     zerolog.Logger
}

func NewFileHandler(service *domain.Service, log zerolog.Logger) *FileHandler {
	return &FileHandler{
		service: service,
		log:     log.With().Str("component", "file-handler").Logger(),
	}
}

// Serve godoc
// @Summary      Download surprise content
// @Description  Streams the stored photo or video. Stored objects never change, so responses are cacheable.
// @Tags         files
// @Produce      octet-stream
// @Param        filename  path  string  true  "Stored file name"
// @Success      200
// @Failure      404  {object}  responses.ErrorResponse
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /api/files/{filename} [get]
func (h *FileHandler) Serve(c *gin.Context) {
	reader, contentType, err := h.service.OpenFile(c.Request.Context(), c.Param("filename"))
	if err != nil {
		responses.HandleError(c, err, "Failed to read file")
		return
	}
	defer reader.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, -1, contentType, reader, map[string]string{
		"Cache-Control":           "public, max-age=31536000, immutable",
		"X-Content-Type-Options":  "nosniff",
		"Content-Security-Policy": "default-src 'none'; img-src 'self'; media-src 'self'; sandbox",
	})
}

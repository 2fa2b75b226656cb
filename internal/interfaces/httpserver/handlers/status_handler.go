package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/janhq/surprise-api/internal/config"
	domain "github.com/janhq/surprise-api/internal/domain/surprise"
	"github.com/janhq/surprise-api/internal/interfaces/httpserver/responses"
)

// StatusHandler reports API status and health.
type StatusHandler struct {
	cfg     *config.Config
	service *domain.Service
}

func NewStatusHandler(cfg *config.Config, service *domain.Service) *StatusHandler {
	return &StatusHandler{cfg: cfg, service: service}
}

// Index godoc
// @Summary      API status
// @Tags         status
// @Produce      json
// @Success      200  {object}  responses.APIStatusResponse
// @Router       /api [get]
func (h *StatusHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, responses.APIStatusResponse{
		Message: "Digital Surprise Sharing API",
		Status:  "running",
		Endpoints: map[string]string{
			"createSurprise": "POST /api/surprises",
			"getSurprise":    "GET /api/surprises/:slug",
			"verifyPassword": "POST /api/surprises/:slug/verify-password",
			"files":          "GET /api/files/:filename",
		},
	})
}

// Healthz reports liveness.
func (h *StatusHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Readyz reports whether the record and blob stores are reachable.
func (h *StatusHandler) Readyz(c *gin.Context) {
	if err := h.service.Ready(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "service": h.cfg.ServiceName})
}

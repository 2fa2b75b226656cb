package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/janhq/surprise-api/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates API route registration.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches all API routes under the /api prefix.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/api")
	group.GET("", r.handlers.Status.Index)
	group.POST("/surprises", r.handlers.Surprise.Create)
	group.GET("/surprises/:slug", r.handlers.Surprise.Get)
	group.POST("/surprises/:slug/verify-password", r.handlers.Surprise.VerifyPassword)
	group.GET("/files/:filename", r.handlers.File.Serve)
}

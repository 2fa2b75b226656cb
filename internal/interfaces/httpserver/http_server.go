package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	surpriseapidocs "github.com/janhq/surprise-api/docs/swagger"
	"github.com/janhq/surprise-api/internal/config"
	domain "github.com/janhq/surprise-api/internal/domain/surprise"
	"github.com/janhq/surprise-api/internal/infrastructure/observability"
	"github.com/janhq/surprise-api/internal/interfaces/httpserver/handlers"
	"github.com/janhq/surprise-api/internal/interfaces/httpserver/middlewares"
	v1 "github.com/janhq/surprise-api/internal/interfaces/httpserver/routes/v1"
	"github.com/janhq/surprise-api/internal/interfaces/web"
)

// HttpServer wraps the gin engine with graceful shutdown helpers.
type HttpServer struct {
	cfg    *config.Config
	engine *gin.Engine
	log    zerolog.Logger
}

// New constructs the HTTP server with default middleware and routes.
func New(cfg *config.Config, log zerolog.Logger, surpriseService *domain.Service) (*HttpServer, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	surpriseapidocs.SwaggerInfo.BasePath = "/"

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middlewares.RequestID(),
		middlewares.TracingMiddleware(observability.TracerName),
		middlewares.LoggingMiddleware(log),
		middlewares.MetricsMiddleware(),
		middlewares.CORSMiddleware(cfg.CORSAllowedOrigins),
	)

	handlerProvider := handlers.NewProvider(cfg, surpriseService, log)
	routeProvider := v1.NewRoutes(handlerProvider)
	registerCoreRoutes(engine, handlerProvider, routeProvider)

	if err := web.NewClient(cfg.MaxUploadBytes).Register(engine); err != nil {
		return nil, fmt.Errorf("register web client: %w", err)
	}

	return &HttpServer{
		cfg:    cfg,
		engine: engine,
		log:    log,
	}, nil
}

// Handler exposes the engine for in-process callers such as tests.
func (s *HttpServer) Handler() http.Handler {
	return s.engine
}

// Run starts the HTTP listener and handles graceful shutdown via context cancellation.
func (s *HttpServer) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.cfg.Addr(),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr()).Msg("surprise-api HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.log.Info().Msg("context cancelled, shutting down HTTP server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func registerCoreRoutes(engine *gin.Engine, provider *handlers.Provider, routes *v1.Routes) {
	engine.GET("/healthz", provider.Status.Healthz)
	engine.GET("/readyz", provider.Status.Readyz)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.Register(engine.Group("/"))
}

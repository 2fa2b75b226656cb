package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/janhq/surprise-api/internal/config"
	domain "github.com/janhq/surprise-api/internal/domain/surprise"
	"github.com/janhq/surprise-api/internal/infrastructure/logger"
	"github.com/janhq/surprise-api/internal/infrastructure/observability"
	"github.com/janhq/surprise-api/internal/interfaces/httpserver"
)

// @title Surprise API
// @version 1.0
// @description Share a photo or video with a message behind a link and QR code
// @BasePath /
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	surpriseRepository, closeRepository, err := provideRepository(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize record store")
	}
	defer closeRepository()

	storageClient, err := provideStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize storage")
	}

	surpriseService := domain.NewService(cfg, surpriseRepository, storageClient, provideQRGenerator(cfg), log)

	httpServer, err := httpserver.New(cfg, log, surpriseService)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize http server")
	}
	app := NewApplication(httpServer, log)

	log.Info().
		Str("records", cfg.RecordBackend).
		Str("storage", cfg.StorageBackend).
		Bool("cache", cfg.CacheEnabled()).
		Msg("surprise-api starting")

	if err := app.Start(ctx); err != nil {
		log.Error().Err(err).Msg("application stopped with error")
		return
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}

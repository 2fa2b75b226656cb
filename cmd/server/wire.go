//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/janhq/surprise-api/internal/config"
	domain "github.com/janhq/surprise-api/internal/domain/surprise"
	"github.com/janhq/surprise-api/internal/infrastructure/logger"
	"github.com/janhq/surprise-api/internal/interfaces/httpserver"
)

var surpriseSet = wire.NewSet(
	provideRepository,
	provideStorage,
	provideQRGenerator,
	domain.NewService,
)

// BuildApplication assembles the surprise API with Wire.
func BuildApplication(ctx context.Context) (*Application, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		surpriseSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil, nil
}

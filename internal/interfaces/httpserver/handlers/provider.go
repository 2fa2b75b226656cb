package handlers

import (
	"github.com/rs/zerolog"

	"github.com/janhq/surprise-api/internal/config"
	domain "github.com/janhq/surprise-api/internal/domain/surprise"
)

// Provider wires HTTP handlers.
type Provider struct {
	Surprise *SurpriseHandler
	File     *FileHandler
	Status   *StatusHandler
}

func NewProvider(cfg *config.Config, service *domain.Service, log zerolog.Logger) *Provider {
	return &Provider{
		Surprise: NewSurpriseHandler(cfg, service, log),
		File:     NewFileHandler(service, log),
		Status:   NewStatusHandler(cfg, service),
	}
}

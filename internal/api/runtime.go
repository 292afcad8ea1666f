package api

import (
	"github.com/JaimeStill/intake/internal/config"
	"github.com/JaimeStill/intake/internal/infrastructure"
	"github.com/JaimeStill/intake/internal/pipeline"
	"github.com/JaimeStill/intake/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration and the
// evaluation pipeline.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Pipeline   *pipeline.Pipeline
	Config     *config.Config
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) (*Runtime, error) {
	logger := infra.Logger.With("module", "api")

	p, err := NewPipeline(cfg, infra.Storage, logger, pipeline.NewMetrics(infra.Registry))
	if err != nil {
		return nil, err
	}

	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    logger,
			Registry:  infra.Registry,
			Database:  infra.Database,
			Storage:   infra.Storage,
		},
		Pagination: cfg.API.Pagination,
		Pipeline:   p,
		Config:     cfg,
	}, nil
}

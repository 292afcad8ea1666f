package api

import (
	"fmt"
	"log/slog"

	"github.com/JaimeStill/intake/internal/agents"
	"github.com/JaimeStill/intake/internal/authenticity"
	"github.com/JaimeStill/intake/internal/config"
	"github.com/JaimeStill/intake/internal/crossval"
	"github.com/JaimeStill/intake/internal/decision"
	"github.com/JaimeStill/intake/internal/interpret"
	"github.com/JaimeStill/intake/internal/pipeline"
	"github.com/JaimeStill/intake/internal/prompts"
	"github.com/JaimeStill/intake/pkg/storage"
)

// NewPipeline wires the intake stages from configuration. A nil metrics
// disables instrumentation.
func NewPipeline(
	cfg *config.Config,
	store storage.System,
	logger *slog.Logger,
	metrics *pipeline.Metrics,
) (*pipeline.Pipeline, error) {
	visionCfg, err := cfg.Agents.Vision.Build()
	if err != nil {
		return nil, fmt.Errorf("vision agent: %w", err)
	}
	reasoningCfg, err := cfg.Agents.Reasoning.Build()
	if err != nil {
		return nil, fmt.Errorf("reasoning agent: %w", err)
	}

	lib, err := prompts.New(cfg.Pipeline.Prompts)
	if err != nil {
		return nil, fmt.Errorf("prompts: %w", err)
	}

	var observer agents.Observer
	if metrics != nil {
		observer = metrics
	}

	vision := agents.New(visionCfg)
	reasoner := agents.New(reasoningCfg)

	validator, err := crossval.New(
		cfg.Pipeline.CrossValidation,
		agents.ObserveReasoner(reasoner, "cross_validate", observer),
		lib,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("cross-validator: %w", err)
	}

	rt := &pipeline.Runtime{
		Storage:        store,
		Interpreter:    interpret.New(agents.ObserveVision(vision, "interpret", observer), lib, logger),
		Checker:        authenticity.New(agents.ObserveVision(vision, "authenticate", observer), lib, logger),
		CrossValidator: validator,
		Aggregator:     decision.NewAggregator(cfg.Pipeline.MinimumAge, nil),
		Renderer:       pipeline.NewPDFRenderer(cfg.Pipeline.RenderDPI),
		Metrics:        metrics,
		Logger:         logger,
	}

	return pipeline.New(rt, pipeline.Options{
		Concurrency:     cfg.Pipeline.Concurrency,
		FailurePolicy:   pipeline.FailurePolicy(cfg.Pipeline.FailurePolicy),
		MaxDocumentSize: cfg.Pipeline.MaxDocumentSizeBytes(),
	})
}

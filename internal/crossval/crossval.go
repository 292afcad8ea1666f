// Package crossval compares the applicant's submitted data with the fields
// extracted from their documents and applies an explicit status policy to
// the findings.
package crossval

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/intake/internal/agents"
	"github.com/JaimeStill/intake/internal/loan"
	"github.com/JaimeStill/intake/internal/prompts"
	"github.com/JaimeStill/intake/pkg/formatting"
)

// Validator cross-validates an application against its documents.
type Validator struct {
	cfg      Config
	reasoner agents.Reasoner
	prompts  *prompts.Library
	logger   *slog.Logger
}

// New creates a Validator. reasoner may be nil in rules mode.
func New(cfg Config, reasoner agents.Reasoner, lib *prompts.Library, logger *slog.Logger) (*Validator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Mode == ModeModel && reasoner == nil {
		return nil, fmt.Errorf("model mode requires a reasoner")
	}

	return &Validator{
		cfg:      cfg,
		reasoner: reasoner,
		prompts:  lib,
		logger:   logger.With("system", "crossval", "mode", cfg.Mode, "fail_on", cfg.FailOn),
	}, nil
}

// CrossValidate compares app with docs in a single pass over the whole
// document set and applies the configured status policy.
func (v *Validator) CrossValidate(ctx context.Context, app loan.ApplicationData, docs []loan.DocumentRecord) (loan.CrossValidationResult, error) {
	var (
		result loan.CrossValidationResult
		err    error
	)

	switch v.cfg.Mode {
	case ModeRules:
		result = Compare(app, docs, v.cfg.DateLayout)
	default:
		result, err = v.reason(ctx, app, docs)
		if err != nil {
			return loan.CrossValidationResult{}, err
		}
	}

	if result.FieldComparisons == nil {
		result.FieldComparisons = []loan.FieldComparison{}
	}
	if result.Inconsistencies == nil {
		result.Inconsistencies = []loan.Inconsistency{}
	}

	reported := result.OverallStatus
	Apply(v.cfg.FailOn, &result)

	v.logger.InfoContext(
		ctx, "cross-validation complete",
		"comparisons", len(result.FieldComparisons),
		"inconsistencies", len(result.Inconsistencies),
		"reported_status", reported,
		"overall_status", result.OverallStatus,
	)

	return result, nil
}

type envelope struct {
	Results *loan.CrossValidationResult `json:"cross_validation_results"`
}

func (v *Validator) reason(ctx context.Context, app loan.ApplicationData, docs []loan.DocumentRecord) (loan.CrossValidationResult, error) {
	if app == nil {
		app = loan.ApplicationData{}
	}

	appJSON, err := json.MarshalIndent(app, "", "  ")
	if err != nil {
		return loan.CrossValidationResult{}, fmt.Errorf("serialize application: %w", err)
	}

	docsJSON, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return loan.CrossValidationResult{}, fmt.Errorf("serialize documents: %w", err)
	}

	prompt := v.prompts.Compose(
		prompts.StageCrossValidate,
		"Application Data:\n\n"+string(appJSON),
		"Document Data:\n\n"+string(docsJSON),
	)

	out, err := v.reasoner.Reason(ctx, prompt)
	if err != nil {
		return loan.CrossValidationResult{}, fmt.Errorf("cross-validate: %w", err)
	}

	return parseResult(out)
}

// parseResult accepts the cross_validation_results envelope or a bare
// result object.
func parseResult(out string) (loan.CrossValidationResult, error) {
	env, err := formatting.Parse[envelope](out)
	if err != nil {
		return loan.CrossValidationResult{}, fmt.Errorf("cross-validate: %w: %w", loan.ErrMalformedOutput, err)
	}
	if env.Results != nil {
		return *env.Results, nil
	}

	bare, err := formatting.Parse[loan.CrossValidationResult](out)
	if err != nil {
		return loan.CrossValidationResult{}, fmt.Errorf("cross-validate: %w: %w", loan.ErrMalformedOutput, err)
	}
	if bare.OverallStatus == "" && bare.FieldComparisons == nil && bare.Inconsistencies == nil {
		return loan.CrossValidationResult{}, fmt.Errorf("cross-validate: %w: no cross-validation result", loan.ErrMalformedOutput)
	}
	return bare, nil
}

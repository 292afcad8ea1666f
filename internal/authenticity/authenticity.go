// Package authenticity judges whether a single document image is genuine.
package authenticity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/intake/internal/agents"
	"github.com/JaimeStill/intake/internal/loan"
	"github.com/JaimeStill/intake/internal/prompts"
	"github.com/JaimeStill/intake/pkg/formatting"
)

const fallbackReason = "document failed authenticity review"

type verdict struct {
	Valid        *bool    `json:"valid"`
	Reason       string   `json:"reason"`
	LayoutScore  float64  `json:"layout_score"`
	FieldScore   float64  `json:"field_score"`
	ForgerySigns []string `json:"forgery_signs"`
}

// Checker produces authenticity verdicts. It holds no per-document state.
type Checker struct {
	vision  agents.Vision
	prompts *prompts.Library
	logger  *slog.Logger
}

// New creates a Checker backed by vision.
func New(vision agents.Vision, lib *prompts.Library, logger *slog.Logger) *Checker {
	return &Checker{
		vision:  vision,
		prompts: lib,
		logger:  logger.With("system", "authenticity"),
	}
}

// Check asks the vision model for a verdict on doc. A response without a
// boolean valid field yields loan.ErrMalformedOutput. An invalid verdict
// always carries a reason.
func (c *Checker) Check(ctx context.Context, doc agents.Image, filename string) (loan.ValidationRecord, error) {
	out, err := c.vision.Analyze(ctx, c.prompts.Compose(prompts.StageAuthenticate), doc)
	if err != nil {
		return loan.ValidationRecord{}, fmt.Errorf("authenticate %s: %w", filename, err)
	}

	v, err := formatting.Parse[verdict](out)
	if err != nil {
		return loan.ValidationRecord{}, fmt.Errorf("authenticate %s: %w: %w", filename, loan.ErrMalformedOutput, err)
	}
	if v.Valid == nil {
		return loan.ValidationRecord{}, fmt.Errorf("authenticate %s: %w: missing valid verdict", filename, loan.ErrMalformedOutput)
	}

	rec := loan.ValidationRecord{
		Filename:     filename,
		Valid:        *v.Valid,
		Reason:       strings.TrimSpace(v.Reason),
		LayoutScore:  loan.ClampScore(v.LayoutScore),
		FieldScore:   loan.ClampScore(v.FieldScore),
		ForgerySigns: signs(v.ForgerySigns),
	}

	if !rec.Valid && rec.Reason == "" {
		rec.Reason = deriveReason(rec.ForgerySigns)
	}

	c.logger.InfoContext(
		ctx, "document checked",
		"filename", filename,
		"valid", rec.Valid,
		"layout_score", rec.LayoutScore,
		"field_score", rec.FieldScore,
		"forgery_signs", len(rec.ForgerySigns),
	)

	return rec, nil
}

func signs(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func deriveReason(signs []string) string {
	if len(signs) == 0 {
		return fallbackReason
	}
	return "forgery indicators: " + strings.Join(signs, "; ")
}

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/JaimeStill/intake/internal/crossval"
	"github.com/JaimeStill/intake/pkg/formatting"
)

const (
	EnvPipelineConcurrency     = "INTAKE_PIPELINE_CONCURRENCY"
	EnvPipelineFailurePolicy   = "INTAKE_PIPELINE_FAILURE_POLICY"
	EnvPipelineMaxDocumentSize = "INTAKE_PIPELINE_MAX_DOCUMENT_SIZE"
	EnvPipelineMinimumAge      = "INTAKE_PIPELINE_MINIMUM_AGE"
	EnvPipelineRenderDPI       = "INTAKE_PIPELINE_RENDER_DPI"
)

var crossValidationEnv = &crossval.Env{
	Mode:       "INTAKE_CROSS_VALIDATION_MODE",
	FailOn:     "INTAKE_CROSS_VALIDATION_FAIL_ON",
	DateLayout: "INTAKE_CROSS_VALIDATION_DATE_LAYOUT",
}

// PipelineConfig tunes document processing and the decision rules.
type PipelineConfig struct {
	Concurrency     int               `toml:"concurrency"`
	FailurePolicy   string            `toml:"failure_policy"`
	MaxDocumentSize string            `toml:"max_document_size"`
	MinimumAge      int               `toml:"minimum_age"`
	RenderDPI       int               `toml:"render_dpi"`
	CrossValidation crossval.Config   `toml:"cross_validation"`
	Prompts         map[string]string `toml:"prompts"`
}

// MaxDocumentSizeBytes returns MaxDocumentSize in bytes.
func (c *PipelineConfig) MaxDocumentSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxDocumentSize)
	if err != nil {
		return 20 * 1024 * 1024
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CrossValidation.Finalize(crossValidationEnv); err != nil {
		return fmt.Errorf("cross_validation: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay. Prompt overrides merge
// per stage.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.Concurrency != 0 {
		c.Concurrency = overlay.Concurrency
	}
	if overlay.FailurePolicy != "" {
		c.FailurePolicy = overlay.FailurePolicy
	}
	if overlay.MaxDocumentSize != "" {
		c.MaxDocumentSize = overlay.MaxDocumentSize
	}
	if overlay.MinimumAge != 0 {
		c.MinimumAge = overlay.MinimumAge
	}
	if overlay.RenderDPI != 0 {
		c.RenderDPI = overlay.RenderDPI
	}
	c.CrossValidation.Merge(&overlay.CrossValidation)

	if len(overlay.Prompts) > 0 && c.Prompts == nil {
		c.Prompts = make(map[string]string, len(overlay.Prompts))
	}
	for stage, text := range overlay.Prompts {
		c.Prompts[stage] = text
	}
}

func (c *PipelineConfig) loadDefaults() {
	if c.FailurePolicy == "" {
		c.FailurePolicy = "fail_fast"
	}
	if c.MaxDocumentSize == "" {
		c.MaxDocumentSize = "20MB"
	}
	if c.MinimumAge == 0 {
		c.MinimumAge = 18
	}
	if c.RenderDPI == 0 {
		c.RenderDPI = 300
	}
}

func (c *PipelineConfig) loadEnv() {
	envInt(EnvPipelineConcurrency, &c.Concurrency)
	envString(EnvPipelineFailurePolicy, &c.FailurePolicy)
	envString(EnvPipelineMaxDocumentSize, &c.MaxDocumentSize)
	envInt(EnvPipelineMinimumAge, &c.MinimumAge)
	envInt(EnvPipelineRenderDPI, &c.RenderDPI)
}

func (c *PipelineConfig) validate() error {
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative: %d", c.Concurrency)
	}
	switch c.FailurePolicy {
	case "fail_fast", "best_effort":
	default:
		return fmt.Errorf("invalid failure_policy %q", c.FailurePolicy)
	}
	if _, err := formatting.ParseBytes(c.MaxDocumentSize); err != nil {
		return fmt.Errorf("invalid max_document_size: %w", err)
	}
	if c.MinimumAge < 1 {
		return fmt.Errorf("invalid minimum_age: %d", c.MinimumAge)
	}
	if c.RenderDPI < 72 || c.RenderDPI > 1200 {
		return fmt.Errorf("invalid render_dpi: %d", c.RenderDPI)
	}
	return nil
}

func envInt(name string, dst *int) {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

package crossval

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"
)

// Mode selects how comparisons are produced.
type Mode string

const (
	// ModeModel asks the reasoning model to compare fields.
	ModeModel Mode = "model"
	// ModeRules compares fields with deterministic matching rules.
	ModeRules Mode = "rules"
)

// FailOn selects the status policy applied to a result.
type FailOn string

const (
	FailOnHigh   FailOn = "high"
	FailOnMedium FailOn = "medium"
	FailOnLow    FailOn = "low"
	// FailOnModel keeps the status the model reported.
	FailOnModel FailOn = "model"
)

var (
	ErrInvalidMode       = errors.New("mode must be model or rules")
	ErrInvalidFailOn     = errors.New("fail_on must be high, medium, low, or model")
	ErrInvalidDateLayout = errors.New("application_date_layout must parse a full date")
)

// Config holds cross-validation settings. DateLayout is a Go time layout
// for numeric dates on the application, e.g. "01/02/2006"; rules mode uses
// it to read dates that would otherwise be ambiguous.
type Config struct {
	Mode       Mode   `toml:"mode"`
	FailOn     FailOn `toml:"fail_on"`
	DateLayout string `toml:"application_date_layout"`
}

// Env maps cross-validation fields to environment variable names.
type Env struct {
	Mode       string
	FailOn     string
	DateLayout string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	if c.Mode == "" {
		c.Mode = ModeModel
	}
	if c.FailOn == "" {
		c.FailOn = FailOnHigh
	}

	if env != nil {
		if v := os.Getenv(env.Mode); env.Mode != "" && v != "" {
			c.Mode = Mode(v)
		}
		if v := os.Getenv(env.FailOn); env.FailOn != "" && v != "" {
			c.FailOn = FailOn(v)
		}
		if v := os.Getenv(env.DateLayout); env.DateLayout != "" && v != "" {
			c.DateLayout = v
		}
	}

	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Mode != "" {
		c.Mode = overlay.Mode
	}
	if overlay.FailOn != "" {
		c.FailOn = overlay.FailOn
	}
	if overlay.DateLayout != "" {
		c.DateLayout = overlay.DateLayout
	}
}

func (c *Config) validate() error {
	if !slices.Contains([]Mode{ModeModel, ModeRules}, c.Mode) {
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Mode)
	}
	if !slices.Contains([]FailOn{FailOnHigh, FailOnMedium, FailOnLow, FailOnModel}, c.FailOn) {
		return fmt.Errorf("%w: %q", ErrInvalidFailOn, c.FailOn)
	}
	if c.DateLayout != "" && !validLayout(c.DateLayout) {
		return fmt.Errorf("%w: %q", ErrInvalidDateLayout, c.DateLayout)
	}
	return nil
}

// validLayout reports whether layout round-trips a full calendar date.
func validLayout(layout string) bool {
	want := time.Date(1990, time.May, 15, 0, 0, 0, 0, time.UTC)
	got, err := time.Parse(layout, want.Format(layout))
	return err == nil && got.Equal(want)
}

// Package interpret turns a document image into a classified record of the
// personal fields printed on it.
package interpret

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/intake/internal/agents"
	"github.com/JaimeStill/intake/internal/loan"
	"github.com/JaimeStill/intake/internal/prompts"
	"github.com/JaimeStill/intake/pkg/formatting"
)

type classifyResponse struct {
	DocType *string `json:"doc_type"`
}

// Interpreter classifies documents and extracts their fields.
type Interpreter struct {
	vision  agents.Vision
	prompts *prompts.Library
	logger  *slog.Logger
}

// New creates an Interpreter backed by vision.
func New(vision agents.Vision, lib *prompts.Library, logger *slog.Logger) *Interpreter {
	return &Interpreter{
		vision:  vision,
		prompts: lib,
		logger:  logger.With("system", "interpret"),
	}
}

// Interpret classifies doc and extracts its fields. Classification and
// extraction are separate vision calls issued concurrently. Either response
// failing to parse yields loan.ErrMalformedOutput.
func (i *Interpreter) Interpret(ctx context.Context, doc agents.Image, filename string) (loan.DocumentRecord, error) {
	var (
		docType loan.DocType
		fields  loan.Fields
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := i.classify(gctx, doc)
		if err != nil {
			return fmt.Errorf("classify %s: %w", filename, err)
		}
		docType = t
		return nil
	})

	g.Go(func() error {
		f, err := i.extract(gctx, doc, filename)
		if err != nil {
			return fmt.Errorf("extract %s: %w", filename, err)
		}
		fields = f
		return nil
	})

	if err := g.Wait(); err != nil {
		return loan.DocumentRecord{}, err
	}

	i.logger.InfoContext(
		ctx, "document interpreted",
		"filename", filename,
		"doc_type", docType,
		"fields", fields.Keys(),
		"unrecognized", fields.Unrecognized(docType).Keys(),
	)

	return loan.DocumentRecord{
		Filename: filename,
		DocType:  docType,
		Fields:   fields,
	}, nil
}

func (i *Interpreter) classify(ctx context.Context, doc agents.Image) (loan.DocType, error) {
	out, err := i.vision.Analyze(ctx, i.prompts.Compose(prompts.StageClassify), doc)
	if err != nil {
		return "", err
	}

	parsed, err := formatting.Parse[classifyResponse](out)
	if err != nil {
		return "", fmt.Errorf("%w: %w", loan.ErrMalformedOutput, err)
	}

	if parsed.DocType == nil {
		return loan.Other, nil
	}
	return loan.ParseDocType(*parsed.DocType), nil
}

func (i *Interpreter) extract(ctx context.Context, doc agents.Image, filename string) (loan.Fields, error) {
	out, err := i.vision.Analyze(ctx, i.prompts.Compose(prompts.StageExtract), doc)
	if err != nil {
		return nil, err
	}

	raw, err := formatting.Parse[map[string]any](out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", loan.ErrMalformedOutput, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: extraction is not an object", loan.ErrMalformedOutput)
	}

	return i.normalize(raw, filename), nil
}

// normalize canonicalizes keys, drops absent values, and rewrites dates as
// YYYY-MM-DD. Dates that cannot be normalized unambiguously are dropped.
// When an alias and its canonical key are both present the canonical key
// wins.
func (i *Interpreter) normalize(raw map[string]any, filename string) loan.Fields {
	fields := make(loan.Fields, len(raw))

	for _, key := range slices.Sorted(maps.Keys(raw)) {
		name := loan.CanonicalField(key)
		if name == "" || name == "filename" || name == "doc_type" {
			continue
		}

		value, ok := stringify(raw[key])
		if !ok {
			continue
		}

		if loan.IsDateField(name) {
			normalized, err := loan.NormalizeDate(value)
			if err != nil {
				i.logger.Warn(
					"dropping unnormalizable date",
					"filename", filename,
					"field", key,
					"error", err,
				)
				continue
			}
			value = normalized
		}

		if _, exists := fields[name]; exists && key != name {
			continue
		}
		fields[name] = value
	}

	return fields
}

func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return "", false
		}
		return string(data), true
	}
}

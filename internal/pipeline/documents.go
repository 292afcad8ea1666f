package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/intake/internal/agents"
	"github.com/JaimeStill/intake/internal/loan"
	"github.com/JaimeStill/intake/pkg/storage"
)

const mediaPDF = "application/pdf"

// documentsNode fans out over the document keys with bounded concurrency.
// Results are stored by index so both record slices line up with the
// input keys.
func (p *execution) documentsNode() state.StateNode {
	return p.timed("documents", func(ctx context.Context, s state.State) (state.State, error) {
		keys, err := get[[]string](s, KeyDocumentKeys)
		if err != nil {
			return s, fmt.Errorf("documents: %w", err)
		}

		docs := make([]loan.DocumentRecord, len(keys))
		validations := make([]loan.ValidationRecord, len(keys))
		failures := make([]string, len(keys))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.workerCount(len(keys)))

		for i, key := range keys {
			g.Go(func() error {
				if gctx.Err() != nil {
					return gctx.Err()
				}

				doc, val, err := p.processDocument(gctx, key)
				if err == nil {
					docs[i], validations[i] = doc, val
					return nil
				}

				if p.opts.FailurePolicy != BestEffort || gctx.Err() != nil {
					return fmt.Errorf("%w: %s: %w", ErrDocumentFailed, key, err)
				}

				p.logger.WarnContext(gctx, "document failed, continuing", "key", key, "error", err)
				docs[i], validations[i] = placeholder(key, err)
				failures[i] = fmt.Sprintf("document %s: %v", key, err)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return s, fmt.Errorf("documents: %w", err)
		}

		var degraded []string
		for _, f := range failures {
			if f != "" {
				degraded = append(degraded, f)
			}
		}

		p.logger.InfoContext(ctx, "documents processed", "count", len(keys), "failed", len(degraded))

		s = s.Set(KeyDocuments, docs)
		s = s.Set(KeyValidations, validations)
		return addDegraded(s, degraded...), nil
	})
}

// processDocument downloads and prepares one document, then interprets and
// checks it concurrently.
func (p *Pipeline) processDocument(ctx context.Context, key string) (loan.DocumentRecord, loan.ValidationRecord, error) {
	img, pages, err := p.prepare(ctx, key)
	if err != nil {
		return loan.DocumentRecord{}, loan.ValidationRecord{}, err
	}

	var (
		doc loan.DocumentRecord
		val loan.ValidationRecord
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		doc, err = p.rt.Interpreter.Interpret(gctx, img, key)
		return err
	})

	g.Go(func() error {
		var err error
		val, err = p.rt.Checker.Check(gctx, img, key)
		return err
	})

	if err := g.Wait(); err != nil {
		return loan.DocumentRecord{}, loan.ValidationRecord{}, err
	}

	doc.Filename = key
	doc.PageCount = pages
	val.Filename = key
	return doc, val, nil
}

// prepare returns the image to analyze and the document's page count.
// PDFs are rendered to a PNG of their first page.
func (p *Pipeline) prepare(ctx context.Context, key string) (agents.Image, int, error) {
	data, contentType, err := storage.ReadAll(ctx, p.rt.Storage, key, p.opts.MaxDocumentSize)
	if err != nil {
		return agents.Image{}, 0, fmt.Errorf("download: %w", err)
	}

	switch mt := agents.MediaTypeFor(contentType, key); mt {
	case agents.MediaPNG, agents.MediaJPEG:
		return agents.Image{Data: data, MediaType: mt}, 1, nil
	case mediaPDF:
		if p.rt.Renderer == nil {
			return agents.Image{}, 0, fmt.Errorf("%w: no PDF renderer configured", ErrUnsupportedDocument)
		}
		return p.rt.Renderer.Render(ctx, data)
	default:
		return agents.Image{}, 0, fmt.Errorf("%w: %q", ErrUnsupportedDocument, contentType)
	}
}

func placeholder(key string, err error) (loan.DocumentRecord, loan.ValidationRecord) {
	doc := loan.DocumentRecord{
		Filename: key,
		DocType:  loan.Other,
		Fields:   loan.Fields{},
		Error:    err.Error(),
	}
	val := loan.ValidationRecord{
		Filename:     key,
		Valid:        false,
		Reason:       "document processing failed: " + err.Error(),
		ForgerySigns: []string{},
	}
	return doc, val
}

package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/JaimeStill/document-context/pkg/config"
	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/image"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/JaimeStill/intake/internal/agents"
)

// Renderer converts a PDF into the image submitted for analysis and reports
// the PDF's page count.
type Renderer interface {
	Render(ctx context.Context, pdf []byte) (agents.Image, int, error)
}

// PDFRenderer renders the first page of a PDF to PNG with ImageMagick.
type PDFRenderer struct {
	cfg config.ImageConfig
}

// NewPDFRenderer creates a renderer producing PNGs at dpi.
func NewPDFRenderer(dpi int) *PDFRenderer {
	if dpi <= 0 {
		dpi = 300
	}
	return &PDFRenderer{
		cfg: config.ImageConfig{
			Format:  "png",
			DPI:     dpi,
			Options: map[string]any{"background": "white"},
		},
	}
}

// Render validates the PDF, counts its pages, and rasterizes page one.
func (r *PDFRenderer) Render(ctx context.Context, data []byte) (agents.Image, int, error) {
	pages, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return agents.Image{}, 0, fmt.Errorf("%w: read pdf: %w", ErrRenderFailed, err)
	}
	if pages < 1 {
		return agents.Image{}, 0, fmt.Errorf("%w: pdf has no pages", ErrRenderFailed)
	}

	if err := ctx.Err(); err != nil {
		return agents.Image{}, 0, err
	}

	tmp, err := os.CreateTemp("", "intake-*.pdf")
	if err != nil {
		return agents.Image{}, 0, fmt.Errorf("%w: create temp pdf: %w", ErrRenderFailed, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return agents.Image{}, 0, fmt.Errorf("%w: write temp pdf: %w", ErrRenderFailed, err)
	}
	tmp.Close()

	doc, err := document.OpenPDF(tmp.Name())
	if err != nil {
		return agents.Image{}, 0, fmt.Errorf("%w: open pdf: %w", ErrRenderFailed, err)
	}
	defer doc.Close()

	page, err := doc.ExtractPage(1)
	if err != nil {
		return agents.Image{}, 0, fmt.Errorf("%w: extract page 1: %w", ErrRenderFailed, err)
	}

	renderer, err := image.NewImageMagickRenderer(r.cfg)
	if err != nil {
		return agents.Image{}, 0, fmt.Errorf("%w: create renderer: %w", ErrRenderFailed, err)
	}

	png, err := page.ToImage(renderer, nil)
	if err != nil {
		return agents.Image{}, 0, fmt.Errorf("%w: render page 1: %w", ErrRenderFailed, err)
	}

	return agents.Image{Data: png, MediaType: agents.MediaPNG}, pages, nil
}

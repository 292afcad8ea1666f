// Package agents adapts go-agents to the two model capabilities the intake
// stages depend on: image analysis and text reasoning.
package agents

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/encoding"
	"github.com/JaimeStill/go-agents/pkg/agent"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// Media types accepted for vision analysis.
const (
	MediaPNG  = "image/png"
	MediaJPEG = "image/jpeg"
)

// ErrUnsupportedImage is returned for images that are neither PNG nor JPEG.
var ErrUnsupportedImage = errors.New("unsupported image type")

// Vision analyzes a single image against a prompt and returns the raw
// model text.
type Vision interface {
	Analyze(ctx context.Context, prompt string, img Image) (string, error)
}

// Reasoner answers a text-only prompt and returns the raw model text.
type Reasoner interface {
	Reason(ctx context.Context, prompt string) (string, error)
}

// Image is a rendered document image ready for a vision call.
type Image struct {
	Data      []byte
	MediaType string
}

// DataURI encodes the image as a base64 data URI.
func (i Image) DataURI() (string, error) {
	switch i.MediaType {
	case MediaPNG:
		return encoding.EncodeImageDataURI(i.Data, document.PNG)
	case MediaJPEG:
		return encoding.EncodeImageDataURI(i.Data, document.JPEG)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedImage, i.MediaType)
	}
}

// MediaTypeFor resolves an image media type from a declared content type,
// falling back to the key's extension.
func MediaTypeFor(contentType, key string) string {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch ct {
	case MediaPNG, MediaJPEG, "application/pdf":
		return ct
	case "image/jpg":
		return MediaJPEG
	}

	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return MediaPNG
	case ".jpg", ".jpeg":
		return MediaJPEG
	case ".pdf":
		return "application/pdf"
	}
	return ct
}

// Client implements Vision and Reasoner over a go-agents configuration.
// Each call creates its own agent, so a Client is safe for concurrent use.
type Client struct {
	cfg gaconfig.AgentConfig
}

// New returns a Client for cfg.
func New(cfg gaconfig.AgentConfig) *Client {
	return &Client{cfg: cfg}
}

// Analyze sends prompt and img to the vision endpoint.
func (c *Client) Analyze(ctx context.Context, prompt string, img Image) (string, error) {
	a, err := agent.New(&c.cfg)
	if err != nil {
		return "", fmt.Errorf("create agent: %w", err)
	}

	uri, err := img.DataURI()
	if err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}

	resp, err := a.Vision(ctx, prompt, []string{uri})
	if err != nil {
		return "", fmt.Errorf("vision call: %w", err)
	}
	return resp.Content(), nil
}

// Reason sends prompt to the chat endpoint.
func (c *Client) Reason(ctx context.Context, prompt string) (string, error) {
	a, err := agent.New(&c.cfg)
	if err != nil {
		return "", fmt.Errorf("create agent: %w", err)
	}

	resp, err := a.Chat(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("chat call: %w", err)
	}
	return resp.Content(), nil
}

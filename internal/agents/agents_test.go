package agents_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/intake/internal/agents"
)

func TestMediaTypeFor(t *testing.T) {
	tests := []struct {
		contentType string
		key         string
		want        string
	}{
		{"image/png", "doc", agents.MediaPNG},
		{"image/jpeg; charset=binary", "doc", agents.MediaJPEG},
		{"image/jpg", "doc", agents.MediaJPEG},
		{"application/octet-stream", "uploads/app_1/ID Doc.PNG", agents.MediaPNG},
		{"", "uploads/app_1/license.jpeg", agents.MediaJPEG},
		{"", "uploads/app_1/form.pdf", "application/pdf"},
		{"", "uploads/app_1/notes.txt", ""},
	}

	for _, tt := range tests {
		if got := agents.MediaTypeFor(tt.contentType, tt.key); got != tt.want {
			t.Errorf("MediaTypeFor(%q, %q) = %q, want %q", tt.contentType, tt.key, got, tt.want)
		}
	}
}

func TestImageDataURI(t *testing.T) {
	uri, err := agents.Image{Data: []byte{0x89, 'P', 'N', 'G'}, MediaType: agents.MediaPNG}.DataURI()
	if err != nil {
		t.Fatalf("DataURI error: %v", err)
	}
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Errorf("DataURI = %q", uri)
	}

	_, err = agents.Image{Data: []byte("x"), MediaType: "image/gif"}.DataURI()
	if !errors.Is(err, agents.ErrUnsupportedImage) {
		t.Errorf("error = %v, want ErrUnsupportedImage", err)
	}
}

type stubVision struct {
	out string
	err error
}

func (s stubVision) Analyze(ctx context.Context, prompt string, img agents.Image) (string, error) {
	return s.out, s.err
}

type stubReasoner struct{ err error }

func (s stubReasoner) Reason(ctx context.Context, prompt string) (string, error) {
	return "{}", s.err
}

type call struct {
	stage string
	err   error
}

type recorder struct{ calls []call }

func (r *recorder) ObserveCall(stage string, elapsed time.Duration, err error) {
	r.calls = append(r.calls, call{stage, err})
}

func TestObserve(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("boom")

	v := agents.ObserveVision(stubVision{out: "ok"}, "interpret", rec)
	if out, err := v.Analyze(context.Background(), "p", agents.Image{}); out != "ok" || err != nil {
		t.Fatalf("Analyze = %q, %v", out, err)
	}

	r := agents.ObserveReasoner(stubReasoner{err: boom}, "cross_validate", rec)
	if _, err := r.Reason(context.Background(), "p"); !errors.Is(err, boom) {
		t.Fatalf("Reason error = %v", err)
	}

	if len(rec.calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(rec.calls))
	}
	if rec.calls[0].stage != "interpret" || rec.calls[0].err != nil {
		t.Errorf("first call = %+v", rec.calls[0])
	}
	if rec.calls[1].stage != "cross_validate" || !errors.Is(rec.calls[1].err, boom) {
		t.Errorf("second call = %+v", rec.calls[1])
	}
}

func TestObserveNilObserver(t *testing.T) {
	v := stubVision{out: "ok"}
	if got := agents.ObserveVision(v, "interpret", nil); got != agents.Vision(v) {
		t.Error("nil observer should return the original Vision")
	}
}

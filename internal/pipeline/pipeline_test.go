package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/JaimeStill/intake/internal/agents"
	"github.com/JaimeStill/intake/internal/crossval"
	"github.com/JaimeStill/intake/internal/decision"
	"github.com/JaimeStill/intake/internal/loan"
	"github.com/JaimeStill/intake/internal/pipeline"
	"github.com/JaimeStill/intake/internal/prompts"
	"github.com/JaimeStill/intake/pkg/lifecycle"
	"github.com/JaimeStill/intake/pkg/storage"
)

type object struct {
	data        []byte
	contentType string
}

type memStore map[string]object

func (m memStore) Start(*lifecycle.Coordinator) error { return nil }

func (m memStore) Download(ctx context.Context, key string) (*storage.Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	obj, ok := m[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Blob{
		Body:          io.NopCloser(bytes.NewReader(obj.data)),
		ContentType:   obj.contentType,
		ContentLength: int64(len(obj.data)),
	}, nil
}

func (m memStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m[key]
	return ok, nil
}

type fakeInterpreter struct {
	fail  map[string]error
	block bool
}

func (f *fakeInterpreter) Interpret(ctx context.Context, doc agents.Image, filename string) (loan.DocumentRecord, error) {
	if f.block {
		<-ctx.Done()
		return loan.DocumentRecord{}, ctx.Err()
	}
	if err := f.fail[filename]; err != nil {
		return loan.DocumentRecord{}, err
	}
	return loan.DocumentRecord{
		DocType: loan.Passport,
		Fields:  loan.Fields{"name": "Jane Doe", "dob": "1990-05-01"},
	}, nil
}

type fakeChecker struct {
	invalid map[string]bool
}

func (f *fakeChecker) Check(_ context.Context, doc agents.Image, filename string) (loan.ValidationRecord, error) {
	if doc.MediaType == "" {
		return loan.ValidationRecord{}, errors.New("image has no media type")
	}
	return loan.ValidationRecord{
		Valid:        !f.invalid[filename],
		LayoutScore:  90,
		FieldScore:   90,
		ForgerySigns: []string{},
	}, nil
}

type fakeCrossValidator struct {
	mu     sync.Mutex
	app    loan.ApplicationData
	docs   []loan.DocumentRecord
	status loan.Outcome
	err    error
}

func (f *fakeCrossValidator) CrossValidate(_ context.Context, app loan.ApplicationData, docs []loan.DocumentRecord) (loan.CrossValidationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.app, f.docs = app, docs

	if f.err != nil {
		return loan.CrossValidationResult{}, f.err
	}
	status := f.status
	if status == "" {
		status = loan.Passed
	}
	return loan.CrossValidationResult{
		FieldComparisons: []loan.FieldComparison{},
		Inconsistencies:  []loan.Inconsistency{},
		Summary:          "All fields consistent",
		OverallStatus:    status,
	}, nil
}

type fakeRenderer struct {
	pages int
	err   error
}

func (f fakeRenderer) Render(_ context.Context, pdf []byte) (agents.Image, int, error) {
	if f.err != nil {
		return agents.Image{}, 0, f.err
	}
	return agents.Image{Data: []byte("rendered"), MediaType: agents.MediaPNG}, f.pages, nil
}

var asOf = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func testStore() memStore {
	return memStore{
		"app-1/passport.png": {data: []byte("png"), contentType: "image/png"},
		"app-1/license.jpg":  {data: []byte("jpg"), contentType: ""},
		"app-1/form.pdf":     {data: []byte("%PDF-1.7"), contentType: "application/pdf"},
		"app-1/notes.txt":    {data: []byte("notes"), contentType: "text/plain"},
		"app-1/application.json": {
			data:        []byte(`{"name": "Jane Doe", "dob": "1990-05-01"}`),
			contentType: "application/json",
		},
		"app-1/broken.json": {data: []byte(`not json`), contentType: "application/json"},
	}
}

type harness struct {
	rt     *pipeline.Runtime
	interp *fakeInterpreter
	check  *fakeChecker
	cv     *fakeCrossValidator
}

func newHarness() *harness {
	h := &harness{
		interp: &fakeInterpreter{},
		check:  &fakeChecker{},
		cv:     &fakeCrossValidator{},
	}
	h.rt = &pipeline.Runtime{
		Storage:        testStore(),
		Interpreter:    h.interp,
		Checker:        h.check,
		CrossValidator: h.cv,
		Aggregator:     decision.NewAggregator(18, func() time.Time { return asOf }),
		Renderer:       fakeRenderer{pages: 3},
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return h
}

func (h *harness) pipeline(t *testing.T, opts pipeline.Options) *pipeline.Pipeline {
	t.Helper()
	p, err := pipeline.New(h.rt, opts)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return p
}

func TestRunPassed(t *testing.T) {
	h := newHarness()
	p := h.pipeline(t, pipeline.Options{Concurrency: 2})

	keys := []string{"app-1/passport.png", "app-1/license.jpg"}
	d, err := p.Run(context.Background(), keys, "app-1/application.json")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if d.LoanApplicationStatus != loan.StatusPassed {
		t.Errorf("status = %q, want passed", d.LoanApplicationStatus)
	}
	if d.Degraded != nil {
		t.Errorf("Degraded = %v, want nil", d.Degraded)
	}

	auth := d.ValidationDetails.DocumentAuthenticity
	if auth.ValidCount != 2 || auth.TotalCount != 2 {
		t.Errorf("authenticity counts = %d/%d, want 2/2", auth.ValidCount, auth.TotalCount)
	}

	if len(h.cv.docs) != len(keys) {
		t.Fatalf("cross-validated %d documents, want %d", len(h.cv.docs), len(keys))
	}
	for i, doc := range h.cv.docs {
		if doc.Filename != keys[i] {
			t.Errorf("docs[%d].Filename = %q, want %q", i, doc.Filename, keys[i])
		}
		if doc.PageCount != 1 {
			t.Errorf("docs[%d].PageCount = %d, want 1", i, doc.PageCount)
		}
	}
	if h.cv.app["name"] != "Jane Doe" {
		t.Errorf("application = %v", h.cv.app)
	}
}

func TestRunRejectsInvalidDocument(t *testing.T) {
	h := newHarness()
	h.check.invalid = map[string]bool{"app-1/license.jpg": true}
	p := h.pipeline(t, pipeline.Options{})

	d, err := p.Run(context.Background(), []string{"app-1/passport.png", "app-1/license.jpg"}, "app-1/application.json")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if d.Approved() {
		t.Error("decision approved with an invalid document")
	}
	if got := d.ValidationDetails.DocumentAuthenticity.ValidCount; got != 1 {
		t.Errorf("ValidCount = %d, want 1", got)
	}
}

func TestRunApplicationLoadDegrades(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"missing", "app-1/missing.json"},
		{"malformed", "app-1/broken.json"},
		{"empty key", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			p := h.pipeline(t, pipeline.Options{})

			d, err := p.Run(context.Background(), []string{"app-1/passport.png"}, tt.key)
			if err != nil {
				t.Fatalf("Run error: %v", err)
			}

			if h.cv.app == nil || len(h.cv.app) != 0 {
				t.Errorf("application = %v, want empty", h.cv.app)
			}
			if len(d.Degraded) != 1 || !strings.HasPrefix(d.Degraded[0], "application: ") {
				t.Errorf("Degraded = %v, want one application marker", d.Degraded)
			}
		})
	}
}

type cannedReasoner string

func (c cannedReasoner) Reason(context.Context, string) (string, error) { return string(c), nil }

func TestRunUnreadApplicationIsRejected(t *testing.T) {
	lib, err := prompts.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	reasoner := cannedReasoner(`{"field_comparisons": [], "inconsistencies": [], "overall_status": "failed"}`)

	tests := []struct {
		name string
		cfg  crossval.Config
	}{
		{"model", crossval.Config{Mode: crossval.ModeModel}},
		{"model trusted status", crossval.Config{Mode: crossval.ModeModel, FailOn: crossval.FailOnModel}},
		{"rules", crossval.Config{Mode: crossval.ModeRules}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			if err := cfg.Finalize(nil); err != nil {
				t.Fatal(err)
			}

			h := newHarness()
			v, err := crossval.New(cfg, reasoner, lib, h.rt.Logger)
			if err != nil {
				t.Fatal(err)
			}
			h.rt.CrossValidator = v
			p := h.pipeline(t, pipeline.Options{})

			d, err := p.Run(context.Background(), []string{"app-1/passport.png"}, "app-1/missing.json")
			if err != nil {
				t.Fatalf("Run error: %v", err)
			}

			if d.LoanApplicationStatus != loan.StatusRejected {
				t.Errorf("status = %q, want rejected", d.LoanApplicationStatus)
			}
			if d.ValidationDetails.CrossValidation.Status != loan.Failed {
				t.Errorf("cross-validation gate = %+v, want failed", d.ValidationDetails.CrossValidation)
			}
			if d.ValidationDetails.DocumentAuthenticity.Status != loan.Passed {
				t.Errorf("authenticity gate = %+v, want passed", d.ValidationDetails.DocumentAuthenticity)
			}
			if len(d.Degraded) != 1 {
				t.Errorf("Degraded = %v, want the application marker", d.Degraded)
			}
		})
	}
}

func TestRunFailFast(t *testing.T) {
	h := newHarness()
	h.interp.fail = map[string]error{"app-1/license.jpg": loan.ErrMalformedOutput}
	p := h.pipeline(t, pipeline.Options{FailurePolicy: pipeline.FailFast})

	d, err := p.Run(context.Background(), []string{"app-1/passport.png", "app-1/license.jpg"}, "app-1/application.json")
	if d != nil {
		t.Errorf("decision = %+v, want nil", d)
	}
	if !errors.Is(err, pipeline.ErrDocumentFailed) {
		t.Errorf("error = %v, want ErrDocumentFailed", err)
	}
	if !errors.Is(err, loan.ErrMalformedOutput) {
		t.Errorf("error = %v, want ErrMalformedOutput in chain", err)
	}
	if h.cv.docs != nil {
		t.Error("cross-validation ran after a document failure")
	}
}

func TestRunBestEffort(t *testing.T) {
	h := newHarness()
	h.interp.fail = map[string]error{"app-1/license.jpg": loan.ErrMalformedOutput}
	p := h.pipeline(t, pipeline.Options{FailurePolicy: pipeline.BestEffort})

	keys := []string{"app-1/passport.png", "app-1/license.jpg"}
	d, err := p.Run(context.Background(), keys, "app-1/application.json")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if d.LoanApplicationStatus != loan.StatusRejected {
		t.Errorf("status = %q, want rejected", d.LoanApplicationStatus)
	}

	auth := d.ValidationDetails.DocumentAuthenticity
	if auth.ValidCount != 1 || auth.TotalCount != 2 {
		t.Errorf("authenticity counts = %d/%d, want 1/2", auth.ValidCount, auth.TotalCount)
	}

	if len(d.Degraded) != 1 || !strings.Contains(d.Degraded[0], "app-1/license.jpg") {
		t.Errorf("Degraded = %v, want one marker naming the failed document", d.Degraded)
	}

	failed := h.cv.docs[1]
	if failed.Filename != keys[1] || failed.DocType != loan.Other || failed.Error == "" {
		t.Errorf("placeholder = %+v", failed)
	}
}

func TestRunCancellation(t *testing.T) {
	for _, policy := range []pipeline.FailurePolicy{pipeline.FailFast, pipeline.BestEffort} {
		t.Run(string(policy), func(t *testing.T) {
			h := newHarness()
			h.interp.block = true
			p := h.pipeline(t, pipeline.Options{FailurePolicy: policy})

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			d, err := p.Run(ctx, []string{"app-1/passport.png"}, "app-1/application.json")
			if err == nil {
				t.Fatal("expected error after cancellation")
			}
			if d != nil {
				t.Errorf("decision = %+v, want nil", d)
			}
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("error = %v, want DeadlineExceeded", err)
			}
		})
	}
}

func TestRunPDF(t *testing.T) {
	h := newHarness()
	p := h.pipeline(t, pipeline.Options{})

	if _, err := p.Run(context.Background(), []string{"app-1/form.pdf"}, "app-1/application.json"); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if got := h.cv.docs[0].PageCount; got != 3 {
		t.Errorf("PageCount = %d, want 3", got)
	}
}

func TestRunDocumentErrors(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		renderer pipeline.Renderer
		opts     pipeline.Options
		wantErr  error
	}{
		{"unsupported type", "app-1/notes.txt", fakeRenderer{}, pipeline.Options{}, pipeline.ErrUnsupportedDocument},
		{"missing object", "app-1/missing.png", fakeRenderer{}, pipeline.Options{}, storage.ErrNotFound},
		{"too large", "app-1/passport.png", fakeRenderer{}, pipeline.Options{MaxDocumentSize: 2}, storage.ErrTooLarge},
		{"no renderer", "app-1/form.pdf", nil, pipeline.Options{}, pipeline.ErrUnsupportedDocument},
		{"render failure", "app-1/form.pdf", fakeRenderer{err: pipeline.ErrRenderFailed}, pipeline.Options{}, pipeline.ErrRenderFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.rt.Renderer = tt.renderer
			p := h.pipeline(t, tt.opts)

			_, err := p.Run(context.Background(), []string{tt.key}, "app-1/application.json")
			if !errors.Is(err, pipeline.ErrDocumentFailed) || !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want ErrDocumentFailed wrapping %v", err, tt.wantErr)
			}
		})
	}
}

func TestRunCrossValidationFailure(t *testing.T) {
	h := newHarness()
	h.cv.err = loan.ErrMalformedOutput
	p := h.pipeline(t, pipeline.Options{})

	d, err := p.Run(context.Background(), []string{"app-1/passport.png"}, "app-1/application.json")
	if d != nil {
		t.Errorf("decision = %+v, want nil", d)
	}
	if !errors.Is(err, pipeline.ErrCrossValidationFailed) {
		t.Errorf("error = %v, want ErrCrossValidationFailed", err)
	}
}

func TestRunNoDocuments(t *testing.T) {
	p := newHarness().pipeline(t, pipeline.Options{})

	if _, err := p.Run(context.Background(), nil, "app-1/application.json"); !errors.Is(err, pipeline.ErrNoDocuments) {
		t.Errorf("error = %v, want ErrNoDocuments", err)
	}
}

func TestNew(t *testing.T) {
	h := newHarness()

	if _, err := pipeline.New(h.rt, pipeline.Options{FailurePolicy: "retry"}); err == nil {
		t.Error("expected error for unknown failure policy")
	}

	incomplete := *h.rt
	incomplete.Checker = nil
	if _, err := pipeline.New(&incomplete, pipeline.Options{}); err == nil {
		t.Error("expected error for incomplete runtime")
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := pipeline.NewMetrics(reg)

	h := newHarness()
	h.rt.Metrics = m
	p := h.pipeline(t, pipeline.Options{})

	if _, err := p.Run(context.Background(), []string{"app-1/passport.png"}, "app-1/missing.json"); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if got := testutil.ToFloat64(m.Runs.WithLabelValues("passed")); got != 1 {
		t.Errorf("passed runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.DegradedRuns); got != 1 {
		t.Errorf("degraded runs = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.StageDuration); got != 4 {
		t.Errorf("stage series = %d, want 4", got)
	}

	m.ObserveCall("interpret", time.Second, errors.New("timeout"))
	if got := testutil.ToFloat64(m.ModelCalls.WithLabelValues("interpret", "error")); got != 1 {
		t.Errorf("model call errors = %v, want 1", got)
	}
}

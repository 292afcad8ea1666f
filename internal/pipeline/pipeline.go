// Package pipeline runs one loan application through the intake stages:
// per-document interpretation and authenticity checks fanned out
// concurrently, application loading, cross-validation, and the final
// decision.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"

	"github.com/JaimeStill/intake/internal/agents"
	"github.com/JaimeStill/intake/internal/decision"
	"github.com/JaimeStill/intake/internal/loan"
	"github.com/JaimeStill/intake/pkg/storage"
)

// FailurePolicy controls how a failing document affects the run.
type FailurePolicy string

const (
	// FailFast fails the run on the first document error.
	FailFast FailurePolicy = "fail_fast"
	// BestEffort records a rejected placeholder for the failing document
	// and continues.
	BestEffort FailurePolicy = "best_effort"
)

// Interpreter classifies a document and extracts its fields.
type Interpreter interface {
	Interpret(ctx context.Context, doc agents.Image, filename string) (loan.DocumentRecord, error)
}

// Checker produces an authenticity verdict for a document.
type Checker interface {
	Check(ctx context.Context, doc agents.Image, filename string) (loan.ValidationRecord, error)
}

// CrossValidator compares the application with the full document set.
type CrossValidator interface {
	CrossValidate(ctx context.Context, app loan.ApplicationData, docs []loan.DocumentRecord) (loan.CrossValidationResult, error)
}

// Runtime bundles the collaborators a run depends on. Every collaborator
// must be safe for concurrent use.
type Runtime struct {
	Storage        storage.System
	Interpreter    Interpreter
	Checker        Checker
	CrossValidator CrossValidator
	Aggregator     *decision.Aggregator
	Renderer       Renderer
	Metrics        *Metrics
	Logger         *slog.Logger
}

// Options tunes a Pipeline.
type Options struct {
	Concurrency     int
	FailurePolicy   FailurePolicy
	MaxDocumentSize int64
}

// Pipeline evaluates loan applications. It holds no per-run state, so
// concurrent runs are independent.
type Pipeline struct {
	rt     *Runtime
	opts   Options
	logger *slog.Logger
}

// New creates a Pipeline.
func New(rt *Runtime, opts Options) (*Pipeline, error) {
	if rt.Storage == nil || rt.Interpreter == nil || rt.Checker == nil || rt.CrossValidator == nil {
		return nil, errors.New("pipeline runtime is incomplete")
	}
	if rt.Aggregator == nil {
		rt.Aggregator = decision.NewAggregator(decision.DefaultMinimumAge, nil)
	}
	if opts.FailurePolicy == "" {
		opts.FailurePolicy = FailFast
	}
	if opts.FailurePolicy != FailFast && opts.FailurePolicy != BestEffort {
		return nil, fmt.Errorf("unknown failure policy %q", opts.FailurePolicy)
	}

	return &Pipeline{
		rt:     rt,
		opts:   opts,
		logger: rt.Logger.With("system", "pipeline"),
	}, nil
}

// Run evaluates the documents stored under documentKeys against the
// application stored under applicationKey. A run either returns a complete
// decision, possibly carrying degraded markers, or fails with an error and
// no decision.
func (p *Pipeline) Run(ctx context.Context, documentKeys []string, applicationKey string) (*loan.FinalDecision, error) {
	if len(documentKeys) == 0 {
		return nil, ErrNoDocuments
	}

	start := time.Now()
	d, err := p.run(ctx, documentKeys, applicationKey)
	p.rt.Metrics.observeRun(d, err, time.Since(start))

	if err != nil {
		p.logger.ErrorContext(ctx, "run failed", "application_key", applicationKey, "error", err)
		return nil, err
	}

	p.logger.InfoContext(
		ctx, "run complete",
		"application_key", applicationKey,
		"documents", len(documentKeys),
		"status", d.LoanApplicationStatus,
		"approved", d.Approved(),
		"degraded", len(d.Degraded),
		"duration", time.Since(start),
	)
	return d, nil
}

// execution is the state of one run. The first node failure is returned
// in place of the error reported by the graph.
type execution struct {
	*Pipeline
	err error
}

func (p *Pipeline) run(ctx context.Context, documentKeys []string, applicationKey string) (*loan.FinalDecision, error) {
	exec := &execution{Pipeline: p}

	graph, err := exec.buildGraph()
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initial := state.New(nil)
	initial = initial.Set(KeyDocumentKeys, documentKeys)
	initial = initial.Set(KeyApplicationKey, applicationKey)

	final, err := graph.Execute(ctx, initial)
	if exec.err != nil {
		return nil, exec.err
	}
	if err != nil {
		return nil, err
	}

	return extractDecision(final)
}

func (p *execution) buildGraph() (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("intake-evaluate")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	nodes := []struct {
		name string
		node state.StateNode
	}{
		{"documents", p.documentsNode()},
		{"application", p.applicationNode()},
		{"cross_validate", p.crossValidateNode()},
		{"decide", p.decideNode()},
	}

	for i, n := range nodes {
		if err := graph.AddNode(n.name, n.node); err != nil {
			return nil, err
		}
		if i > 0 {
			if err := graph.AddEdge(nodes[i-1].name, n.name, nil); err != nil {
				return nil, err
			}
		}
	}

	if err := graph.SetEntryPoint("documents"); err != nil {
		return nil, err
	}
	if err := graph.SetExitPoint("decide"); err != nil {
		return nil, err
	}

	return graph, nil
}

func (p *Pipeline) workerCount(docCount int) int {
	n := p.opts.Concurrency
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return max(min(n, docCount), 1)
}

// timed wraps a node function with stage duration metrics and records the
// first node failure.
func (p *execution) timed(stage string, fn func(context.Context, state.State) (state.State, error)) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		start := time.Now()
		out, err := fn(ctx, s)
		p.rt.Metrics.observeStage(stage, time.Since(start))
		if err != nil && p.err == nil {
			p.err = err
		}
		return out, err
	})
}

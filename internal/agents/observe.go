package agents

import (
	"context"
	"time"
)

// Observer records the duration and outcome of each model call.
type Observer interface {
	ObserveCall(stage string, elapsed time.Duration, err error)
}

type observedVision struct {
	next     Vision
	stage    string
	observer Observer
}

// ObserveVision reports every Analyze call on v to o under stage.
func ObserveVision(v Vision, stage string, o Observer) Vision {
	if o == nil {
		return v
	}
	return &observedVision{next: v, stage: stage, observer: o}
}

func (v *observedVision) Analyze(ctx context.Context, prompt string, img Image) (string, error) {
	start := time.Now()
	out, err := v.next.Analyze(ctx, prompt, img)
	v.observer.ObserveCall(v.stage, time.Since(start), err)
	return out, err
}

type observedReasoner struct {
	next     Reasoner
	stage    string
	observer Observer
}

// ObserveReasoner reports every Reason call on r to o under stage.
func ObserveReasoner(r Reasoner, stage string, o Observer) Reasoner {
	if o == nil {
		return r
	}
	return &observedReasoner{next: r, stage: stage, observer: o}
}

func (r *observedReasoner) Reason(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := r.next.Reason(ctx, prompt)
	r.observer.ObserveCall(r.stage, time.Since(start), err)
	return out, err
}

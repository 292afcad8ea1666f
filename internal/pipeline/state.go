package pipeline

import (
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/intake/internal/loan"
)

// Keys for values carried through the run's state graph.
const (
	KeyDocumentKeys    = "document_keys"
	KeyApplicationKey  = "application_key"
	KeyDocuments       = "documents"
	KeyValidations     = "validations"
	KeyApplication     = "application"
	KeyCrossValidation = "cross_validation"
	KeyDecision        = "decision"
	KeyDegraded        = "degraded"
)

func get[T any](s state.State, key string) (T, error) {
	var zero T

	val, ok := s.Get(key)
	if !ok {
		return zero, fmt.Errorf("missing %s in state", key)
	}

	v, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("%s has unexpected type %T", key, val)
	}
	return v, nil
}

func addDegraded(s state.State, markers ...string) state.State {
	if len(markers) == 0 {
		return s
	}
	existing, _ := get[[]string](s, KeyDegraded)
	combined := make([]string, 0, len(existing)+len(markers))
	combined = append(combined, existing...)
	combined = append(combined, markers...)
	return s.Set(KeyDegraded, combined)
}

func extractDecision(s state.State) (*loan.FinalDecision, error) {
	d, err := get[loan.FinalDecision](s, KeyDecision)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

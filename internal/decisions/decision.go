// Package decisions records every evaluated loan application in a ledger
// and exposes evaluation and lookup over HTTP.
package decisions

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/intake/internal/loan"
)

// Decision is a persisted pipeline run.
type Decision struct {
	ID             uuid.UUID              `json:"id"`
	ApplicationKey string                 `json:"application_key"`
	DocumentKeys   []string               `json:"document_keys"`
	Status         loan.ApplicationStatus `json:"status"`
	Degraded       bool                   `json:"degraded"`
	Result         loan.FinalDecision     `json:"result"`
	CreatedAt      time.Time              `json:"created_at"`
}

// EvaluateCommand names the stored documents and application record to
// evaluate.
type EvaluateCommand struct {
	ApplicationKey string   `json:"application_key"`
	DocumentKeys   []string `json:"document_keys"`
}

// Validate rejects commands the pipeline cannot run.
func (c EvaluateCommand) Validate() error {
	if len(c.DocumentKeys) == 0 {
		return ErrInvalidRequest
	}
	for _, k := range c.DocumentKeys {
		if k == "" {
			return ErrInvalidRequest
		}
	}
	return nil
}

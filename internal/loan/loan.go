// Package loan defines the records exchanged between the intake stages:
// per-document interpretation and authenticity results, the application
// submitted by the applicant, the cross-validation findings, and the final
// decision.
package loan

import (
	"encoding/json"
	"errors"
	"strings"
)

var (
	// ErrMalformedOutput indicates a model response that could not be
	// parsed into the expected structure.
	ErrMalformedOutput = errors.New("malformed model output")

	// ErrApplicationLoad indicates the application record could not be
	// read or decoded.
	ErrApplicationLoad = errors.New("application data could not be loaded")

	// ErrInvalidDate indicates a date value that is unparseable or uses an
	// ambiguous day/month layout.
	ErrInvalidDate = errors.New("invalid or ambiguous date")
)

// Outcome is the pass/fail result of a gate or of cross-validation.
type Outcome string

const (
	Passed Outcome = "passed"
	Failed Outcome = "failed"
)

// UnmarshalJSON lowercases the decoded value.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*o = Outcome(strings.ToLower(strings.TrimSpace(raw)))
	return nil
}

// OutcomeOf maps a boolean gate result to an Outcome.
func OutcomeOf(ok bool) Outcome {
	if ok {
		return Passed
	}
	return Failed
}

// ApplicationData is the decoded application record. Keys are whatever the
// submitting form used.
type ApplicationData map[string]any

// DocumentRecord is the interpretation of a single document.
type DocumentRecord struct {
	Filename  string  `json:"filename"`
	DocType   DocType `json:"doc_type"`
	Fields    Fields  `json:"extracted_fields"`
	PageCount int     `json:"page_count,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// ValidationRecord is the authenticity verdict for a single document.
type ValidationRecord struct {
	Filename     string   `json:"filename"`
	Valid        bool     `json:"valid"`
	Reason       string   `json:"reason"`
	LayoutScore  int      `json:"layout_score"`
	FieldScore   int      `json:"field_score"`
	ForgerySigns []string `json:"forgery_signs"`
}

// ClampScore bounds a confidence score to 0-100.
func ClampScore(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return int(v + 0.5)
	}
}

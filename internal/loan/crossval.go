package loan

import (
	"encoding/json"
	"strings"
)

// Status is the result of comparing one field.
type Status string

const (
	Matched    Status = "matched"
	Mismatched Status = "mismatched"
)

// Severity ranks an inconsistency. Unrecognized values rank as High.
type Severity string

const (
	High   Severity = "high"
	Medium Severity = "medium"
	Low    Severity = "low"
)

// Rank orders severities from Low (1) to High (3).
func (s Severity) Rank() int {
	switch Severity(strings.ToLower(string(s))) {
	case Low:
		return 1
	case Medium:
		return 2
	default:
		return 3
	}
}

// UnmarshalJSON lowercases the decoded value.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Severity(strings.ToLower(strings.TrimSpace(raw)))
	return nil
}

// AtLeast reports whether s ranks at or above threshold.
func (s Severity) AtLeast(threshold Severity) bool {
	return s.Rank() >= threshold.Rank()
}

// FieldComparison compares one application field with the values found
// on the documents.
type FieldComparison struct {
	FieldName        string   `json:"field_name"`
	ApplicationValue string   `json:"application_value"`
	DocumentValues   []string `json:"document_values"`
	Status           Status   `json:"status"`
	Details          string   `json:"details"`
}

// Inconsistency is a cross-validation finding.
type Inconsistency struct {
	Field    string   `json:"field"`
	Issue    string   `json:"issue"`
	Severity Severity `json:"severity"`
}

// CrossValidationResult is the outcome of comparing the application with
// the full document set.
type CrossValidationResult struct {
	FieldComparisons []FieldComparison `json:"field_comparisons"`
	Inconsistencies  []Inconsistency   `json:"inconsistencies"`
	Summary          string            `json:"summary"`
	OverallStatus    Outcome           `json:"overall_status"`
}

// Passed reports whether cross-validation passed.
func (r CrossValidationResult) Passed() bool {
	return r.OverallStatus == Passed
}

// UnmarshalJSON tolerates application and document values that a model
// emitted as numbers or a single string instead of an array.
func (c *FieldComparison) UnmarshalJSON(data []byte) error {
	var raw struct {
		FieldName        string          `json:"field_name"`
		ApplicationValue json.RawMessage `json:"application_value"`
		DocumentValues   json.RawMessage `json:"document_values"`
		Status           Status          `json:"status"`
		Details          string          `json:"details"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.FieldName = raw.FieldName
	c.ApplicationValue = scalarString(raw.ApplicationValue)
	c.Status = Status(strings.ToLower(string(raw.Status)))
	c.Details = raw.Details
	c.DocumentValues = stringList(raw.DocumentValues)
	return nil
}

func scalarString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func stringList(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return []string{}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []string{scalarString(raw)}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, scalarString(item))
	}
	return out
}

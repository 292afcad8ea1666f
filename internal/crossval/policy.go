package crossval

import (
	"strings"

	"github.com/JaimeStill/intake/internal/loan"
)

// Apply sets r.OverallStatus according to policy. A result with no field
// comparisons fails under every policy and gains a high severity
// inconsistency naming the application. Otherwise findings are every
// inconsistency plus every comparison that is not matched; a comparison
// takes the highest severity of the inconsistencies naming its field, or
// high when none do. The result fails when any finding ranks at or above
// the threshold. FailOnModel keeps the reported status, treating anything
// other than passed as failed.
func Apply(policy FailOn, r *loan.CrossValidationResult) {
	if len(r.FieldComparisons) == 0 {
		r.Inconsistencies = append(r.Inconsistencies, nothingCompared)
		if r.Summary == "" {
			r.Summary = "No overlapping fields between application and documents"
		}
		r.OverallStatus = loan.Failed
		return
	}

	if policy == FailOnModel {
		if r.OverallStatus != loan.Passed {
			r.OverallStatus = loan.Failed
		}
		return
	}

	threshold := loan.Severity(policy)
	failed := false

	for _, inc := range r.Inconsistencies {
		if inc.Severity.AtLeast(threshold) {
			failed = true
		}
	}

	for _, fc := range r.FieldComparisons {
		if fc.Status == loan.Matched {
			continue
		}
		if severityFor(fc.FieldName, r.Inconsistencies).AtLeast(threshold) {
			failed = true
		}
	}

	r.OverallStatus = loan.OutcomeOf(!failed)
}

var nothingCompared = loan.Inconsistency{
	Field:    "application",
	Issue:    "no application field could be compared with the documents",
	Severity: loan.High,
}

func severityFor(field string, incs []loan.Inconsistency) loan.Severity {
	var found loan.Severity
	for _, inc := range incs {
		if !strings.EqualFold(inc.Field, field) {
			continue
		}
		if found == "" || inc.Severity.Rank() > found.Rank() {
			found = inc.Severity
		}
	}
	if found == "" {
		return loan.High
	}
	return found
}

// Package decision combines per-document verdicts, cross-validation, and
// an age check into the final loan decision. Decide is pure; Aggregator
// binds it to a clock and a configured minimum age.
package decision

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/JaimeStill/intake/internal/loan"
)

// DefaultMinimumAge is the applicant age required when none is configured.
const DefaultMinimumAge = 18

var errDateParse = errors.New("date of birth could not be parsed")

// Input carries everything a decision depends on. AsOf fixes the date the
// applicant's age is computed against.
type Input struct {
	Application     loan.ApplicationData
	Documents       []loan.DocumentRecord
	Validations     []loan.ValidationRecord
	CrossValidation loan.CrossValidationResult
	Degraded        []string
	AsOf            time.Time
	MinimumAge      int
}

// Decide applies the three gates and returns the decision. The application
// passes only when every document is authentic, cross-validation passed,
// and a consistent date of birth puts the applicant at or above the
// minimum age.
func Decide(in Input) loan.FinalDecision {
	minAge := in.MinimumAge
	if minAge <= 0 {
		minAge = DefaultMinimumAge
	}

	auth := authenticityGate(in.Validations)
	cross := crossValidationGate(in.CrossValidation)
	age := ageGate(in.Documents, in.AsOf, minAge)

	status := loan.StatusRejected
	if auth.Status == loan.Passed && cross.Status == loan.Passed && age.Status == loan.Passed {
		status = loan.StatusPassed
	}

	summary := fmt.Sprintf(
		"Documents: %s, Cross-validation: %s, Age: %s",
		auth.Status, cross.Status, age.Status,
	)

	return loan.FinalDecision{
		ValidationDetails: loan.ValidationDetails{
			DocumentAuthenticity:     auth,
			CrossValidation:          cross,
			AgeVerification:          age,
			OverallValidationSummary: summary,
		},
		LoanApplicationStatus: status,
		Degraded:              degraded(in.Degraded),
	}
}

// An empty validation set passes vacuously.
func authenticityGate(validations []loan.ValidationRecord) loan.AuthenticityGate {
	valid := 0
	for _, v := range validations {
		if v.Valid {
			valid++
		}
	}

	return loan.AuthenticityGate{
		Status:     loan.OutcomeOf(valid == len(validations)),
		ValidCount: valid,
		TotalCount: len(validations),
		Details:    fmt.Sprintf("%d/%d documents validated as authentic", valid, len(validations)),
	}
}

func crossValidationGate(cv loan.CrossValidationResult) loan.CrossValidationGate {
	details := cv.Summary
	if details == "" {
		details = "No summary"
	}
	return loan.CrossValidationGate{
		Status:  loan.OutcomeOf(cv.Passed()),
		Details: details,
	}
}

func ageGate(docs []loan.DocumentRecord, asOf time.Time, minAge int) loan.AgeGate {
	gate := loan.AgeGate{
		Status:         loan.Failed,
		DOBConsistency: loan.DOBUnknown,
	}

	var dobs []string
	for _, doc := range docs {
		if dob, ok := doc.Fields.DOB(); ok && dob != "" {
			dobs = append(dobs, dob)
		}
	}

	if len(dobs) == 0 {
		gate.Details = "Could not verify age: no date of birth found"
		return gate
	}

	for _, dob := range dobs[1:] {
		if dob != dobs[0] {
			gate.DOBConsistency = loan.DOBInconsistent
			gate.Details = "Could not verify age: dates of birth differ across documents"
			return gate
		}
	}
	gate.DOBConsistency = loan.DOBConsistent

	age, err := Age(dobs[0], asOf)
	if err != nil {
		gate.Details = "Could not verify age: date of birth is unreadable"
		return gate
	}

	gate.ApplicantAge = &age
	gate.Status = loan.OutcomeOf(age >= minAge)
	gate.Details = fmt.Sprintf("Applicant age: %d", age)
	if age < minAge {
		gate.Details += fmt.Sprintf(" (minimum %d)", minAge)
	}
	return gate
}

// Age returns the applicant's age in whole years on asOf. A birthday is
// credited only once its month and day have been reached.
func Age(dob string, asOf time.Time) (int, error) {
	born, err := time.Parse(loan.DateLayout, dob)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errDateParse, dob)
	}

	y, m, d := asOf.Date()
	if born.After(time.Date(y, m, d, 0, 0, 0, 0, time.UTC)) {
		return 0, fmt.Errorf("%w: %q is in the future", errDateParse, dob)
	}

	age := y - born.Year()
	if m < born.Month() || (m == born.Month() && d < born.Day()) {
		age--
	}
	return age, nil
}

func degraded(markers []string) []string {
	if len(markers) == 0 {
		return nil
	}
	return slices.Clone(markers)
}

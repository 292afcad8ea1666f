package loan

// ApplicationStatus is the final verdict on a loan application.
type ApplicationStatus string

const (
	StatusPassed   ApplicationStatus = "passed"
	StatusRejected ApplicationStatus = "rejected"
)

// DOBConsistency describes agreement between dates of birth across documents.
type DOBConsistency string

const (
	DOBUnknown      DOBConsistency = "unknown"
	DOBConsistent   DOBConsistency = "consistent"
	DOBInconsistent DOBConsistency = "inconsistent"
)

// AuthenticityGate reports the document authenticity gate.
type AuthenticityGate struct {
	Status     Outcome `json:"status"`
	ValidCount int     `json:"valid_count"`
	TotalCount int     `json:"total_count"`
	Details    string  `json:"details"`
}

// CrossValidationGate reports the cross-validation gate.
type CrossValidationGate struct {
	Status  Outcome `json:"status"`
	Details string  `json:"details"`
}

// AgeGate reports the age verification gate. ApplicantAge is nil when no
// age could be computed.
type AgeGate struct {
	Status         Outcome        `json:"status"`
	ApplicantAge   *int           `json:"applicant_age"`
	DOBConsistency DOBConsistency `json:"dob_consistency"`
	Details        string         `json:"details"`
}

// ValidationDetails is the audit trail behind a FinalDecision.
type ValidationDetails struct {
	DocumentAuthenticity     AuthenticityGate    `json:"document_authenticity"`
	CrossValidation          CrossValidationGate `json:"cross_validation"`
	AgeVerification          AgeGate             `json:"age_verification"`
	OverallValidationSummary string              `json:"overall_validation_summary"`
}

// FinalDecision is the terminal artifact of one run. Degraded lists the
// errors the run recovered from.
type FinalDecision struct {
	ValidationDetails     ValidationDetails `json:"validation_details"`
	LoanApplicationStatus ApplicationStatus `json:"loan_application_status"`
	Degraded              []string          `json:"degraded,omitempty"`
}

// Approved reports whether the application passed every gate.
func (d *FinalDecision) Approved() bool {
	return d.LoanApplicationStatus == StatusPassed
}

package loan

import (
	"encoding/json"
	"strings"
)

// DocType is the closed set of document classifications.
type DocType string

const (
	DrivingLicense DocType = "DrivingLicense"
	Passport       DocType = "Passport"
	SSN            DocType = "SSN"
	UtilityBill    DocType = "UtilityBill"
	SalarySlip     DocType = "SalarySlip"
	ITR            DocType = "ITR"
	BankStatement  DocType = "BankStatement"
	Other          DocType = "Other"
)

var docTypes = []DocType{
	DrivingLicense,
	Passport,
	SSN,
	UtilityBill,
	SalarySlip,
	ITR,
	BankStatement,
	Other,
}

var docTypeLabels = map[string]DocType{
	"drivinglicense":       DrivingLicense,
	"driverslicense":       DrivingLicense,
	"driverlicense":        DrivingLicense,
	"passport":             Passport,
	"ssn":                  SSN,
	"ssncard":              SSN,
	"socialsecuritycard":   SSN,
	"socialsecuritynumber": SSN,
	"utilitybill":          UtilityBill,
	"salaryslip":           SalarySlip,
	"payslip":              SalarySlip,
	"paystub":              SalarySlip,
	"itr":                  ITR,
	"incometaxreturn":      ITR,
	"bankstatement":        BankStatement,
	"bankaccountstatement": BankStatement,
	"other":                Other,
	"others":               Other,
}

// DocTypes returns every known document type.
func DocTypes() []DocType {
	return docTypes
}

// ParseDocType maps a model-produced label onto the closed set. Matching
// ignores case, whitespace, punctuation, and parenthetical notes. Unknown
// labels map to Other.
func ParseDocType(label string) DocType {
	if i := strings.IndexByte(label, '('); i >= 0 {
		label = label[:i]
	}

	key := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return -1
		}
	}, label)

	if t, ok := docTypeLabels[key]; ok {
		return t
	}
	return Other
}

// UnmarshalJSON accepts any label and normalizes it through ParseDocType.
func (t *DocType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = ParseDocType(raw)
	return nil
}

var commonFields = []string{
	FieldName,
	FieldDOB,
	FieldAddress,
	"gender",
	"nationality",
	"issuing_authority",
	"issue_date",
	"expiry_date",
	"document_number",
}

var schemas = map[DocType][]string{
	DrivingLicense: {"driving_license_number", "license_class"},
	Passport:       {"passport_number", "place_of_birth"},
	SSN:            {"ssn"},
	UtilityBill:    {"account_number", "provider", "bill_date", "due_date"},
	SalarySlip:     {"employer", "employee_id", "pay_period", "gross_pay", "net_pay"},
	ITR:            {"tax_id", "pan", "assessment_year", "total_income"},
	BankStatement:  {"account_number", "bank_name", "statement_date", "closing_balance"},
}

// Schema returns the field names recognized for documents of type t.
// Every type shares the personal fields; Other carries only those.
func (t DocType) Schema() []string {
	specific := schemas[t]
	out := make([]string, 0, len(commonFields)+len(specific))
	out = append(out, commonFields...)
	return append(out, specific...)
}

package loan_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/JaimeStill/intake/internal/loan"
)

func TestParseDocType(t *testing.T) {
	tests := []struct {
		label string
		want  loan.DocType
	}{
		{"Driving License", loan.DrivingLicense},
		{"driver's license", loan.DrivingLicense},
		{"Passport", loan.Passport},
		{"SSN (Social Security Number card)", loan.SSN},
		{"Utility Bill", loan.UtilityBill},
		{"Salary Slip", loan.SalarySlip},
		{"ITR", loan.ITR},
		{"Income Tax Return", loan.ITR},
		{"Bank Account Statement", loan.BankStatement},
		{"BankStatement", loan.BankStatement},
		{"Others", loan.Other},
		{"Library Card", loan.Other},
		{"", loan.Other},
	}

	for _, tt := range tests {
		if got := loan.ParseDocType(tt.label); got != tt.want {
			t.Errorf("ParseDocType(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestDocTypeUnmarshal(t *testing.T) {
	var v struct {
		DocType loan.DocType `json:"doc_type"`
	}
	if err := json.Unmarshal([]byte(`{"doc_type":"Bank Account Statement"}`), &v); err != nil {
		t.Fatal(err)
	}
	if v.DocType != loan.BankStatement {
		t.Errorf("DocType = %q", v.DocType)
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1990-05-15", "1990-05-15", false},
		{"1990/05/15", "1990-05-15", false},
		{"19900515", "1990-05-15", false},
		{"15 May 1990", "1990-05-15", false},
		{"May 15, 1990", "1990-05-15", false},
		{"15-May-1990", "1990-05-15", false},
		{"1990-05-15T00:00:00Z", "1990-05-15", false},
		{" 1990-05-15 ", "1990-05-15", false},
		{"05/06/1990", "", true},
		{"15/05/1990", "", true},
		{"5-6-90", "", true},
		{"sometime in 1990", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := loan.NormalizeDate(tt.in)
		if tt.wantErr {
			if !errors.Is(err, loan.ErrInvalidDate) {
				t.Errorf("NormalizeDate(%q) error = %v, want ErrInvalidDate", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeDate(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCanonicalField(t *testing.T) {
	tests := map[string]string{
		"Date of Birth":   "dob",
		"date_of_birth":   "dob",
		"birth_date":      "dob",
		"Passport-Number": "passport_number",
		"Full Name":       "name",
		"expiry_date":     "expiry_date",
		"dateOfBirth":     "dob",
		"passportNumber":  "passport_number",
		"SSN":             "ssn",
		"firstName":       "first_name",
	}
	for in, want := range tests {
		if got := loan.CanonicalField(in); got != want {
			t.Errorf("CanonicalField(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFieldsAccessors(t *testing.T) {
	f := loan.Fields{
		"name":            "Jane Doe",
		"dob":             "1990-05-15",
		"passport_number": "X1234567",
		"eye_color":       "brown",
	}

	if v, ok := f.Name(); !ok || v != "Jane Doe" {
		t.Errorf("Name() = %q, %v", v, ok)
	}
	if _, ok := f.Address(); ok {
		t.Error("Address() should be absent")
	}

	ids := f.Identifiers()
	if len(ids) != 1 || ids["passport_number"] != "X1234567" {
		t.Errorf("Identifiers() = %v", ids)
	}

	extra := f.Unrecognized(loan.Passport)
	if len(extra) != 1 || extra["eye_color"] != "brown" {
		t.Errorf("Unrecognized(Passport) = %v", extra)
	}

	if extra := f.Unrecognized(loan.Other); len(extra) != 2 {
		t.Errorf("Unrecognized(Other) = %v, want passport_number and eye_color", extra)
	}
}

func TestFinalDecisionApproved(t *testing.T) {
	passed := loan.FinalDecision{LoanApplicationStatus: loan.StatusPassed}
	rejected := loan.FinalDecision{LoanApplicationStatus: loan.StatusRejected}

	if !passed.Approved() {
		t.Error("passed decision should be approved")
	}
	if rejected.Approved() {
		t.Error("rejected decision should not be approved")
	}
}

func TestSeverity(t *testing.T) {
	tests := []struct {
		sev       loan.Severity
		threshold loan.Severity
		want      bool
	}{
		{loan.High, loan.High, true},
		{loan.Medium, loan.High, false},
		{loan.Medium, loan.Medium, true},
		{loan.Low, loan.Medium, false},
		{loan.Low, loan.Low, true},
		{"critical", loan.High, true},
		{"", loan.High, true},
	}

	for _, tt := range tests {
		if got := tt.sev.AtLeast(tt.threshold); got != tt.want {
			t.Errorf("%q.AtLeast(%q) = %v, want %v", tt.sev, tt.threshold, got, tt.want)
		}
	}
}

func TestCrossValidationResultUnmarshal(t *testing.T) {
	data := `{
		"field_comparisons": [
			{"field_name": "dob", "application_value": "1990-05-15", "document_values": "1990-05-15", "status": "Matched", "details": ""},
			{"field_name": "zip", "application_value": 62704, "document_values": [62704, "62705"], "status": "mismatched"}
		],
		"inconsistencies": [{"field": "zip", "issue": "differs", "severity": "Medium"}],
		"summary": "one mismatch",
		"overall_status": "Failed"
	}`

	var r loan.CrossValidationResult
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		t.Fatal(err)
	}

	if r.Passed() || r.OverallStatus != loan.Failed {
		t.Errorf("OverallStatus = %q", r.OverallStatus)
	}
	if r.FieldComparisons[0].Status != loan.Matched || len(r.FieldComparisons[0].DocumentValues) != 1 {
		t.Errorf("first comparison = %+v", r.FieldComparisons[0])
	}

	zip := r.FieldComparisons[1]
	if zip.ApplicationValue != "62704" || len(zip.DocumentValues) != 2 || zip.DocumentValues[1] != "62705" {
		t.Errorf("zip comparison = %+v", zip)
	}
	if r.Inconsistencies[0].Severity != loan.Medium {
		t.Errorf("severity = %q", r.Inconsistencies[0].Severity)
	}
}

func TestClampScore(t *testing.T) {
	tests := map[float64]int{-5: 0, 0: 0, 49.6: 50, 100: 100, 140: 100}
	for in, want := range tests {
		if got := loan.ClampScore(in); got != want {
			t.Errorf("ClampScore(%v) = %d, want %d", in, got, want)
		}
	}
}

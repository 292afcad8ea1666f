package decision_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/JaimeStill/intake/internal/decision"
	"github.com/JaimeStill/intake/internal/loan"
)

func date(s string) time.Time {
	t, err := time.Parse(loan.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func doc(filename, dob string) loan.DocumentRecord {
	fields := loan.Fields{"name": "Jane Doe"}
	if dob != "" {
		fields["dob"] = dob
	}
	return loan.DocumentRecord{Filename: filename, DocType: loan.Passport, Fields: fields}
}

func valid(filename string) loan.ValidationRecord {
	return loan.ValidationRecord{Filename: filename, Valid: true, LayoutScore: 95, FieldScore: 92, ForgerySigns: []string{}}
}

func passing() decision.Input {
	return decision.Input{
		Application: loan.ApplicationData{"firstName": "Jane", "lastName": "Doe"},
		Documents:   []loan.DocumentRecord{doc("passport.png", "2000-06-15"), doc("license.png", "2000-06-15")},
		Validations: []loan.ValidationRecord{valid("passport.png"), valid("license.png")},
		CrossValidation: loan.CrossValidationResult{
			Summary:       "All fields consistent",
			OverallStatus: loan.Passed,
		},
		AsOf: date("2024-06-16"),
	}
}

func TestDecideAllGatesPass(t *testing.T) {
	d := decision.Decide(passing())

	if d.LoanApplicationStatus != loan.StatusPassed {
		t.Fatalf("status = %q, want passed", d.LoanApplicationStatus)
	}

	details := d.ValidationDetails
	if details.DocumentAuthenticity.Details != "2/2 documents validated as authentic" {
		t.Errorf("authenticity details = %q", details.DocumentAuthenticity.Details)
	}
	if details.CrossValidation.Details != "All fields consistent" {
		t.Errorf("cross-validation details = %q", details.CrossValidation.Details)
	}
	if details.AgeVerification.ApplicantAge == nil || *details.AgeVerification.ApplicantAge != 24 {
		t.Errorf("applicant age = %v, want 24", details.AgeVerification.ApplicantAge)
	}
	if details.OverallValidationSummary != "Documents: passed, Cross-validation: passed, Age: passed" {
		t.Errorf("summary = %q", details.OverallValidationSummary)
	}
	if d.Degraded != nil {
		t.Errorf("Degraded = %v, want nil", d.Degraded)
	}
}

func TestDecideInvalidDocumentRejects(t *testing.T) {
	in := passing()
	in.Validations[1] = loan.ValidationRecord{
		Filename:     "license.png",
		Valid:        false,
		Reason:       "font mismatch in name field",
		ForgerySigns: []string{"font mismatch"},
	}

	d := decision.Decide(in)

	if d.LoanApplicationStatus != loan.StatusRejected {
		t.Errorf("status = %q, want rejected", d.LoanApplicationStatus)
	}
	auth := d.ValidationDetails.DocumentAuthenticity
	if auth.Status != loan.Failed || auth.ValidCount != 1 || auth.TotalCount != 2 {
		t.Errorf("authenticity gate = %+v", auth)
	}
	if d.ValidationDetails.AgeVerification.Status != loan.Passed {
		t.Error("age gate should still pass independently")
	}
}

func TestDecideCrossValidationFailureRejects(t *testing.T) {
	tests := []struct {
		name   string
		status loan.Outcome
	}{
		{"failed", loan.Failed},
		{"missing status", ""},
		{"unexpected value", "partial"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := passing()
			in.CrossValidation = loan.CrossValidationResult{OverallStatus: tt.status}

			d := decision.Decide(in)

			if d.LoanApplicationStatus != loan.StatusRejected {
				t.Errorf("status = %q, want rejected", d.LoanApplicationStatus)
			}
			if d.ValidationDetails.CrossValidation.Details != "No summary" {
				t.Errorf("details = %q, want No summary", d.ValidationDetails.CrossValidation.Details)
			}
		})
	}
}

func TestAgeAroundBirthday(t *testing.T) {
	tests := []struct {
		asOf string
		want int
	}{
		{"2024-06-14", 23},
		{"2024-06-15", 24},
		{"2024-06-16", 24},
		{"2024-01-01", 23},
		{"2024-12-31", 24},
	}

	for _, tt := range tests {
		got, err := decision.Age("2000-06-15", date(tt.asOf))
		if err != nil {
			t.Fatalf("Age error: %v", err)
		}
		if got != tt.want {
			t.Errorf("Age(2000-06-15, %s) = %d, want %d", tt.asOf, got, tt.want)
		}
	}
}

func TestAgeGateBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		dob     string
		asOf    string
		minAge  int
		want    loan.Outcome
		wantAge int
	}{
		{"day before birthday still passes at 23", "2000-06-15", "2024-06-14", 0, loan.Passed, 23},
		{"exactly eighteen is inclusive", "2006-06-15", "2024-06-15", 0, loan.Passed, 18},
		{"one day short of eighteen", "2006-06-16", "2024-06-15", 0, loan.Failed, 17},
		{"configured minimum", "2000-06-15", "2024-06-16", 25, loan.Failed, 24},
		{"leap day birthday before March", "2004-02-29", "2022-02-28", 0, loan.Failed, 17},
		{"leap day birthday in March", "2004-02-29", "2022-03-01", 0, loan.Passed, 18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := passing()
			in.Documents = []loan.DocumentRecord{doc("passport.png", tt.dob)}
			in.Validations = []loan.ValidationRecord{valid("passport.png")}
			in.AsOf = date(tt.asOf)
			in.MinimumAge = tt.minAge

			age := decision.Decide(in).ValidationDetails.AgeVerification

			if age.Status != tt.want {
				t.Errorf("status = %q, want %q", age.Status, tt.want)
			}
			if age.ApplicantAge == nil || *age.ApplicantAge != tt.wantAge {
				t.Errorf("applicant age = %v, want %d", age.ApplicantAge, tt.wantAge)
			}
			if age.DOBConsistency != loan.DOBConsistent {
				t.Errorf("consistency = %q", age.DOBConsistency)
			}
		})
	}
}

func TestAgeGateWithoutUsableDOB(t *testing.T) {
	tests := []struct {
		name        string
		docs        []loan.DocumentRecord
		consistency loan.DOBConsistency
	}{
		{
			"inconsistent dates of birth",
			[]loan.DocumentRecord{doc("a.png", "1990-01-01"), doc("b.png", "1990-01-02")},
			loan.DOBInconsistent,
		},
		{
			"single document missing dob",
			[]loan.DocumentRecord{doc("bill.png", "")},
			loan.DOBUnknown,
		},
		{
			"unparseable dob",
			[]loan.DocumentRecord{doc("a.png", "01/02/1990")},
			loan.DOBConsistent,
		},
		{
			"future dob",
			[]loan.DocumentRecord{doc("a.png", "2030-01-01")},
			loan.DOBConsistent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := passing()
			in.Documents = tt.docs
			in.Validations = make([]loan.ValidationRecord, len(tt.docs))
			for i, d := range tt.docs {
				in.Validations[i] = valid(d.Filename)
			}

			d := decision.Decide(in)
			age := d.ValidationDetails.AgeVerification

			if age.Status != loan.Failed {
				t.Errorf("age status = %q, want failed", age.Status)
			}
			if age.ApplicantAge != nil {
				t.Errorf("applicant age = %d, want absent", *age.ApplicantAge)
			}
			if age.DOBConsistency != tt.consistency {
				t.Errorf("consistency = %q, want %q", age.DOBConsistency, tt.consistency)
			}
			if d.LoanApplicationStatus != loan.StatusRejected {
				t.Errorf("status = %q, want rejected", d.LoanApplicationStatus)
			}
		})
	}
}

func TestMissingDOBExcludedFromConsistency(t *testing.T) {
	in := passing()
	in.Documents = []loan.DocumentRecord{doc("passport.png", "2000-06-15"), doc("bill.png", "")}

	age := decision.Decide(in).ValidationDetails.AgeVerification

	if age.DOBConsistency != loan.DOBConsistent || age.Status != loan.Passed {
		t.Errorf("age gate = %+v, want consistent and passed", age)
	}
}

func TestDecideEmptyDocumentSet(t *testing.T) {
	in := passing()
	in.Documents = nil
	in.Validations = nil

	d := decision.Decide(in)
	details := d.ValidationDetails

	if details.DocumentAuthenticity.Status != loan.Passed {
		t.Error("authenticity gate should pass vacuously")
	}
	if details.DocumentAuthenticity.Details != "0/0 documents validated as authentic" {
		t.Errorf("details = %q", details.DocumentAuthenticity.Details)
	}
	if details.AgeVerification.DOBConsistency != loan.DOBUnknown {
		t.Errorf("consistency = %q, want unknown", details.AgeVerification.DOBConsistency)
	}
	if d.LoanApplicationStatus != loan.StatusRejected {
		t.Errorf("status = %q, want rejected", d.LoanApplicationStatus)
	}
}

func TestDecideIsPure(t *testing.T) {
	in := passing()
	in.Degraded = []string{"application: not found"}

	first, err := json.Marshal(decision.Decide(in))
	if err != nil {
		t.Fatal(err)
	}
	second, err := json.Marshal(decision.Decide(in))
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("decisions differ:\n%s\n%s", first, second)
	}
	if in.Documents[0].Fields["dob"] != "2000-06-15" || len(in.Degraded) != 1 {
		t.Error("inputs were mutated")
	}
}

func TestDegradedMarkersCopied(t *testing.T) {
	in := passing()
	in.Degraded = []string{"application: not found"}

	d := decision.Decide(in)
	in.Degraded[0] = "changed"

	if len(d.Degraded) != 1 || d.Degraded[0] != "application: not found" {
		t.Errorf("Degraded = %v", d.Degraded)
	}
}

func TestAggregatorUsesClock(t *testing.T) {
	now := func() time.Time { return date("2024-06-14") }
	agg := decision.NewAggregator(24, now)

	in := passing()
	d := agg.Decide(in.Application, in.Documents, in.Validations, in.CrossValidation, nil)

	age := d.ValidationDetails.AgeVerification
	if age.ApplicantAge == nil || *age.ApplicantAge != 23 {
		t.Fatalf("applicant age = %v, want 23", age.ApplicantAge)
	}
	if age.Status != loan.Failed {
		t.Errorf("status = %q, want failed under minimum 24", age.Status)
	}
	if age.Details != "Applicant age: 23 (minimum 24)" {
		t.Errorf("details = %q", age.Details)
	}
}

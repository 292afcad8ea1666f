package prompts

import (
	"strings"

	"github.com/JaimeStill/intake/internal/loan"
)

var classifySpec = `Respond with a JSON object matching this exact structure:

{
  "doc_type": "<document type>"
}

Field constraints:
- doc_type: One of ` + docTypeList() + `, written exactly as listed.

Behavioral constraints:
- Always respond with valid JSON and nothing else`

func docTypeList() string {
	types := loan.DocTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

const extractSpec = `Respond with a JSON object mapping snake_case field names to string values, for example:

{
  "name": "John Doe",
  "address": "123 Main Street, Springfield, IL, USA",
  "dob": "1990-05-15",
  "gender": "Male",
  "passport_number": "X1234567",
  "nationality": "USA",
  "issuing_authority": "US Department of State",
  "issue_date": "2015-04-10",
  "expiry_date": "2025-04-10"
}

Field constraints:
- Write every date as YYYY-MM-DD.
- Use "dob" for the date of birth.
- Omit any field that is not printed on the document. Never emit null or
  empty strings for missing fields.

Behavioral constraints:
- Always respond with valid JSON and nothing else`

const authenticateSpec = `Respond with a JSON object matching this exact structure:

{
  "valid": true,
  "reason": "<explanation>",
  "layout_score": 0,
  "field_score": 0,
  "forgery_signs": ["<indicator>"]
}

Field constraints:
- valid: true when the document appears genuine, false otherwise.
- reason: Brief explanation of the verdict. Required when valid is false.
- layout_score: Integer 0-100 for layout consistency.
- field_score: Integer 0-100 for field consistency.
- forgery_signs: Specific forgery indicators observed. Empty array when none.

Behavioral constraints:
- Always respond with valid JSON and nothing else`

const crossValidateSpec = `Respond with a JSON object matching this exact structure:

{
  "cross_validation_results": {
    "field_comparisons": [
      {
        "field_name": "<field>",
        "application_value": "<value>",
        "document_values": ["<value>"],
        "status": "matched",
        "details": "<explanation>"
      }
    ],
    "inconsistencies": [
      {
        "field": "<field>",
        "issue": "<description>",
        "severity": "high"
      }
    ],
    "summary": "<overall summary>",
    "overall_status": "passed"
  }
}

Field constraints:
- status: "matched" or "mismatched".
- severity: "high", "medium", or "low".
- overall_status: "passed" or "failed".

Behavioral constraints:
- Always respond with valid JSON and nothing else`

var specs = map[Stage]string{
	StageClassify:      classifySpec,
	StageExtract:       extractSpec,
	StageAuthenticate:  authenticateSpec,
	StageCrossValidate: crossValidateSpec,
}

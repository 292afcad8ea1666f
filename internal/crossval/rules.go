package crossval

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/JaimeStill/intake/internal/loan"
)

type rule struct {
	field     string
	severity  loan.Severity
	value     func(loan.Fields) (string, bool)
	normalize func(string) string
}

var rules = []rule{
	{loan.FieldName, loan.High, loan.Fields.Name, normalizeName},
	{loan.FieldDOB, loan.High, loan.Fields.DOB, normalizeDate},
	{loan.FieldAddress, loan.Medium, loan.Fields.Address, normalizeAddress},
}

func init() {
	for _, id := range loan.IdentifierFields {
		value := func(f loan.Fields) (string, bool) {
			v, ok := f.Identifiers()[id]
			return v, ok
		}
		rules = append(rules, rule{id, loan.High, value, normalizeID})
	}
}

// Compare cross-validates deterministically. Each rule field present on
// the application and on at least one document yields one comparison; a
// comparison is mismatched when any document value differs after
// normalization. Application dates are read with dateLayout when it is set,
// so numeric forms such as 05/15/1990 can be compared. The result's status
// is left for Apply, which fails a result with no comparisons.
func Compare(app loan.ApplicationData, docs []loan.DocumentRecord, dateLayout string) loan.CrossValidationResult {
	fields := applicationFields(app, dateLayout)

	result := loan.CrossValidationResult{
		FieldComparisons: []loan.FieldComparison{},
		Inconsistencies:  []loan.Inconsistency{},
	}

	for _, r := range rules {
		appValue, ok := fields[r.field]
		if !ok {
			continue
		}

		values, sources := documentValues(docs, r.value)
		if len(values) == 0 {
			continue
		}

		fc, inc := r.compare(appValue, values, sources)
		result.FieldComparisons = append(result.FieldComparisons, fc)
		if inc != nil {
			result.Inconsistencies = append(result.Inconsistencies, *inc)
		}
	}

	mismatched := len(result.Inconsistencies)
	switch {
	case len(result.FieldComparisons) == 0:
		result.Summary = "No overlapping fields between application and documents"
	case mismatched == 0:
		result.Summary = fmt.Sprintf("All %d compared fields match", len(result.FieldComparisons))
	default:
		result.Summary = fmt.Sprintf(
			"%d of %d compared fields mismatched",
			mismatched, len(result.FieldComparisons),
		)
	}

	return result
}

func (r rule) compare(appValue string, values []string, sources map[string][]string) (loan.FieldComparison, *loan.Inconsistency) {
	want := r.normalize(appValue)

	var differing []string
	for _, v := range values {
		if r.normalize(v) != want {
			differing = append(differing, v)
		}
	}

	fc := loan.FieldComparison{
		FieldName:        r.field,
		ApplicationValue: appValue,
		DocumentValues:   values,
		Status:           loan.Matched,
		Details:          fmt.Sprintf("matches %d document value(s)", len(values)),
	}

	if len(differing) == 0 {
		return fc, nil
	}

	var files []string
	for _, v := range differing {
		files = append(files, sources[v]...)
	}

	fc.Status = loan.Mismatched
	fc.Details = fmt.Sprintf("differs on %s", strings.Join(files, ", "))

	return fc, &loan.Inconsistency{
		Field:    r.field,
		Issue:    fmt.Sprintf("application value %q differs from document value(s) %q", appValue, differing),
		Severity: r.severity,
	}
}

// documentValues returns the distinct values read by value in document order
// and the filenames each value came from.
func documentValues(docs []loan.DocumentRecord, value func(loan.Fields) (string, bool)) ([]string, map[string][]string) {
	var values []string
	sources := make(map[string][]string)

	for _, d := range docs {
		v, ok := value(d.Fields)
		if !ok || v == "" {
			continue
		}
		if _, seen := sources[v]; !seen {
			values = append(values, v)
		}
		sources[v] = append(sources[v], d.Filename)
	}
	return values, sources
}

// applicationFields flattens app into canonical field names. A name split
// across first, middle, and last name fields is joined, a structured
// address is joined in street-to-country order, and dates matching
// dateLayout are rewritten to the canonical layout.
func applicationFields(app loan.ApplicationData, dateLayout string) map[string]string {
	fields := make(map[string]string)
	var address map[string]any

	for _, key := range slices.Sorted(maps.Keys(app)) {
		name := loan.CanonicalField(key)
		switch v := app[key].(type) {
		case map[string]any:
			if name == loan.FieldAddress {
				address = v
			}
		default:
			if s, ok := scalar(v); ok {
				if _, exists := fields[name]; !exists || key == name {
					fields[name] = s
				}
			}
		}
	}

	if _, ok := fields[loan.FieldName]; !ok {
		if full := joinPresent(fields, " ", "first_name", "middle_name", "last_name"); full != "" {
			fields[loan.FieldName] = full
		}
	}

	if _, ok := fields[loan.FieldAddress]; !ok {
		parts := make(map[string]string)
		for k, v := range address {
			if s, ok := scalar(v); ok {
				parts[loan.CanonicalField(k)] = s
			}
		}
		if len(parts) == 0 {
			parts = fields
		}
		if joined := joinPresent(parts, ", ", addressParts...); joined != "" {
			fields[loan.FieldAddress] = joined
		}
	}

	if dateLayout != "" {
		for name, v := range fields {
			if !loan.IsDateField(name) {
				continue
			}
			if t, err := time.Parse(dateLayout, v); err == nil {
				fields[name] = t.Format(loan.DateLayout)
			}
		}
	}

	return fields
}

var addressParts = []string{"street", "line1", "line2", "city", "state", "zip", "zip_code", "postal_code", "country"}

func joinPresent(fields map[string]string, sep string, keys ...string) string {
	var parts []string
	for _, k := range keys {
		if v := fields[k]; v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}

func scalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}

func normalizeName(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '.' || r == ',' {
			return ' '
		}
		return unicode.ToLower(r)
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

func normalizeDate(s string) string {
	if d, err := loan.NormalizeDate(s); err == nil {
		return d
	}
	return strings.TrimSpace(s)
}

func normalizeID(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToUpper(r)
		}
		return -1
	}, s)
}

var addressAbbreviations = map[string]string{
	"street":    "st",
	"avenue":    "ave",
	"road":      "rd",
	"boulevard": "blvd",
	"drive":     "dr",
	"lane":      "ln",
	"court":     "ct",
	"place":     "pl",
	"highway":   "hwy",
	"apartment": "apt",
	"suite":     "ste",
	"north":     "n",
	"south":     "s",
	"east":      "e",
	"west":      "w",
}

func normalizeAddress(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)

	tokens := strings.Fields(s)
	for i, t := range tokens {
		if abbr, ok := addressAbbreviations[t]; ok {
			tokens[i] = abbr
		}
	}
	return strings.Join(tokens, " ")
}

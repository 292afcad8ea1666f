package loan

import (
	"maps"
	"slices"
	"strings"
	"unicode"
)

// Canonical field names shared across document types.
const (
	FieldName    = "name"
	FieldDOB     = "dob"
	FieldAddress = "address"
)

// IdentifierFields lists the identification number fields compared during
// cross-validation.
var IdentifierFields = []string{
	"ssn",
	"passport_number",
	"driving_license_number",
	"tax_id",
	"pan",
}

var fieldAliases = map[string]string{
	"date_of_birth":          FieldDOB,
	"birth_date":             FieldDOB,
	"dateofbirth":            FieldDOB,
	"full_name":              FieldName,
	"fullname":               FieldName,
	"license_number":         "driving_license_number",
	"drivers_license_number": "driving_license_number",
	"driver_license_number":  "driving_license_number",
	"social_security_number": "ssn",
	"tax_id_number":          "tax_id",
	"tin":                    "tax_id",
}

// Fields is the sparse set of values extracted from a document. A missing
// key means the value was not found on the document.
type Fields map[string]string

// CanonicalField converts key to snake_case and resolves known aliases, so
// "dateOfBirth", "Date of Birth", and "birth_date" all become "dob".
func CanonicalField(key string) string {
	key = snakeCase(strings.TrimSpace(key))
	if alias, ok := fieldAliases[key]; ok {
		return alias
	}
	return key
}

// IsDateField reports whether the canonical field name holds a date.
func IsDateField(key string) bool {
	return key == FieldDOB || strings.HasSuffix(key, "_date")
}

// Get returns the value for key and whether it was present.
func (f Fields) Get(key string) (string, bool) {
	v, ok := f[key]
	return v, ok
}

// Name returns the extracted name, if any.
func (f Fields) Name() (string, bool) { return f.Get(FieldName) }

// DOB returns the normalized date of birth, if any.
func (f Fields) DOB() (string, bool) { return f.Get(FieldDOB) }

// Address returns the extracted address, if any.
func (f Fields) Address() (string, bool) { return f.Get(FieldAddress) }

// Identifiers returns the identification numbers present in f keyed by
// field name.
func (f Fields) Identifiers() map[string]string {
	ids := make(map[string]string)
	for _, key := range IdentifierFields {
		if v, ok := f[key]; ok {
			ids[key] = v
		}
	}
	return ids
}

// Unrecognized returns the fields not in t's schema.
func (f Fields) Unrecognized(t DocType) Fields {
	known := t.Schema()
	out := make(Fields)
	for k, v := range f {
		if !slices.Contains(known, k) {
			out[k] = v
		}
	}
	return out
}

// Keys returns the field names in sorted order.
func (f Fields) Keys() []string {
	return slices.Sorted(maps.Keys(f))
}

func snakeCase(s string) string {
	var sb strings.Builder
	var prev rune
	for _, r := range s {
		if r == ' ' || r == '-' || r == '.' {
			r = '_'
		}
		if r == '_' && prev == '_' {
			continue
		}
		if unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
			sb.WriteByte('_')
		}
		sb.WriteRune(unicode.ToLower(r))
		prev = r
	}
	return strings.Trim(sb.String(), "_")
}

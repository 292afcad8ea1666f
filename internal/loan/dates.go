package loan

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the canonical representation of every date-valued field.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	"2006/01/02",
	"2006.01.02",
	"20060102",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"02 Jan 2006",
}

// Numeric day and month in either order, e.g. 03/04/1990 or 3-4-90.
var ambiguousDate = regexp.MustCompile(`^\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4}$`)

// NormalizeDate converts s to YYYY-MM-DD. Numeric layouts where day and
// month cannot be told apart are rejected, as is anything unparseable.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || ambiguousDate.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

package decisions

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/JaimeStill/intake/pkg/query"
	"github.com/JaimeStill/intake/pkg/repository"
)

var projection = query.NewProjection("decisions", "d").
	Project("id", "id").
	Project("application_key", "application_key").
	Project("document_keys", "document_keys").
	Project("status", "status").
	Project("degraded", "degraded").
	Project("result", "result").
	Project("created_at", "created_at")

var defaultSort = query.SortField{Field: "created_at", Descending: true}

// Filters contains optional criteria for listing decisions. Nil fields are
// ignored. Sort names projected fields; newest first when empty.
type Filters struct {
	Status         *string           `json:"status,omitempty"`
	ApplicationKey *string           `json:"application_key,omitempty"`
	Search         *string           `json:"search,omitempty"`
	Sort           []query.SortField `json:"-"`
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}
	if k := values.Get("application_key"); k != "" {
		f.ApplicationKey = &k
	}
	if q := values.Get("search"); q != "" {
		f.Search = &q
	}
	f.Sort = query.ParseSortFields(values.Get("sort"))

	return f
}

// Apply adds the filter conditions and sort order to b.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("status", f.Status).
		WhereEquals("application_key", f.ApplicationKey).
		WhereContains("application_key", f.Search).
		OrderBy(f.Sort)
}

func scanDecision(s repository.Scanner) (Decision, error) {
	var (
		d      Decision
		keys   []byte
		result []byte
	)

	if err := s.Scan(
		&d.ID,
		&d.ApplicationKey,
		&keys,
		&d.Status,
		&d.Degraded,
		&result,
		&d.CreatedAt,
	); err != nil {
		return d, err
	}

	if err := json.Unmarshal(keys, &d.DocumentKeys); err != nil {
		return d, fmt.Errorf("decode document_keys: %w", err)
	}
	if err := json.Unmarshal(result, &d.Result); err != nil {
		return d, fmt.Errorf("decode result: %w", err)
	}
	return d, nil
}

package query

import (
	"fmt"
	"reflect"
	"strings"
)

// SortField is one ORDER BY term, named by projected field.
type SortField struct {
	Field      string
	Descending bool
}

// ParseSortFields parses a comma-separated sort string such as
// "status,-created_at". A leading "-" sorts descending.
func ParseSortFields(s string) []SortField {
	var fields []SortField
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if after, ok := strings.CutPrefix(part, "-"); ok {
			fields = append(fields, SortField{Field: after, Descending: true})
			continue
		}
		fields = append(fields, SortField{Field: part})
	}
	return fields
}

type condition struct {
	column string
	op     string
	arg    any
}

// Builder accumulates conditions and ordering for a Projection and renders
// them with sequentially numbered placeholders.
type Builder struct {
	projection  *Projection
	conditions  []condition
	sort        []SortField
	defaultSort []SortField
}

// NewBuilder creates a Builder for p. defaultSort applies when no sort
// fields are set.
func NewBuilder(p *Projection, defaultSort ...SortField) *Builder {
	return &Builder{
		projection:  p,
		defaultSort: defaultSort,
	}
}

// WhereEquals adds an equality condition. Nil values and unprojected fields
// are ignored.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	return b.where(field, "=", value)
}

// WhereContains adds a case-insensitive substring match. Nil and empty
// values are ignored.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	if value == nil || *value == "" {
		return b
	}
	return b.where(field, "ILIKE", "%"+*value+"%")
}

// OrderBy replaces the sort order. Unprojected fields are dropped when the
// query is rendered; the default order applies if none remain.
func (b *Builder) OrderBy(fields []SortField) *Builder {
	b.sort = fields
	return b
}

// BuildCount returns a COUNT(*) query over the current conditions.
func (b *Builder) BuildCount() (string, []any) {
	where, args := b.buildWhere()
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", b.projection.From(), where), args
}

// BuildPage returns an ordered SELECT over the current conditions limited to
// one page. page is 1-based.
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	where, args := b.buildWhere()
	if page < 1 {
		page = 1
	}

	sql := fmt.Sprintf(
		"SELECT %s FROM %s%s%s LIMIT $%d OFFSET $%d",
		b.projection.Columns(),
		b.projection.From(),
		where,
		b.buildOrderBy(),
		len(args)+1,
		len(args)+2,
	)
	return sql, append(args, pageSize, (page-1)*pageSize)
}

// BuildSingle returns a SELECT for the row whose field equals value.
func (b *Builder) BuildSingle(field string, value any) (string, []any) {
	col, ok := b.projection.Column(field)
	if !ok {
		col = field
	}
	sql := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1",
		b.projection.Columns(),
		b.projection.From(),
		col,
	)
	return sql, []any{value}
}

func (b *Builder) where(field, op string, value any) *Builder {
	if isNil(value) {
		return b
	}
	col, ok := b.projection.Column(field)
	if !ok {
		return b
	}
	if v := reflect.ValueOf(value); v.Kind() == reflect.Pointer {
		value = v.Elem().Interface()
	}
	b.conditions = append(b.conditions, condition{column: col, op: op, arg: value})
	return b
}

func (b *Builder) buildWhere() (string, []any) {
	if len(b.conditions) == 0 {
		return "", nil
	}

	clauses := make([]string, len(b.conditions))
	args := make([]any, len(b.conditions))
	for i, c := range b.conditions {
		clauses[i] = fmt.Sprintf("%s %s $%d", c.column, c.op, i+1)
		args[i] = c.arg
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (b *Builder) buildOrderBy() string {
	parts := b.orderTerms(b.sort)
	if len(parts) == 0 {
		parts = b.orderTerms(b.defaultSort)
	}
	if len(parts) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func (b *Builder) orderTerms(fields []SortField) []string {
	var parts []string
	for _, f := range fields {
		col, ok := b.projection.Column(f.Field)
		if !ok {
			continue
		}
		dir := "ASC"
		if f.Descending {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
	}
	return parts
}

func isNil(value any) bool {
	if value == nil {
		return true
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}
	return false
}

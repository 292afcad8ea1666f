// Package query builds parameterized SQL for filtered, sorted, and paginated
// reads over a single projected table.
package query

import "strings"

// Projection maps public field names to the columns of one aliased table.
// Columns are selected in the order they are projected.
type Projection struct {
	table   string
	alias   string
	columns map[string]string
	names   []string
}

// NewProjection creates a Projection over table, qualified by alias.
func NewProjection(table, alias string) *Projection {
	return &Projection{
		table:   table,
		alias:   alias,
		columns: make(map[string]string),
	}
}

// Project maps field to column.
func (p *Projection) Project(column, field string) *Projection {
	p.columns[field] = column
	p.names = append(p.names, column)
	return p
}

// From returns the table reference with its alias.
func (p *Projection) From() string {
	return p.table + " " + p.alias
}

// Table returns the unqualified table name.
func (p *Projection) Table() string {
	return p.table
}

// Column returns the qualified column for field and whether field is
// projected.
func (p *Projection) Column(field string) (string, bool) {
	col, ok := p.columns[field]
	if !ok {
		return "", false
	}
	return p.alias + "." + col, true
}

// Columns returns the qualified select list.
func (p *Projection) Columns() string {
	qualified := make([]string, len(p.names))
	for i, name := range p.names {
		qualified[i] = p.alias + "." + name
	}
	return strings.Join(qualified, ", ")
}

// Names returns the unqualified select list, for use in RETURNING clauses.
func (p *Projection) Names() string {
	return strings.Join(p.names, ", ")
}

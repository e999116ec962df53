package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps view field names to aliased SQL columns for one table.
// It preserves projection order so generated column lists are deterministic.
type ProjectionMap struct {
	schema string
	table  string
	alias  string
	fields []string
	byName map[string]string
}

// NewProjectionMap creates a ProjectionMap for the given schema, table, and alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema: schema,
		table:  table,
		alias:  alias,
		byName: make(map[string]string),
	}
}

// Project registers a column under a view field name and returns the map for chaining.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	p.fields = append(p.fields, field)
	p.byName[field] = fmt.Sprintf("%s.%s", p.alias, column)
	return p
}

// Alias returns the table alias.
func (p *ProjectionMap) Alias() string {
	return p.alias
}

// Table returns the schema-qualified table with its alias.
func (p *ProjectionMap) Table() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// Column returns the aliased column for a view field.
// Unknown fields are returned unchanged so callers fail loudly in SQL, not silently in Go.
func (p *ProjectionMap) Column(field string) string {
	if col, ok := p.byName[field]; ok {
		return col
	}
	return field
}

// Columns returns the comma-separated column list in projection order.
func (p *ProjectionMap) Columns() string {
	cols := make([]string, len(p.fields))
	for i, f := range p.fields {
		cols[i] = p.byName[f]
	}
	return strings.Join(cols, ", ")
}

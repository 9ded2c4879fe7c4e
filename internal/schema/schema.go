// Package schema serves a static description of the analytics tables so
// the model can write read-only SQL against them.
package schema

import (
	_ "embed"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed schema.yaml
var schemaYAML []byte

// Detail selects which slice of the registry Describe returns.
type Detail string

const (
	DetailTables    Detail = "tables"
	DetailColumns   Detail = "columns"
	DetailRelations Detail = "relations"
)

// Valid reports whether d is a recognized detail level.
func (d Detail) Valid() bool {
	switch d {
	case DetailTables, DetailColumns, DetailRelations:
		return true
	}
	return false
}

// Registry holds the table/column/relation catalog.
type Registry struct {
	Tables    []string            `yaml:"tables" json:"tables"`
	Columns   map[string][]string `yaml:"columns" json:"columns"`
	Relations map[string]string   `yaml:"relations" json:"relations"`
}

// Load parses the embedded catalog.
func Load() (*Registry, error) {
	var r Registry
	if err := yaml.Unmarshal(schemaYAML, &r); err != nil {
		return nil, eris.Wrap(err, "schema: parse catalog")
	}
	return &r, nil
}

// Describe returns the requested slice of the registry. Unknown detail
// levels fall back to relations, matching the permissive contract of the
// describe_schema tool: it never fails.
func (r *Registry) Describe(detail Detail) map[string]any {
	switch detail {
	case DetailTables:
		return map[string]any{"tables": r.Tables}
	case DetailColumns:
		return map[string]any{"columns": r.Columns}
	default:
		return map[string]any{"relations": r.Relations}
	}
}

package metadata

import (
	"sort"
	"strings"
)

const foreignKeySuffix = "_id"

// InferRelationships derives foreign-key-like links from column naming alone.
// A non-primary-key column ending in "_id" points at the table named by the
// stripped suffix, or failing that its pluralized form. The singular match
// wins; at most one relationship is emitted per column. No constraint is
// verified against the catalog, so the result is advisory only.
func InferRelationships(tables map[string]TableMetadata) []Relationship {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	var relationships []Relationship
	for _, name := range names {
		for _, col := range tables[name].Columns {
			if col.IsPrimaryKey || !strings.HasSuffix(col.Name, foreignKeySuffix) {
				continue
			}
			candidate := strings.TrimSuffix(col.Name, foreignKeySuffix)
			target := ""
			if _, ok := tables[candidate]; ok {
				target = candidate
			} else if _, ok := tables[candidate+"s"]; ok {
				target = candidate + "s"
			}
			if target == "" {
				continue
			}
			relationships = append(relationships, Relationship{
				SourceTable:  name,
				SourceColumn: col.Name,
				TargetTable:  target,
				TargetColumn: col.Name,
			})
		}
	}
	return relationships
}

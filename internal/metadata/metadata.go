// Package metadata reads table and column definitions from a ClickHouse
// system catalog and derives advisory relationships between tables.
package metadata

import "errors"

var (
	// ErrUnavailable reports that the catalog could not be reached or the
	// catalog query failed.
	ErrUnavailable = errors.New("metadata: catalog unavailable")

	// ErrTableNotFound reports that a named table is absent from the catalog.
	ErrTableNotFound = errors.New("metadata: table not found")
)

// Column is one column definition as recorded in system.columns. Read-only
// once produced.
type Column struct {
	Table             string
	Name              string
	Type              string
	IsPrimaryKey      bool
	DefaultKind       string
	DefaultExpression string
	Comment           string
}

// TableMetadata describes one table at the moment of the catalog query.
// Columns keep catalog position order.
type TableMetadata struct {
	Name     string
	Engine   string
	RowCount uint64
	Size     string
	Columns  []Column
}

// Relationship is an inferred, unverified foreign-key-like link. The target
// column name is assumed identical to the source column name.
type Relationship struct {
	SourceTable  string
	SourceColumn string
	TargetTable  string
	TargetColumn string
}

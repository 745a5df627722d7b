package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Querier is the subset of database/sql used for catalog reads. Both *sql.DB
// and a per-request *sql.Conn satisfy it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

const (
	defaultSampleLimit = 5
	maxSampleLimit     = 10
)

const tableColumnsQuery = `
SELECT name, type, is_in_primary_key, default_kind, default_expression, comment
FROM system.columns
WHERE database = ? AND table = ?
ORDER BY position`

const tableInfoQuery = `
SELECT engine, total_rows, formatReadableSize(total_bytes) AS size
FROM system.tables
WHERE database = ? AND name = ?`

const allColumnsQuery = `
SELECT table, name, type, is_in_primary_key, default_kind, default_expression, comment
FROM system.columns
WHERE database = ?
ORDER BY table, position`

const allTablesQuery = `
SELECT name, engine, total_rows, formatReadableSize(total_bytes) AS size
FROM system.tables
WHERE database = ?`

// Introspector reads table and column definitions for one database. It holds
// no state beyond the query executor, so results always reflect the catalog
// at call time.
type Introspector struct {
	db       Querier
	database string
}

func NewIntrospector(db Querier, database string) *Introspector {
	return &Introspector{db: db, database: database}
}

// DescribeTable returns the full definition of one table. A table with zero
// columns yields an empty column slice; a table missing from system.tables
// yields ErrTableNotFound.
func (i *Introspector) DescribeTable(ctx context.Context, table string) (TableMetadata, error) {
	columns, err := i.tableColumns(ctx, table)
	if err != nil {
		return TableMetadata{}, err
	}

	meta := TableMetadata{Name: table, Columns: columns}
	rows, err := i.db.QueryContext(ctx, tableInfoQuery, i.database, table)
	if err != nil {
		return TableMetadata{}, fmt.Errorf("%w: query system.tables: %v", ErrUnavailable, err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return TableMetadata{}, fmt.Errorf("%w: iterate system.tables: %v", ErrUnavailable, err)
		}
		return TableMetadata{}, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	// total_rows and total_bytes are NULL for views and some engines, so
	// both go through nullable scans.
	var totalRows sql.Null[uint64]
	var size sql.Null[string]
	if err := rows.Scan(&meta.Engine, &totalRows, &size); err != nil {
		return TableMetadata{}, fmt.Errorf("%w: scan table info: %v", ErrUnavailable, err)
	}
	if totalRows.Valid {
		meta.RowCount = totalRows.V
	}
	if size.Valid {
		meta.Size = size.V
	}
	if err := rows.Err(); err != nil {
		return TableMetadata{}, fmt.Errorf("%w: iterate system.tables: %v", ErrUnavailable, err)
	}
	return meta, nil
}

// DescribeAllTables returns every table in the database keyed by name,
// rebuilt from the catalog on each call. Column order within a table follows
// catalog position.
func (i *Introspector) DescribeAllTables(ctx context.Context) (map[string]TableMetadata, error) {
	rows, err := i.db.QueryContext(ctx, allColumnsQuery, i.database)
	if err != nil {
		return nil, fmt.Errorf("%w: query system.columns: %v", ErrUnavailable, err)
	}
	defer func() { _ = rows.Close() }()

	tables := make(map[string]TableMetadata)
	for rows.Next() {
		var col Column
		var isPrimary uint8
		if err := rows.Scan(&col.Table, &col.Name, &col.Type, &isPrimary, &col.DefaultKind, &col.DefaultExpression, &col.Comment); err != nil {
			return nil, fmt.Errorf("%w: scan column row: %v", ErrUnavailable, err)
		}
		col.IsPrimaryKey = isPrimary != 0
		meta := tables[col.Table]
		meta.Name = col.Table
		meta.Columns = append(meta.Columns, col)
		tables[col.Table] = meta
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate column rows: %v", ErrUnavailable, err)
	}

	infoRows, err := i.db.QueryContext(ctx, allTablesQuery, i.database)
	if err != nil {
		return nil, fmt.Errorf("%w: query system.tables: %v", ErrUnavailable, err)
	}
	defer func() { _ = infoRows.Close() }()

	for infoRows.Next() {
		var name, engine string
		var totalRows sql.Null[uint64]
		var size sql.Null[string]
		if err := infoRows.Scan(&name, &engine, &totalRows, &size); err != nil {
			return nil, fmt.Errorf("%w: scan table info row: %v", ErrUnavailable, err)
		}
		meta := tables[name]
		meta.Name = name
		meta.Engine = engine
		if totalRows.Valid {
			meta.RowCount = totalRows.V
		}
		if size.Valid {
			meta.Size = size.V
		}
		tables[name] = meta
	}
	if err := infoRows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate table info rows: %v", ErrUnavailable, err)
	}

	return tables, nil
}

// SampleRows fetches up to limit rows from a table. A non-positive limit
// means the default of 5, anything above 10 is capped, and the value is
// bound as an unsigned integer parameter. The table name must already be
// validated by the caller.
func (i *Introspector) SampleRows(ctx context.Context, table string, limit int) ([]string, [][]string, error) {
	if limit <= 0 {
		limit = defaultSampleLimit
	}
	if limit > maxSampleLimit {
		limit = maxSampleLimit
	}

	query := fmt.Sprintf("SELECT * FROM %s.%s LIMIT ?", quoteIdent(i.database), quoteIdent(table))
	rows, err := i.db.QueryContext(ctx, query, uint64(limit))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: query sample rows: %v", ErrUnavailable, err)
	}
	defer func() { _ = rows.Close() }()

	headers, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read sample columns: %v", ErrUnavailable, err)
	}

	var data [][]string
	for rows.Next() {
		values := make([]any, len(headers))
		dests := make([]any, len(headers))
		for idx := range values {
			dests[idx] = &values[idx]
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, nil, fmt.Errorf("%w: scan sample row: %v", ErrUnavailable, err)
		}
		cells := make([]string, len(headers))
		for idx, value := range values {
			if value == nil {
				continue
			}
			cells[idx] = fmt.Sprint(value)
		}
		data = append(data, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: iterate sample rows: %v", ErrUnavailable, err)
	}
	return headers, data, nil
}

func (i *Introspector) tableColumns(ctx context.Context, table string) ([]Column, error) {
	rows, err := i.db.QueryContext(ctx, tableColumnsQuery, i.database, table)
	if err != nil {
		return nil, fmt.Errorf("%w: query system.columns: %v", ErrUnavailable, err)
	}
	defer func() { _ = rows.Close() }()

	columns := make([]Column, 0)
	for rows.Next() {
		col := Column{Table: table}
		var isPrimary uint8
		if err := rows.Scan(&col.Name, &col.Type, &isPrimary, &col.DefaultKind, &col.DefaultExpression, &col.Comment); err != nil {
			return nil, fmt.Errorf("%w: scan column row: %v", ErrUnavailable, err)
		}
		col.IsPrimaryKey = isPrimary != 0
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate column rows: %v", ErrUnavailable, err)
	}
	return columns, nil
}

func quoteIdent(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

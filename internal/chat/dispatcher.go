package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/schemachat/schemachat/internal/metadata"
	"github.com/schemachat/schemachat/internal/observability"
	"github.com/schemachat/schemachat/internal/render"
)

type ResultKind string

const (
	KindOK          ResultKind = "ok"
	KindRejected    ResultKind = "rejected"
	KindUnavailable ResultKind = "unavailable"
)

// ToolResult is the rendered outcome of one tool invocation. It is never
// mutated after Dispatch returns; Kind tells the orchestrator which fallback
// policy applies without parsing the text.
type ToolResult struct {
	ToolName string
	Text     string
	Kind     ResultKind
}

const noTablesText = "No tables found in database"

const metadataUnavailableText = `ClickHouse database is not available.

To use the schema assistant:

1. Start the ClickHouse server, or point SCHEMACHAT_CLICKHOUSE_DSN at a reachable instance.
2. Verify the configured credentials and SCHEMACHAT_CLICKHOUSE_DATABASE.
3. Check the /v1/ready endpoint to confirm connectivity.

Once connected, I can show you real-time database schemas.`

var toolScopes = map[string]bool{
	ToolGetDatabaseSchema:     false,
	ToolListTablesWithColumns: false,
	ToolGetTableSchema:        true,
	ToolGetSampleData:         true,
}

// Dispatcher validates tool invocations and runs them against the catalog.
// Every dispatch checks out its own connection from the pool and returns it
// on all exit paths; nothing is shared between requests beyond the pool and
// the read-only allow-list.
type Dispatcher struct {
	db       *sql.DB
	database string
	allowed  []string
	logger   *slog.Logger
}

func NewDispatcher(db *sql.DB, database string, allowedTables []string, logger *slog.Logger) *Dispatcher {
	allowed := make([]string, len(allowedTables))
	copy(allowed, allowedTables)
	return &Dispatcher{
		db:       db,
		database: database,
		allowed:  allowed,
		logger:   logger,
	}
}

// Dispatch runs the named tool and always returns renderable text, never an
// error: unknown operations, disallowed tables, and catalog outages all map
// to descriptive ToolResults.
func (d *Dispatcher) Dispatch(ctx context.Context, toolName string, args map[string]any) ToolResult {
	result := d.dispatch(ctx, toolName, args)
	observability.ObserveToolDispatch(toolName, string(result.Kind))
	if d.logger != nil {
		d.logger.DebugContext(ctx, "tool_dispatch",
			slog.String("tool", toolName),
			slog.String("outcome", string(result.Kind)),
		)
	}
	return result
}

func (d *Dispatcher) dispatch(ctx context.Context, toolName string, args map[string]any) ToolResult {
	tableScoped, known := toolScopes[toolName]
	if !known {
		return ToolResult{
			ToolName: toolName,
			Text:     fmt.Sprintf("Unknown tool %q. Valid tools: %s.", toolName, strings.Join(ToolNames(), ", ")),
			Kind:     KindRejected,
		}
	}

	table := ""
	if tableScoped {
		table = stringArg(args, "table_name")
		if !d.tableAllowed(table) {
			return ToolResult{
				ToolName: toolName,
				Text:     fmt.Sprintf("Table %q is not accessible. Available tables: %s.", table, strings.Join(d.allowed, ", ")),
				Kind:     KindRejected,
			}
		}
	}

	if d.db == nil {
		return ToolResult{ToolName: toolName, Text: metadataUnavailableText, Kind: KindUnavailable}
	}

	// The connection is scoped to this dispatch: acquired only after input
	// validation, returned to the pool on every exit path.
	conn, err := d.db.Conn(ctx)
	if err != nil {
		return ToolResult{ToolName: toolName, Text: metadataUnavailableText, Kind: KindUnavailable}
	}
	defer func() { _ = conn.Close() }()

	intro := metadata.NewIntrospector(conn, d.database)

	var text string
	switch toolName {
	case ToolGetDatabaseSchema:
		text, err = d.databaseSchemaText(ctx, intro)
	case ToolListTablesWithColumns:
		text, err = d.tablesWithColumnsText(ctx, intro)
	case ToolGetTableSchema:
		text, err = tableSchemaText(ctx, intro, table)
	case ToolGetSampleData:
		text, err = sampleDataText(ctx, intro, table, intArg(args, "limit", 5))
	}
	if err != nil {
		if errors.Is(err, metadata.ErrTableNotFound) {
			return ToolResult{
				ToolName: toolName,
				Text:     fmt.Sprintf("Table %q was not found in the catalog.", table),
				Kind:     KindOK,
			}
		}
		return ToolResult{ToolName: toolName, Text: metadataUnavailableText, Kind: KindUnavailable}
	}
	return ToolResult{ToolName: toolName, Text: text, Kind: KindOK}
}

// ToolNames lists the dispatchable tools in stable order.
func ToolNames() []string {
	names := make([]string, 0, len(toolScopes))
	for name := range toolScopes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *Dispatcher) tableAllowed(table string) bool {
	if table == "" {
		return false
	}
	if len(d.allowed) == 0 {
		return true
	}
	for _, candidate := range d.allowed {
		if candidate == table {
			return true
		}
	}
	return false
}

// accessibleTables filters a catalog listing down to the allow-list. An
// empty allow-list leaves the listing untouched.
func (d *Dispatcher) accessibleTables(tables map[string]metadata.TableMetadata) map[string]metadata.TableMetadata {
	if len(d.allowed) == 0 {
		return tables
	}
	filtered := make(map[string]metadata.TableMetadata, len(d.allowed))
	for _, name := range d.allowed {
		if meta, ok := tables[name]; ok {
			filtered[name] = meta
		}
	}
	return filtered
}

func (d *Dispatcher) databaseSchemaText(ctx context.Context, intro *metadata.Introspector) (string, error) {
	tables, err := intro.DescribeAllTables(ctx)
	if err != nil {
		return "", err
	}
	tables = d.accessibleTables(tables)
	if len(tables) == 0 {
		return noTablesText, nil
	}

	var b strings.Builder
	b.WriteString("DATABASE SCHEMA WITH RELATIONSHIPS:\n\n")
	for _, name := range sortedTableNames(tables) {
		meta := tables[name]
		rows := make([][]string, 0, len(meta.Columns))
		for _, col := range meta.Columns {
			key := ""
			if col.IsPrimaryKey {
				key = "PRIMARY"
			}
			rows = append(rows, []string{col.Name, col.Type, key})
		}
		b.WriteString(strings.ToUpper(name) + " TABLE:\n")
		b.WriteString(render.Table([]string{"Column Name", "Type", "Key"}, rows))
		b.WriteString("\n\n")
	}

	relationships := metadata.InferRelationships(tables)
	if len(relationships) > 0 {
		b.WriteString("TABLE RELATIONSHIPS:\n")
		for _, rel := range relationships {
			fmt.Fprintf(&b, "%s.%s -> %s.%s\n", rel.SourceTable, rel.SourceColumn, rel.TargetTable, rel.TargetColumn)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (d *Dispatcher) tablesWithColumnsText(ctx context.Context, intro *metadata.Introspector) (string, error) {
	tables, err := intro.DescribeAllTables(ctx)
	if err != nil {
		return "", err
	}
	tables = d.accessibleTables(tables)
	if len(tables) == 0 {
		return noTablesText, nil
	}

	var b strings.Builder
	b.WriteString("DATABASE TABLES AND COLUMNS:\n\n")
	for _, name := range sortedTableNames(tables) {
		meta := tables[name]
		rows := make([][]string, 0, len(meta.Columns))
		for _, col := range meta.Columns {
			rows = append(rows, []string{col.Name, col.Type})
		}
		b.WriteString(strings.ToUpper(name) + " TABLE:\n")
		b.WriteString(render.Table([]string{"Column", "Type"}, rows))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func tableSchemaText(ctx context.Context, intro *metadata.Introspector, table string) (string, error) {
	meta, err := intro.DescribeTable(ctx, table)
	if err != nil {
		return "", err
	}

	rows := make([][]string, 0, len(meta.Columns))
	for _, col := range meta.Columns {
		defaultValue := "None"
		if col.DefaultKind != "" {
			defaultValue = truncate(col.DefaultExpression, 30)
		}
		rows = append(rows, []string{col.Name, col.Type, defaultValue, truncate(col.Comment, 30)})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "TABLE: %s\n", meta.Name)
	fmt.Fprintf(&b, "Engine: %s\n", meta.Engine)
	fmt.Fprintf(&b, "Total Rows: %d\n", meta.RowCount)
	fmt.Fprintf(&b, "Total Size: %s\n\n", meta.Size)
	b.WriteString("SCHEMA STRUCTURE:\n")
	b.WriteString(render.Table([]string{"Column Name", "Type", "Default", "Comment"}, rows))
	return b.String(), nil
}

func sampleDataText(ctx context.Context, intro *metadata.Introspector, table string, limit int) (string, error) {
	headers, rows, err := intro.SampleRows(ctx, table, limit)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SAMPLE DATA FROM %s (%d rows):\n\n", strings.ToUpper(table), len(rows))
	b.WriteString(render.Table(headers, rows))
	return b.String(), nil
}

func sortedTableNames(tables map[string]metadata.TableMetadata) []string {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit]
}

func stringArg(args map[string]any, key string) string {
	value, ok := args[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

func intArg(args map[string]any, key string, fallback int) int {
	switch value := args[key].(type) {
	case int:
		return value
	case float64:
		return int(value)
	default:
		return fallback
	}
}

// Package chat turns free-text questions about a ClickHouse database into
// catalog tool invocations and natural-language answers.
package chat

import "strings"

// Tool names. ToolNone means the message is handled as plain conversation.
const (
	ToolGetDatabaseSchema     = "get_database_schema"
	ToolListTablesWithColumns = "list_tables_with_columns"
	ToolGetTableSchema        = "get_table_schema"
	ToolGetSampleData         = "get_sample_data"
	ToolNone                  = "none"
)

// Keyword sets checked in fixed priority order: schema-structure keywords win
// over generic listing keywords when both appear in one message.
var (
	schemaKeywords  = []string{"schema", "create", "ddl", "definition"}
	listingKeywords = []string{"list", "show", "tables", "columns", "structure", "database"}
)

// ClassifyIntent maps an utterance to a tool name by case-insensitive
// substring match.
func ClassifyIntent(utterance string) string {
	lowered := strings.ToLower(utterance)
	for _, keyword := range schemaKeywords {
		if strings.Contains(lowered, keyword) {
			return ToolGetDatabaseSchema
		}
	}
	for _, keyword := range listingKeywords {
		if strings.Contains(lowered, keyword) {
			return ToolListTablesWithColumns
		}
	}
	return ToolNone
}

package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/schemachat/schemachat/internal/chat"
)

type toolRunRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args"`
}

type toolRunResponse struct {
	Tool string `json:"tool"`
	Text string `json:"text"`
}

type toolDescriptor struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Parameters  []string `json:"parameters"`
}

var toolDescriptors = []toolDescriptor{
	{
		Name:        chat.ToolGetDatabaseSchema,
		Description: "Complete schema of every accessible table, including inferred relationships.",
		Parameters:  []string{},
	},
	{
		Name:        chat.ToolListTablesWithColumns,
		Description: "Every accessible table with its columns and types.",
		Parameters:  []string{},
	},
	{
		Name:        chat.ToolGetTableSchema,
		Description: "Detailed schema of one table: engine, row count, size, and column definitions.",
		Parameters:  []string{"table_name"},
	},
	{
		Name:        chat.ToolGetSampleData,
		Description: "Sample rows from one table, at most 10.",
		Parameters:  []string{"table_name", "limit"},
	},
}

func handleListTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": toolDescriptors})
}

func handleToolRun(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Tools == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "TOOLS_NOT_CONFIGURED", "tool dependencies are not configured", false, nil)
		return
	}

	var request toolRunRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid tool request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(request.Tool) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "TOOL_REQUIRED", "tool is required", false, nil)
		return
	}

	result := deps.Tools.Dispatch(r.Context(), request.Tool, request.Args)
	switch result.Kind {
	case chat.KindRejected:
		writeError(r.Context(), w, http.StatusBadRequest, "TOOL_REJECTED", result.Text, false, nil)
	case chat.KindUnavailable:
		writeError(r.Context(), w, http.StatusServiceUnavailable, "METADATA_UNAVAILABLE", result.Text, true, nil)
	default:
		writeJSON(w, http.StatusOK, toolRunResponse{Tool: result.ToolName, Text: result.Text})
	}
}

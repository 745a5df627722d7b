package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response   string `json:"response"`
	ToolUsed   string `json:"tool_used,omitempty"`
	ToolResult string `json:"tool_result,omitempty"`
}

func handleChat(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Chat == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "CHAT_NOT_CONFIGURED", "chat dependencies are not configured", false, nil)
		return
	}

	var request chatRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid chat request body", false, map[string]any{"details": err.Error()})
		return
	}

	message := strings.TrimSpace(request.Message)
	if message == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "MESSAGE_REQUIRED", "message is required", false, nil)
		return
	}

	reply := deps.Chat.Converse(r.Context(), message)
	writeJSON(w, http.StatusOK, chatResponse{
		Response:   reply.Text,
		ToolUsed:   reply.ToolUsed,
		ToolResult: reply.ToolResult,
	})
}

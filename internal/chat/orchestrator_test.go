package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/schemachat/schemachat/internal/llm"
)

type stubDispatcher struct {
	result ToolResult
	calls  []string
}

func (s *stubDispatcher) Dispatch(ctx context.Context, toolName string, args map[string]any) ToolResult {
	s.calls = append(s.calls, toolName)
	result := s.result
	result.ToolName = toolName
	return result
}

type stubCompleter struct {
	reply    string
	err      error
	requests []llm.Request
}

func (s *stubCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	s.requests = append(s.requests, req)
	return s.reply, s.err
}

func TestConverseExplainsToolOutput(t *testing.T) {
	dispatcher := &stubDispatcher{result: ToolResult{Text: "USERS TABLE:\n...", Kind: KindOK}}
	completer := &stubCompleter{reply: "<think>figuring it out</think>\n\nThe users table stores accounts."}
	orch := NewOrchestrator(dispatcher, completer, OrchestratorConfig{}, nil)

	reply := orch.Converse(context.Background(), "show me the schema")

	if reply.Text != "The users table stores accounts." {
		t.Fatalf("Text = %q", reply.Text)
	}
	if reply.ToolUsed != ToolGetDatabaseSchema {
		t.Fatalf("ToolUsed = %q, want %q", reply.ToolUsed, ToolGetDatabaseSchema)
	}
	if reply.ToolResult != "USERS TABLE:\n..." {
		t.Fatalf("ToolResult = %q", reply.ToolResult)
	}
	if len(completer.requests) != 1 {
		t.Fatalf("completer calls = %d, want 1", len(completer.requests))
	}
	prompt := completer.requests[0].UserPrompts[0]
	if !strings.Contains(prompt, "USERS TABLE:") || !strings.Contains(prompt, "User asked: show me the schema") {
		t.Fatalf("prompt = %q", prompt)
	}
}

func TestConverseFallsBackToToolTextWhenModelFails(t *testing.T) {
	dispatcher := &stubDispatcher{result: ToolResult{Text: "USERS TABLE:\n...", Kind: KindOK}}
	completer := &stubCompleter{err: llm.ErrUnavailable}
	orch := NewOrchestrator(dispatcher, completer, OrchestratorConfig{}, nil)

	reply := orch.Converse(context.Background(), "list the tables")

	if reply.Text != "USERS TABLE:\n..." {
		t.Fatalf("Text = %q, want raw tool output", reply.Text)
	}
	if reply.ToolUsed != ToolListTablesWithColumns {
		t.Fatalf("ToolUsed = %q, want %q", reply.ToolUsed, ToolListTablesWithColumns)
	}
}

func TestConverseReturnsRemediationWhenCatalogDown(t *testing.T) {
	dispatcher := &stubDispatcher{result: ToolResult{Text: metadataUnavailableText, Kind: KindUnavailable}}
	completer := &stubCompleter{reply: "should not be called"}
	orch := NewOrchestrator(dispatcher, completer, OrchestratorConfig{}, nil)

	reply := orch.Converse(context.Background(), "show me the schema")

	if reply.Text != metadataUnavailableText {
		t.Fatalf("Text = %q, want remediation text", reply.Text)
	}
	if reply.ToolUsed != "error_handler" {
		t.Fatalf("ToolUsed = %q, want error_handler", reply.ToolUsed)
	}
	if len(completer.requests) != 0 {
		t.Fatalf("completer calls = %d, want 0", len(completer.requests))
	}
}

func TestConverseChatsWithoutTool(t *testing.T) {
	dispatcher := &stubDispatcher{}
	completer := &stubCompleter{reply: "Hi! Ask me about your ClickHouse tables."}
	orch := NewOrchestrator(dispatcher, completer, OrchestratorConfig{}, nil)

	reply := orch.Converse(context.Background(), "hello there")

	if reply.Text != "Hi! Ask me about your ClickHouse tables." {
		t.Fatalf("Text = %q", reply.Text)
	}
	if reply.ToolUsed != "" || reply.ToolResult != "" {
		t.Fatalf("Reply = %+v, want no tool fields", reply)
	}
	if len(dispatcher.calls) != 0 {
		t.Fatalf("dispatcher calls = %v, want none", dispatcher.calls)
	}
}

func TestConverseStaticHelpWithoutModel(t *testing.T) {
	orch := NewOrchestrator(&stubDispatcher{}, nil, OrchestratorConfig{}, nil)

	reply := orch.Converse(context.Background(), "hello there")

	if reply.Text != staticHelpText {
		t.Fatalf("Text = %q, want static help", reply.Text)
	}
}

func TestConverseSamplingDefaults(t *testing.T) {
	completer := &stubCompleter{reply: "ok"}
	orch := NewOrchestrator(&stubDispatcher{}, completer, OrchestratorConfig{}, nil)

	orch.Converse(context.Background(), "hello there")

	req := completer.requests[0]
	if req.MaxTokens != 512 {
		t.Fatalf("MaxTokens = %d, want 512", req.MaxTokens)
	}
	if req.Temperature != 0.7 {
		t.Fatalf("Temperature = %v, want 0.7", req.Temperature)
	}
	if req.SystemPrompt != chatSystemPrompt {
		t.Fatalf("SystemPrompt = %q", req.SystemPrompt)
	}
}

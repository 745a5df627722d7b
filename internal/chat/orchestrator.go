package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/schemachat/schemachat/internal/llm"
	"github.com/schemachat/schemachat/internal/observability"
)

const (
	toolSystemPrompt = "You are a ClickHouse database assistant. Provide helpful responses about database schemas."
	chatSystemPrompt = "You are a ClickHouse database assistant. Help users with database questions and setup."

	staticHelpText = "I'm a ClickHouse database assistant. I can help you explore database schemas when ClickHouse is connected. To get started, please ensure the ClickHouse server is running and properly configured."
)

// ToolDispatcher runs a named tool and reports the outcome as renderable
// text. Implemented by Dispatcher; narrowed to an interface so the
// orchestrator can be tested without a catalog.
type ToolDispatcher interface {
	Dispatch(ctx context.Context, toolName string, args map[string]any) ToolResult
}

// Reply is one conversational turn. ToolUsed and ToolResult are empty when
// the turn was answered without touching the catalog.
type Reply struct {
	Text       string
	ToolUsed   string
	ToolResult string
}

type OrchestratorConfig struct {
	MaxTokens   int
	Temperature float64
}

// Orchestrator classifies each utterance, runs the matching tool, and asks
// the language model to explain the result. Every degradation has a
// deterministic fallback: no model means raw tool text, no catalog means
// remediation text, and neither means a static capability message.
type Orchestrator struct {
	dispatcher  ToolDispatcher
	completer   llm.Completer
	maxTokens   int
	temperature float64
	logger      *slog.Logger
}

// NewOrchestrator wires the conversational loop. completer may be nil when
// the model backend is disabled; the orchestrator then serves tool output
// directly.
func NewOrchestrator(dispatcher ToolDispatcher, completer llm.Completer, cfg OrchestratorConfig, logger *slog.Logger) *Orchestrator {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 512
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.7
	}
	return &Orchestrator{
		dispatcher:  dispatcher,
		completer:   completer,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

// Converse handles one user message end to end. It never returns an error;
// failures downstream degrade to text the caller can always render.
func (o *Orchestrator) Converse(ctx context.Context, message string) Reply {
	toolName := ClassifyIntent(message)
	observability.ObserveChatTurn(toolName)

	if toolName == ToolNone {
		text, err := o.complete(ctx, chatSystemPrompt, message)
		if err != nil {
			o.warn(ctx, "chat_completion_failed", err)
			return Reply{Text: staticHelpText}
		}
		return Reply{Text: StripThinkTokens(text)}
	}

	result := o.dispatcher.Dispatch(ctx, toolName, nil)
	if result.Kind != KindOK {
		// Remediation and rejection text goes straight to the user; there
		// is nothing for the model to explain.
		return Reply{Text: result.Text, ToolUsed: "error_handler", ToolResult: result.Text}
	}

	prompt := fmt.Sprintf("Based on this ClickHouse schema information:\n\n%s\n\nUser asked: %s", result.Text, message)
	text, err := o.complete(ctx, toolSystemPrompt, prompt)
	if err != nil {
		o.warn(ctx, "explanation_failed", err)
		return Reply{Text: result.Text, ToolUsed: result.ToolName, ToolResult: result.Text}
	}
	return Reply{Text: StripThinkTokens(text), ToolUsed: result.ToolName, ToolResult: result.Text}
}

func (o *Orchestrator) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if o.completer == nil {
		return "", llm.ErrUnavailable
	}
	start := time.Now()
	text, err := o.completer.Complete(ctx, llm.Request{
		SystemPrompt: systemPrompt,
		UserPrompts:  []string{userPrompt},
		MaxTokens:    o.maxTokens,
		Temperature:  o.temperature,
	})
	observability.ObserveLLMRequest(time.Since(start), err)
	return text, err
}

func (o *Orchestrator) warn(ctx context.Context, msg string, err error) {
	if o.logger == nil {
		return
	}
	o.logger.WarnContext(ctx, msg, slog.String("error", err.Error()))
}

// Package llm talks to an OpenAI-compatible chat completion endpoint. The
// service is treated as a black box that may be down at any time; callers
// are expected to degrade when ErrUnavailable comes back.
package llm

import (
	"context"
	"errors"
)

// ErrUnavailable reports that the completion service could not be reached or
// answered with a non-success status.
var ErrUnavailable = errors.New("llm: upstream unavailable")

type Request struct {
	SystemPrompt string
	UserPrompts  []string
	MaxTokens    int
	Temperature  float64
}

type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

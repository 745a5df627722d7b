package chat

import "strings"

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

// StripThinkTokens removes a leading model-reasoning block from a reply. When
// the reply opens with <think>, everything up to and including the closing
// marker is dropped. Without a closing marker the reply is split on its first
// blank line and only the remainder is kept; with no blank line either, the
// reply passes through unmodified.
func StripThinkTokens(reply string) string {
	if !strings.HasPrefix(reply, thinkOpen) {
		return reply
	}
	if _, after, ok := strings.Cut(reply, thinkClose); ok {
		return strings.TrimSpace(after)
	}
	if _, after, ok := strings.Cut(reply, "\n\n"); ok {
		return strings.TrimSpace(after)
	}
	return reply
}

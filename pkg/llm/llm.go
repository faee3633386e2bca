package llm

import (
	"context"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// json is shared by package llm for all JSON handling.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

type contextKey string

// DebugDirContextKey carries the per-request debug id used to group raw
// payload dumps and log lines of one agent run.
const DebugDirContextKey contextKey = "llm_debug_dir"

// WithDebugID returns a context tagged with the given debug id.
func WithDebugID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, DebugDirContextKey, id)
}

// DebugID returns the debug id carried by ctx, if any.
func DebugID(ctx context.Context) string {
	id, _ := ctx.Value(DebugDirContextKey).(string)
	return id
}

// Client is a provider adapter: it sends the system prompt and the message
// log to one backend and returns the raw response text.
type Client interface {
	// Provider identifies the backend family.
	Provider() Provider

	// Model returns the backend model id requests are sent to.
	Model() string

	// Send performs one completion. systemPrompt is the only system context:
	// system-role entries inside messages are ignored. maxTokens caps the
	// response length. Transport errors are returned unmodified.
	Send(ctx context.Context, systemPrompt string, messages []Message, maxTokens int) (string, error)

	// IsTransientError reports whether err is worth retrying (503, rate limit).
	IsTransientError(err error) bool
}

// DebugSetter is implemented by clients that can dump raw payloads.
type DebugSetter interface {
	SetDebug(enabled bool)
}

// IsTransientMessage classifies an error by the substrings backends
// commonly use for temporary failures.
func IsTransientMessage(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())

	// Network-level issues
	if strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "timeout") {
		return true
	}

	// Server-side temporary failures and rate limits
	for _, marker := range []string{"429", "500", "502", "503", "529", "overloaded", "rate limit", "resource exhausted", "internal error"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}

	// Everything else (400 Bad Request, 401 Unauthorized, etc.) is non-transient
	return false
}

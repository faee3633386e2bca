package llm

import (
	"fmt"
	"time"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/utils"
)

// Role tags a message with who produced it and how backends should see it.
type Role string

const (
	RoleUser       Role = "user"
	RoleAssistant  Role = "assistant"
	RoleSystem     Role = "system"
	RoleToolCall   Role = "tool_call"   // Raw model text that carried a tool-call directive
	RoleToolResult Role = "tool_result" // Outcome of a dispatched tool, success or error
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem, RoleToolCall, RoleToolResult:
		return true
	}
	return false
}

//----------------------------------------------------------------
// Message
//----------------------------------------------------------------

// Message is one conversation turn. It is a value: once appended to a
// ChatHistory it is never modified, only copied out.
type Message struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// NewMessage builds a message with a fresh ID and the current time.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        utils.GenerateID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().Unix(),
	}
}

func NewUserMessage(text string) Message       { return NewMessage(RoleUser, text) }
func NewAssistantMessage(text string) Message  { return NewMessage(RoleAssistant, text) }
func NewSystemMessage(text string) Message     { return NewMessage(RoleSystem, text) }
func NewToolCallMessage(text string) Message   { return NewMessage(RoleToolCall, text) }
func NewToolResultMessage(text string) Message { return NewMessage(RoleToolResult, text) }

func (m Message) String() string {
	return fmt.Sprintf("[%s] %s", m.Role, m.Content)
}

//----------------------------------------------------------------
// Turns - provider-neutral view of the log
//----------------------------------------------------------------

// ToolResultPrefix marks tool output folded into a user turn.
const ToolResultPrefix = "Tool result: "

// Turn is a message as a backend without tool roles should see it.
type Turn struct {
	Assistant bool   // false means user
	Text      string // already prefixed for tool results
}

// Turns converts the log into backend turns. System entries are dropped
// because every adapter receives the system prompt separately. Tool calls
// are model output and become assistant turns; tool results are input to
// the model and become user turns.
func Turns(messages []Message) []Turn {
	turns := make([]Turn, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			continue
		case RoleAssistant, RoleToolCall:
			turns = append(turns, Turn{Assistant: true, Text: m.Content})
		case RoleToolResult:
			turns = append(turns, Turn{Text: ToolResultPrefix + m.Content})
		default:
			turns = append(turns, Turn{Text: m.Content})
		}
	}
	return turns
}

// MergeTurns joins consecutive turns of the same side, for backends that
// require strict user/assistant alternation.
func MergeTurns(turns []Turn) []Turn {
	merged := make([]Turn, 0, len(turns))
	for _, t := range turns {
		if n := len(merged); n > 0 && merged[n-1].Assistant == t.Assistant {
			merged[n-1].Text += "\n\n" + t.Text
			continue
		}
		merged = append(merged, t)
	}
	return merged
}

package llm

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ChatHistory is the message log of one conversation. It is append-only
// during a run and owned by the caller across runs.
type ChatHistory struct {
	messages []Message
	mu       sync.RWMutex
}

// NewChatHistory creates a history, optionally seeded with messages.
func NewChatHistory(initial ...Message) *ChatHistory {
	h := &ChatHistory{
		messages: make([]Message, 0, len(initial)),
	}
	h.messages = append(h.messages, initial...)
	return h
}

// Add appends messages in order.
func (h *ChatHistory) Add(msgs ...Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = append(h.messages, msgs...)
}

// GetMessages returns a copy of the current log.
func (h *ChatHistory) GetMessages() []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	cp := make([]Message, len(h.messages))
	copy(cp, h.messages)
	return cp
}

// Len returns the number of messages in the log.
func (h *ChatHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.messages)
}

// Last returns the newest message, if any.
func (h *ChatHistory) Last() (Message, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.messages) == 0 {
		return Message{}, false
	}
	return h.messages[len(h.messages)-1], true
}

// EnsureSystemMessage makes prompt the current system context of the log.
// A leading system message with the same text is left alone, a different one
// is replaced in place, and a log without one gets the prompt prepended.
// It reports whether the log changed.
//
// Replacement is the one exception to the append-only rule. It happens only
// when the agent's prompt changed between runs, after a config reload.
// Snapshots taken earlier with GetMessages keep the old system message.
func (h *ChatHistory) EnsureSystemMessage(prompt string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.messages) > 0 && h.messages[0].Role == RoleSystem {
		if h.messages[0].Content == prompt {
			return false
		}
		h.messages[0] = NewSystemMessage(prompt)
		return true
	}

	h.messages = append([]Message{NewSystemMessage(prompt)}, h.messages...)
	return true
}

// Reset drops every message.
func (h *ChatHistory) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = h.messages[:0]
}

// Save writes the log to path as JSON. The file is replaced atomically.
func (h *ChatHistory) Save(path string) error {
	data, err := json.MarshalIndent(h.GetMessages(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return os.Rename(tmp, path)
}

// Load replaces the log with the contents of path. A missing file leaves
// the log empty and is not an error.
func (h *ChatHistory) Load(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	var msgs []Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return fmt.Errorf("failed to parse history %s: %w", path, err)
	}
	for i, m := range msgs {
		if !m.Role.Valid() {
			return fmt.Errorf("history %s: message %d has unknown role %q", path, i, m.Role)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = msgs
	return nil
}

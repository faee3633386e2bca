package monitor

import "time"

// Message types surfaced to a Monitor.
const (
	TypeUser       = "USER"
	TypeAssistant  = "ASSISTANT"
	TypeToolCall   = "TOOL_CALL"
	TypeToolResult = "TOOL_RESULT"
)

// MonitorMessage is one observed event of a conversation.
type MonitorMessage struct {
	Timestamp   time.Time
	MessageType string
	ChannelID   string
	Username    string
	Content     string
}

// Monitor observes conversations without taking part in them.
type Monitor interface {
	Start() error
	Stop() error

	// OnMessage must not block the caller for long; the agent loop waits on it.
	OnMessage(msg MonitorMessage)
}

// Nop discards every message.
type Nop struct{}

func (Nop) Start() error              { return nil }
func (Nop) Stop() error               { return nil }
func (Nop) OnMessage(_ MonitorMessage) {}

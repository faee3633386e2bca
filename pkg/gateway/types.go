package gateway

// Signals understood by SignalingChannel implementations.
const (
	// SignalThinking tells the user a response is being prepared.
	SignalThinking = "thinking"
)

// Channel defines the lifecycle of one chat surface (terminal, web, telegram).
type Channel interface {
	ID() string
	Start(ctx ChannelContext) error
	Stop() error
	Send(session SessionContext, message string) error
}

// SignalingChannel is implemented by channels that can show transient UI
// state such as a typing indicator.
type SignalingChannel interface {
	Channel
	SendSignal(session SessionContext, signal string) error
}

// ChannelContext is what a channel sees of the gateway.
type ChannelContext interface {
	MessageResponder
	OnMessage(channelID string, msg *UnifiedMessage)
}

// MessageResponder sends replies back through the originating channel.
type MessageResponder interface {
	SendReply(session SessionContext, content string) error
	SendSignal(session SessionContext, signal string) error
}

// UnifiedMessage is an incoming user message normalized across channels.
type UnifiedMessage struct {
	Session SessionContext
	Content string
	// Raw optionally keeps the platform payload.
	Raw any
	// DebugID groups the logs and payload dumps of this request.
	DebugID string
}

// SessionContext identifies a conversation on a channel.
type SessionContext struct {
	ChannelID string
	UserID    string
	ChatID    string
	Username  string
}

// Key is the session id conversations are stored under.
func (s SessionContext) Key() string {
	return s.ChannelID + "_" + s.ChatID
}

// MessageHandler processes incoming messages.
type MessageHandler func(*UnifiedMessage)

// OnMessage lets a MessageHandler satisfy MessageProcessor.
func (h MessageHandler) OnMessage(msg *UnifiedMessage) {
	h(msg)
}

type MessageProcessor interface {
	OnMessage(msg *UnifiedMessage)
}

// ResponderAware is implemented by processors that reply on their own.
type ResponderAware interface {
	SetResponder(responder MessageResponder)
}

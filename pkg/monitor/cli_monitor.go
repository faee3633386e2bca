package monitor

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// CLIMonitor prints every observed message to a terminal.
type CLIMonitor struct {
	mu     sync.Mutex
	writer io.Writer
	color  bool
}

// NewCLIMonitor creates a monitor writing to stdout.
func NewCLIMonitor() *CLIMonitor {
	return &CLIMonitor{writer: os.Stdout, color: true}
}

// NewWriterMonitor creates a monitor writing plain text to w.
func NewWriterMonitor(w io.Writer) *CLIMonitor {
	return &CLIMonitor{writer: w}
}

func (m *CLIMonitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintln(m.writer, "----------------------------------------------------------------")
	fmt.Fprintln(m.writer, "🔧 Monitor active - tool calls and results will appear here")
	fmt.Fprintln(m.writer, "----------------------------------------------------------------")
	return nil
}

func (m *CLIMonitor) Stop() error {
	return nil
}

func (m *CLIMonitor) OnMessage(msg MonitorMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var line string
	switch msg.MessageType {
	case TypeAssistant:
		line = fmt.Sprintf("[AI] %s", msg.Content)
	case TypeToolCall:
		line = fmt.Sprintf("🔧 Tool call: %s", msg.Content)
	case TypeToolResult:
		line = fmt.Sprintf("📋 Tool result: %s", msg.Content)
	default:
		line = fmt.Sprintf("[%s/%s] %s", msg.ChannelID, msg.Username, msg.Content)
	}

	if !m.color {
		fmt.Fprintln(m.writer, line)
		return
	}
	timestamp := msg.Timestamp.Format("2006-01-02 15:04:05")
	fmt.Fprintf(m.writer, "\033[90m[%s]\033[0m %s\n", timestamp, line)
}

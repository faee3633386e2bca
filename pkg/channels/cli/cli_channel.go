// Package cli exposes the agent on the process's terminal.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/gateway"
)

// CLIConfig is the "cli" section of config.json.
type CLIConfig struct {
	Enabled  bool   `json:"enabled"`
	Username string `json:"username"`
	Prompt   string `json:"prompt"`
}

// CLIChannel reads one message per input line and prints replies.
// Typing "exit" or "quit", or closing the input, ends the session.
type CLIChannel struct {
	config CLIConfig
	in     io.Reader
	out    io.Writer
	mu     sync.Mutex
	done   chan struct{}
	once   sync.Once
}

func NewCLIChannel(cfg CLIConfig, in io.Reader, out io.Writer) *CLIChannel {
	if cfg.Username == "" {
		cfg.Username = "you"
	}
	if cfg.Prompt == "" {
		cfg.Prompt = "You: "
	}
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &CLIChannel{
		config: cfg,
		in:     in,
		out:    out,
		done:   make(chan struct{}),
	}
}

func (c *CLIChannel) ID() string {
	return "cli"
}

func (c *CLIChannel) session() gateway.SessionContext {
	return gateway.SessionContext{
		ChannelID: c.ID(),
		UserID:    c.config.Username,
		ChatID:    "local",
		Username:  c.config.Username,
	}
}

func (c *CLIChannel) Start(ctx gateway.ChannelContext) error {
	c.printPrompt()
	go func() {
		defer c.close()
		scanner := bufio.NewScanner(c.in)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				c.printPrompt()
				continue
			}
			if line == "exit" || line == "quit" {
				return
			}
			ctx.OnMessage(c.ID(), &gateway.UnifiedMessage{
				Session: c.session(),
				Content: line,
			})
		}
		if err := scanner.Err(); err != nil {
			slog.Error("CLI input error", "error", err)
		}
	}()
	return nil
}

// Done is closed once the user leaves the session.
func (c *CLIChannel) Done() <-chan struct{} {
	return c.done
}

func (c *CLIChannel) close() {
	c.once.Do(func() { close(c.done) })
}

func (c *CLIChannel) Stop() error {
	c.close()
	return nil
}

func (c *CLIChannel) Send(_ gateway.SessionContext, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintf(c.out, "\nAgent: %s\n\n%s", message, c.config.Prompt); err != nil {
		return fmt.Errorf("cli write failed: %w", err)
	}
	return nil
}

func (c *CLIChannel) printPrompt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.out, c.config.Prompt)
}

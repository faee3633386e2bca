package agent

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/llm"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/monitor"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/tools"
)

// ErrNilHistory is returned by Run when no message log is given.
var ErrNilHistory = errors.New("agent: nil chat history")

// Ask appends input as a user message and runs the loop.
func (a *Agent) Ask(ctx context.Context, history *llm.ChatHistory, input string) (string, error) {
	if history == nil {
		return "", ErrNilHistory
	}
	history.Add(llm.NewUserMessage(input))
	return a.Run(ctx, history)
}

// Run drives the loop over history, which the caller owns and may pass to
// later runs to continue the conversation. Every message the loop produces
// is appended to history. Backend errors are returned unmodified; tool
// failures never end the run.
func (a *Agent) Run(ctx context.Context, history *llm.ChatHistory) (string, error) {
	if history == nil {
		return "", ErrNilHistory
	}
	history.EnsureSystemMessage(a.systemPrompt)

	for i := 0; i < a.maxIterations; i++ {
		text, err := a.client.Send(ctx, a.systemPrompt, history.GetMessages(), a.maxTokens)
		if err != nil {
			return "", err
		}

		d := ParseDirective(text)
		if d.State == NoDirective {
			history.Add(llm.NewAssistantMessage(text))
			slog.DebugContext(ctx, "Final answer", "iteration", i+1)
			return text, nil
		}

		history.Add(llm.NewToolCallMessage(text))
		result := a.resolve(ctx, d)
		history.Add(llm.NewToolResultMessage(result))
	}

	slog.InfoContext(ctx, "Iteration budget exhausted, forcing final answer", "max_iterations", a.maxIterations)
	text, err := a.client.Send(ctx, a.finalAnswerPrompt, history.GetMessages(), a.maxTokens)
	if err != nil {
		return "", err
	}
	history.Add(llm.NewAssistantMessage(text))
	return text, nil
}

// resolve turns a found directive into the text of a tool result.
func (a *Agent) resolve(ctx context.Context, d Directive) string {
	if d.Malformed() {
		slog.WarnContext(ctx, "Malformed tool call", "error", d.Err)
		a.observe(monitor.TypeToolCall, d.Raw)
		text := "Error: " + d.Err.Error()
		a.observe(monitor.TypeToolResult, text)
		return text
	}

	a.observe(monitor.TypeToolCall, formatCall(d))
	start := time.Now()
	res := a.registry.Dispatch(ctx, d.Name, d.Arguments)
	text := res.Text(d.Name)
	if res.OK() {
		slog.InfoContext(ctx, "Tool executed", "tool", d.Name, "duration", time.Since(start))
	} else {
		slog.WarnContext(ctx, "Tool failed", "tool", d.Name, "error", res.Err)
	}
	a.observe(monitor.TypeToolResult, text)
	return text
}

func (a *Agent) observe(kind, content string) {
	if !a.demo || a.monitor == nil {
		return
	}
	a.monitor.OnMessage(monitor.MonitorMessage{
		Timestamp:   time.Now(),
		MessageType: kind,
		Username:    a.name,
		Content:     content,
	})
}

func formatCall(d Directive) string {
	args, err := json.MarshalToString(d.Arguments)
	if err != nil {
		args = tools.Stringify(d.Arguments)
	}
	return d.Name + "(" + args + ")"
}

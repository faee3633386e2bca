package agent

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/config"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/llm"
	_ "github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/llm/autoload"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/llm/llmtest"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/monitor"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/tools"
)

func divideTool() tools.Tool {
	return tools.Tool{
		Name:        "divide",
		Description: "Divide two numbers",
		Parameters: []tools.Parameter{
			{Name: "numerator", Type: tools.TypeNumber, Required: true, Description: "Dividend"},
			{Name: "denominator", Type: tools.TypeNumber, Required: true, Description: "Divisor"},
		},
		Handler: func(_ context.Context, args map[string]any) (any, error) {
			d := tools.Number(args, "denominator")
			if d == 0 {
				return nil, errors.New("division by zero")
			}
			return tools.Number(args, "numerator") / d, nil
		},
	}
}

func newTestAgent(t *testing.T, client llm.Client, opts Options) *Agent {
	t.Helper()
	if opts.Name == "" {
		opts.Name = "Test Agent"
	}
	if opts.Description == "" {
		opts.Description = "An agent under test."
	}
	opts.Client = client
	a, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func roles(msgs []llm.Message) []llm.Role {
	out := make([]llm.Role, len(msgs))
	for i, m := range msgs {
		out[i] = m.Role
	}
	return out
}

func TestRunFinalAnswerWithoutTools(t *testing.T) {
	client := llmtest.NewScriptedClient(llmtest.Text("I plan trips."))
	a := newTestAgent(t, client, Options{})

	history := llm.NewChatHistory(llm.NewUserMessage("What do you do?"))
	got, err := a.Run(context.Background(), history)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != "I plan trips." {
		t.Fatalf("Run = %q", got)
	}

	msgs := history.GetMessages()
	want := []llm.Role{llm.RoleSystem, llm.RoleUser, llm.RoleAssistant}
	if r := roles(msgs); !equalRoles(r, want) {
		t.Fatalf("roles = %v, want %v", r, want)
	}
	if msgs[0].Content != a.SystemPrompt() {
		t.Fatal("system message does not hold the agent prompt")
	}

	req := client.Requests()[0]
	if req.SystemPrompt != a.SystemPrompt() {
		t.Fatal("adapter did not receive the system prompt")
	}
	if req.MaxTokens != DefaultMaxTokens {
		t.Fatalf("max tokens = %d, want %d", req.MaxTokens, DefaultMaxTokens)
	}
}

func TestRunToolErrorIsContained(t *testing.T) {
	client := llmtest.NewScriptedClient(
		llmtest.Text(`<tool_call>{"name":"divide","parameters":{"numerator":17,"denominator":0}}</tool_call>`),
		llmtest.Text("That division is undefined."),
	)
	a := newTestAgent(t, client, Options{Tools: []tools.Tool{divideTool()}})

	history := llm.NewChatHistory(llm.NewUserMessage("What is 17 / 0?"))
	got, err := a.Run(context.Background(), history)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != "That division is undefined." {
		t.Fatalf("Run = %q", got)
	}

	msgs := history.GetMessages()
	want := []llm.Role{llm.RoleSystem, llm.RoleUser, llm.RoleToolCall, llm.RoleToolResult, llm.RoleAssistant}
	if r := roles(msgs); !equalRoles(r, want) {
		t.Fatalf("roles = %v, want %v", r, want)
	}
	if !strings.Contains(msgs[3].Content, "Error executing tool 'divide': division by zero") {
		t.Fatalf("tool result = %q", msgs[3].Content)
	}

	second := client.Requests()[1].Messages
	if last := second[len(second)-1]; last.Role != llm.RoleToolResult {
		t.Fatalf("second request did not end with the tool result: %v", last)
	}
}

func TestRunIterationBudget(t *testing.T) {
	call := llmtest.Text(`<tool_call>{"name":"get_weather","parameters":{"location":"Tokyo"}}</tool_call>`)
	client := llmtest.NewScriptedClient(call, call, call,
		llmtest.Text(`Here is what I found. <tool_call>{"name":"get_weather","parameters":{"location":"Paris"}}</tool_call>`))
	a := newTestAgent(t, client, Options{Tools: []tools.Tool{weatherTool()}, MaxIterations: 3})

	history := llm.NewChatHistory(llm.NewUserMessage("Weather?"))
	got, err := a.Run(context.Background(), history)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if client.Calls() != 4 {
		t.Fatalf("calls = %d, want 3 ordinary + 1 forced", client.Calls())
	}
	reqs := client.Requests()
	for i := 0; i < 3; i++ {
		if reqs[i].SystemPrompt != a.SystemPrompt() {
			t.Fatalf("call %d used the wrong system prompt", i+1)
		}
	}
	if reqs[3].SystemPrompt != a.FinalAnswerPrompt() {
		t.Fatal("forced call did not use the final-answer prompt")
	}
	if !strings.Contains(reqs[3].SystemPrompt, "Do NOT attempt to call any more tools") {
		t.Fatal("final-answer prompt does not forbid tools")
	}
	if !strings.HasPrefix(got, "Here is what I found.") || !strings.Contains(got, OpenMarker) {
		t.Fatalf("forced answer should be returned verbatim, got %q", got)
	}
	if n := len(reqs[3].Messages); n != 1+1+3*2 {
		t.Fatalf("forced call saw %d messages, want full history", n)
	}

	last, _ := history.Last()
	if last.Role != llm.RoleAssistant || last.Content != got {
		t.Fatalf("forced answer not appended: %+v", last)
	}
}

func TestRunNoForcedCallWhenAnsweredInBudget(t *testing.T) {
	client := llmtest.NewScriptedClient(
		llmtest.Text(`<tool_call>{"name":"get_weather","parameters":{"location":"Tokyo"}}</tool_call>`),
		llmtest.Text("Sunny in Tokyo."),
	)
	a := newTestAgent(t, client, Options{Tools: []tools.Tool{weatherTool()}, MaxIterations: 2})

	if _, err := a.Run(context.Background(), llm.NewChatHistory(llm.NewUserMessage("Tokyo?"))); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if client.Calls() != 2 {
		t.Fatalf("calls = %d, want 2", client.Calls())
	}
}

func TestRunContinuesConversation(t *testing.T) {
	client := llmtest.NewScriptedClient(
		llmtest.Text(`<tool_call>{"name":"get_weather","parameters":{"location":"Tokyo"}}</tool_call>`),
		llmtest.Text("Sunny in Tokyo."),
		llmtest.Text("Pack sunscreen."),
	)
	a := newTestAgent(t, client, Options{Tools: []tools.Tool{weatherTool()}})
	ctx := context.Background()

	history := llm.NewChatHistory()
	if _, err := a.Ask(ctx, history, "Weather in Tokyo?"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := a.Ask(ctx, history, "What should I pack?"); err != nil {
		t.Fatalf("second run: %v", err)
	}

	sent := client.Requests()[2]
	if sent.SystemPrompt != a.SystemPrompt() {
		t.Fatal("second run lost the system prompt")
	}
	want := []llm.Role{
		llm.RoleSystem, llm.RoleUser, llm.RoleToolCall, llm.RoleToolResult,
		llm.RoleAssistant, llm.RoleUser,
	}
	if r := roles(sent.Messages); !equalRoles(r, want) {
		t.Fatalf("second run context roles = %v, want %v", r, want)
	}

	systems := 0
	for _, m := range history.GetMessages() {
		if m.Role == llm.RoleSystem {
			systems++
		}
	}
	if systems != 1 {
		t.Fatalf("history holds %d system messages, want 1", systems)
	}
}

func TestRunUnknownToolAndEmptyRegistry(t *testing.T) {
	client := llmtest.NewScriptedClient(
		llmtest.Text(`<tool_call>{"name":"get_weather","parameters":{"location":"Tokyo"}}</tool_call>`),
		llmtest.Text("I cannot check the weather."),
	)
	a := newTestAgent(t, client, Options{})

	if strings.Contains(a.SystemPrompt(), OpenMarker) {
		t.Fatal("agent without tools advertises the directive format")
	}

	history := llm.NewChatHistory(llm.NewUserMessage("Weather?"))
	if _, err := a.Run(context.Background(), history); err != nil {
		t.Fatalf("Run: %v", err)
	}
	msgs := history.GetMessages()
	if msgs[3].Role != llm.RoleToolResult || msgs[3].Content != "no such tool: get_weather" {
		t.Fatalf("tool result = %+v", msgs[3])
	}
}

func TestRunMalformedDirectiveIsFedBack(t *testing.T) {
	client := llmtest.NewScriptedClient(
		llmtest.Text(`<tool_call>{"name": "get_weather", "parameters": </tool_call>`),
		llmtest.Text(`<tool_call>{"name": "get_weather", "parameters": {"location": "Oslo"}}</tool_call>`),
		llmtest.Text("Cold in Oslo."),
	)
	a := newTestAgent(t, client, Options{Tools: []tools.Tool{weatherTool()}})

	history := llm.NewChatHistory(llm.NewUserMessage("Oslo?"))
	got, err := a.Run(context.Background(), history)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != "Cold in Oslo." {
		t.Fatalf("Run = %q", got)
	}

	msgs := history.GetMessages()
	if msgs[3].Role != llm.RoleToolResult || !strings.Contains(msgs[3].Content, "malformed tool call") {
		t.Fatalf("malformed directive not reported: %+v", msgs[3])
	}
	if !strings.Contains(msgs[5].Content, "Weather in Oslo") {
		t.Fatalf("second call result = %q", msgs[5].Content)
	}
}

func TestRunArgumentMismatch(t *testing.T) {
	client := llmtest.NewScriptedClient(
		llmtest.Text(`<tool_call>{"name":"get_weather","parameters":{"city":"Tokyo"}}</tool_call>`),
		llmtest.Text("Sorry."),
	)
	a := newTestAgent(t, client, Options{Tools: []tools.Tool{weatherTool()}})

	history := llm.NewChatHistory(llm.NewUserMessage("Tokyo?"))
	if _, err := a.Run(context.Background(), history); err != nil {
		t.Fatalf("Run: %v", err)
	}
	res := history.GetMessages()[3].Content
	if !strings.HasPrefix(res, "Error executing tool 'get_weather': ") {
		t.Fatalf("tool result = %q", res)
	}
}

func TestRunPanicIsContained(t *testing.T) {
	boom := tools.Tool{
		Name:        "boom",
		Description: "Always panics",
		Handler: func(context.Context, map[string]any) (any, error) {
			panic("kaboom")
		},
	}
	client := llmtest.NewScriptedClient(
		llmtest.Text(`<tool_call>{"name":"boom","parameters":{}}</tool_call>`),
		llmtest.Text("Recovered."),
	)
	a := newTestAgent(t, client, Options{Tools: []tools.Tool{boom}})

	history := llm.NewChatHistory(llm.NewUserMessage("go"))
	if _, err := a.Run(context.Background(), history); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res := history.GetMessages()[3].Content; res != "Error executing tool 'boom': kaboom" {
		t.Fatalf("tool result = %q", res)
	}
}

func TestRunBackendErrorPropagates(t *testing.T) {
	backendErr := errors.New("503 service unavailable")
	client := llmtest.NewScriptedClient(
		llmtest.Text(`<tool_call>{"name":"get_weather","parameters":{"location":"Tokyo"}}</tool_call>`),
		llmtest.Fail(backendErr),
	)
	a := newTestAgent(t, client, Options{Tools: []tools.Tool{weatherTool()}})

	_, err := a.Run(context.Background(), llm.NewChatHistory(llm.NewUserMessage("Tokyo?")))
	if err != backendErr {
		t.Fatalf("err = %v, want the backend error unmodified", err)
	}
}

func TestRunNilHistory(t *testing.T) {
	a := newTestAgent(t, llmtest.NewScriptedClient(), Options{})
	if _, err := a.Run(context.Background(), nil); !errors.Is(err, ErrNilHistory) {
		t.Fatalf("err = %v", err)
	}
}

func TestDemoMonitorSeesToolTraffic(t *testing.T) {
	var buf bytes.Buffer
	client := llmtest.NewScriptedClient(
		llmtest.Text(`<tool_call>{"name":"get_weather","parameters":{"location":"Tokyo"}}</tool_call>`),
		llmtest.Text("Sunny."),
	)
	a := newTestAgent(t, client, Options{
		Tools:   []tools.Tool{weatherTool()},
		Demo:    true,
		Monitor: monitor.NewWriterMonitor(&buf),
	})

	history := llm.NewChatHistory(llm.NewUserMessage("Tokyo?"))
	if _, err := a.Run(context.Background(), history); err != nil {
		t.Fatalf("Run: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `get_weather({"location":"Tokyo"})`) || !strings.Contains(out, "Weather in Tokyo") {
		t.Fatalf("monitor output = %q", out)
	}
	if history.Len() != 5 {
		t.Fatalf("demo mode changed the log: %d messages", history.Len())
	}
}

func TestNewValidation(t *testing.T) {
	client := llmtest.NewScriptedClient()
	tests := []struct {
		name string
		opts Options
	}{
		{"missing name", Options{Description: "d", Client: client}},
		{"missing description", Options{Name: "n", Client: client}},
		{"negative iterations", Options{Name: "n", Description: "d", MaxIterations: -1, Client: client}},
		{"negative tokens", Options{Name: "n", Description: "d", MaxTokens: -5, Client: client}},
		{"duplicate tools", Options{Name: "n", Description: "d", Client: client, Tools: []tools.Tool{weatherTool(), weatherTool()}}},
		{"unknown provider", Options{Name: "n", Description: "d", Model: "nowhere/model"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opts); !errors.Is(err, ErrInvalidOptions) {
				t.Fatalf("err = %v, want ErrInvalidOptions", err)
			}
		})
	}
}

func TestNewMissingCredential(t *testing.T) {
	_, err := New(Options{
		Name:        "n",
		Description: "d",
		Model:       "openai/gpt-5-mini",
		Credentials: config.Credentials{},
	})
	if !errors.Is(err, config.ErrMissingCredential) {
		t.Fatalf("err = %v, want ErrMissingCredential", err)
	}
}

func TestNewDefaults(t *testing.T) {
	a := newTestAgent(t, llmtest.NewScriptedClient(), Options{})
	if a.MaxIterations() != DefaultMaxIterations || a.MaxTokens() != DefaultMaxTokens {
		t.Fatalf("defaults = %d/%d", a.MaxIterations(), a.MaxTokens())
	}
	if a.Model() != "scripted/scripted" {
		t.Fatalf("Model = %q", a.Model())
	}
}

func equalRoles(a, b []llm.Role) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

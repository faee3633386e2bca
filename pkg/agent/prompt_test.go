package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/config"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/tools"
)

func weatherTool() tools.Tool {
	return tools.Tool{
		Name:        "get_weather",
		Description: "Get current weather conditions for any location",
		Parameters: []tools.Parameter{
			{Name: "location", Type: tools.TypeString, Required: true, Description: "The location to get weather for"},
		},
		Handler: func(_ context.Context, args map[string]any) (any, error) {
			return "Weather in " + tools.String(args, "location") + ": 72°F, sunny", nil
		},
	}
}

func TestBuildSystemPromptWithTools(t *testing.T) {
	reg, err := tools.NewRegistry(weatherTool())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	prompt := DefaultPrompts().BuildSystemPrompt("Travel Assistant", "Helps plan trips.", "", reg)

	for _, want := range []string{
		"You are Travel Assistant. Helps plan trips.",
		DefaultCustomPrompt,
		"- get_weather: Get current weather conditions for any location",
		OpenMarker,
		CloseMarker,
		`{"name": "tool_name", "parameters": {"param1": "value1", "param2": "value2"}}`,
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("system prompt missing %q:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "{tool_descriptions}") || strings.Contains(prompt, "{agent_name}") {
		t.Fatalf("unsubstituted placeholder in prompt:\n%s", prompt)
	}

	again := DefaultPrompts().BuildSystemPrompt("Travel Assistant", "Helps plan trips.", "", reg)
	if prompt != again {
		t.Fatal("system prompt is not deterministic")
	}
}

func TestBuildSystemPromptWithoutTools(t *testing.T) {
	reg, _ := tools.NewRegistry()
	prompt := DefaultPrompts().BuildSystemPrompt("Bot", "A bot.", "Be brief.", reg)

	if strings.Contains(prompt, OpenMarker) || strings.Contains(prompt, "tools") {
		t.Fatalf("prompt without tools mentions tool calling:\n%s", prompt)
	}
	if prompt != "You are Bot. A bot.\n\nBe brief." {
		t.Fatalf("unexpected prompt %q", prompt)
	}
}

func TestBuildFinalAnswerPrompt(t *testing.T) {
	p := DefaultPrompts()
	final := p.BuildFinalAnswerPrompt("Bot", "A bot.", "")

	if !strings.HasPrefix(final, "You are Bot. A bot.") {
		t.Fatalf("final prompt lost identity:\n%s", final)
	}
	if !strings.Contains(final, "Do NOT attempt to call any more tools") {
		t.Fatalf("final prompt does not forbid tool calls:\n%s", final)
	}
	if strings.Contains(final, "To call a tool") {
		t.Fatalf("final prompt still invites tool calls:\n%s", final)
	}
}

func TestPromptsFromConfig(t *testing.T) {
	p := PromptsFromConfig(config.PromptConfig{Identity: "I am {agent_name}.", CustomDefault: "x"})
	if p.Identity != "I am {agent_name}." {
		t.Fatalf("identity override ignored: %q", p.Identity)
	}
	if p.ToolInstructions != DefaultToolInstructionsTemplate || p.FinalAnswer != DefaultFinalAnswerTemplate {
		t.Fatal("empty overrides replaced defaults")
	}

	reg, _ := tools.NewRegistry()
	if got := p.BuildSystemPrompt("Bot", "unused", "", reg); got != "I am Bot." {
		t.Fatalf("BuildSystemPrompt = %q", got)
	}
}

package agent

import (
	"strings"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/config"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/tools"
)

// Default prompt templates. Placeholders are substituted literally, so
// braces elsewhere in a template (like the directive example) are kept.
const (
	DefaultIdentityTemplate = "You are {agent_name}. {agent_description}\n\n{custom_prompt}"

	DefaultCustomPrompt = "Your goal is to be as helpful as possible to the user."

	DefaultToolInstructionsTemplate = `You have access to the following tools that you MAY use when particularly relevant:

{tool_descriptions}

To call a tool, respond with EXACTLY this format:
` + OpenMarker + `
{"name": "tool_name", "parameters": {"param1": "value1", "param2": "value2"}}
` + CloseMarker + `

Important guidelines:
- Only use tools when they are specifically relevant and necessary to answer the user's question
- You can respond directly without using any tools if you already have sufficient information
- Only call ONE tool at a time and wait for its result before deciding the next step
- If you need more information from the user to use a tool effectively, ask them first`

	DefaultFinalAnswerTemplate = `You have reached the maximum number of tool calls for this conversation.
The conversation history contains all the tool results gathered so far.
Based on the information available, provide the best final answer you can to the user's question.
Do NOT attempt to call any more tools and do NOT emit a ` + OpenMarker + ` block. Just synthesize the information you have and respond directly, even if the answer is incomplete.`
)

// Prompts holds the templates a system prompt is built from.
type Prompts struct {
	Identity         string
	ToolInstructions string
	FinalAnswer      string
	CustomDefault    string
}

// DefaultPrompts returns the built-in templates.
func DefaultPrompts() Prompts {
	return Prompts{
		Identity:         DefaultIdentityTemplate,
		ToolInstructions: DefaultToolInstructionsTemplate,
		FinalAnswer:      DefaultFinalAnswerTemplate,
		CustomDefault:    DefaultCustomPrompt,
	}
}

// PromptsFromConfig overlays non-empty config overrides on the defaults.
func PromptsFromConfig(cfg config.PromptConfig) Prompts {
	p := DefaultPrompts()
	if cfg.Identity != "" {
		p.Identity = cfg.Identity
	}
	if cfg.ToolInstructions != "" {
		p.ToolInstructions = cfg.ToolInstructions
	}
	if cfg.FinalAnswer != "" {
		p.FinalAnswer = cfg.FinalAnswer
	}
	if cfg.CustomDefault != "" {
		p.CustomDefault = cfg.CustomDefault
	}
	return p
}

func (p Prompts) identity(name, description, custom string) string {
	if custom == "" {
		custom = p.CustomDefault
	}
	r := strings.NewReplacer(
		"{agent_name}", name,
		"{agent_description}", description,
		"{custom_prompt}", custom,
	)
	return strings.TrimSpace(r.Replace(p.Identity))
}

// BuildSystemPrompt renders the identity followed by the tool-call
// instructions. With an empty registry the instructions are left out.
func (p Prompts) BuildSystemPrompt(name, description, custom string, registry *tools.Registry) string {
	identity := p.identity(name, description, custom)
	if registry.Len() == 0 {
		return identity
	}
	instructions := strings.ReplaceAll(p.ToolInstructions, "{tool_descriptions}", registry.Describe())
	return identity + "\n\n" + instructions
}

// BuildFinalAnswerPrompt renders the prompt used once the iteration budget
// is spent. It never lists tools.
func (p Prompts) BuildFinalAnswerPrompt(name, description, custom string) string {
	return p.identity(name, description, custom) + "\n\n" + p.FinalAnswer
}

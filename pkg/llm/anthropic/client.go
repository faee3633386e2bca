package anthropic

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/llm"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Client wraps the Anthropic Messages API.
type Client struct {
	client       *anthropic.Client
	model        string
	debugEnabled bool
}

// NewClient creates an Anthropic client bound to one model.
func NewClient(apiKey, model string, extra ...option.RequestOption) *Client {
	opts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, extra...)
	cl := anthropic.NewClient(opts...)
	return &Client{
		client: &cl,
		model:  model,
	}
}

func (c *Client) Provider() llm.Provider { return llm.ProviderAnthropic }

func (c *Client) Model() string { return c.model }

func (c *Client) SetDebug(enabled bool) {
	c.debugEnabled = enabled
}

func (c *Client) IsTransientError(err error) bool {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		// 529 is Anthropic's "overloaded"
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return llm.IsTransientMessage(err)
}

// Send implements llm.Client. The system prompt goes into the top-level
// system field; the API requires it to stay out of the turn list.
func (c *Client) Send(ctx context.Context, systemPrompt string, messages []llm.Message, maxTokens int) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages:  convertMessages(messages),
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}

	debugger := llm.NewPayloadDebugger(ctx, llm.ProviderAnthropic, c.debugEnabled)
	defer debugger.Close()
	debugger.WriteJSON("request", params)

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}
	debugger.WriteString("response: " + msg.RawJSON())

	if msg.StopReason == anthropic.StopReasonMaxTokens {
		slog.WarnContext(ctx, "Response truncated due to max tokens", "provider", "anthropic", "model", c.model)
	}

	var b strings.Builder
	for _, cb := range msg.Content {
		if tb, ok := cb.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	return b.String(), nil
}

// convertMessages builds strictly alternating turns starting with the user,
// as the Messages API requires.
func convertMessages(messages []llm.Message) []anthropic.MessageParam {
	turns := llm.MergeTurns(llm.Turns(messages))
	if len(turns) > 0 && turns[0].Assistant {
		turns = append([]llm.Turn{{Text: "(conversation continues)"}}, turns...)
	}

	out := make([]anthropic.MessageParam, 0, len(turns))
	for _, t := range turns {
		if t.Assistant {
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Text)))
		} else {
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Text)))
		}
	}
	return out
}

package openailm

import (
	"context"
	"errors"
	"net/http"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/llm"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

// Client is a wrapper around the official OpenAI Go SDK using the Responses API.
type Client struct {
	client       *openai.Client
	model        string
	debugEnabled bool
}

// NewClient creates a new OpenAI client. baseURL may be empty.
func NewClient(apiKey string, model string, baseURL string, extra ...option.RequestOption) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	opts = append(opts, extra...)

	client := openai.NewClient(opts...)

	return &Client{
		client: &client,
		model:  model,
	}
}

func (c *Client) Provider() llm.Provider { return llm.ProviderOpenAI }

func (c *Client) Model() string { return c.model }

func (c *Client) SetDebug(enabled bool) {
	c.debugEnabled = enabled
}

func (c *Client) IsTransientError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return llm.IsTransientMessage(err)
}

// Send implements llm.Client. The system prompt travels inline as the first
// system-role input item.
func (c *Client) Send(ctx context.Context, systemPrompt string, messages []llm.Message, maxTokens int) (string, error) {
	params := responses.ResponseNewParams{
		Model: c.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: convertMessages(systemPrompt, messages),
		},
	}
	if maxTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(maxTokens))
	}

	debugger := llm.NewPayloadDebugger(ctx, llm.ProviderOpenAI, c.debugEnabled)
	defer debugger.Close()
	debugger.WriteJSON("request", params)

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return "", err
	}
	debugger.WriteString("response: " + resp.RawJSON())

	return resp.OutputText(), nil
}

func convertMessages(systemPrompt string, messages []llm.Message) []responses.ResponseInputItemUnionParam {
	turns := llm.Turns(messages)
	items := make([]responses.ResponseInputItemUnionParam, 0, len(turns)+1)

	if systemPrompt != "" {
		items = append(items, responses.ResponseInputItemParamOfMessage(
			systemPrompt,
			responses.EasyInputMessageRoleSystem,
		))
	}

	for _, t := range turns {
		role := responses.EasyInputMessageRoleUser
		if t.Assistant {
			role = responses.EasyInputMessageRoleAssistant
		}
		items = append(items, responses.ResponseInputItemParamOfMessage(t.Text, role))
	}
	return items
}

// Package openaicompat talks to any endpoint speaking the OpenAI Chat
// Completions protocol (OpenRouter, vLLM, DeepSeek, LM Studio).
package openaicompat

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/llm"

	openai "github.com/sashabaranov/go-openai"
)

// Client wraps go-openai's chat completion client.
type Client struct {
	client       *openai.Client
	model        string
	debugEnabled bool
}

// NewClient creates a client for baseURL. An empty baseURL uses api.openai.com.
func NewClient(apiKey, baseURL, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (c *Client) Provider() llm.Provider { return llm.ProviderOpenAICompatible }

func (c *Client) Model() string { return c.model }

func (c *Client) SetDebug(enabled bool) {
	c.debugEnabled = enabled
}

func (c *Client) IsTransientError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	return llm.IsTransientMessage(err)
}

// Send implements llm.Client. The system prompt is the first chat message.
func (c *Client) Send(ctx context.Context, systemPrompt string, messages []llm.Message, maxTokens int) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  convertMessages(systemPrompt, messages),
		MaxTokens: maxTokens,
	}

	debugger := llm.NewPayloadDebugger(ctx, llm.ProviderOpenAICompatible, c.debugEnabled)
	defer debugger.Close()
	debugger.WriteJSON("request", req)

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	debugger.WriteJSON("response", resp)

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", c.model)
	}
	return resp.Choices[0].Message.Content, nil
}

func convertMessages(systemPrompt string, messages []llm.Message) []openai.ChatCompletionMessage {
	turns := llm.Turns(messages)
	out := make([]openai.ChatCompletionMessage, 0, len(turns)+1)

	if systemPrompt != "" {
		out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	}
	for _, t := range turns {
		role := openai.ChatMessageRoleUser
		if t.Assistant {
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: t.Text})
	}
	return out
}

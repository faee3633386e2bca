package ollama

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/llm"

	"github.com/ollama/ollama/api"
)

// OllamaClient Ollama API client
type OllamaClient struct {
	client       *api.Client
	model        string
	debugEnabled bool
}

// SetDebug implements llm.DebugSetter
func (o *OllamaClient) SetDebug(enabled bool) {
	o.debugEnabled = enabled
}

// NewOllamaClient creates an Ollama client for baseURL (e.g. http://localhost:11434).
func NewOllamaClient(model string, baseURL string) (*OllamaClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("ollama base URL is empty")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	// Local models can take minutes to load; only the dial is bounded.
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	httpClient := &http.Client{
		Transport: &escapeFixingTransport{next: transport},
	}

	slog.Info("Ollama client initialized", "model", model, "base_url", baseURL)

	return &OllamaClient{
		client: api.NewClient(u, httpClient),
		model:  model,
	}, nil
}

func (o *OllamaClient) Provider() llm.Provider { return llm.ProviderOllama }

func (o *OllamaClient) Model() string { return o.model }

// Send implements llm.Client with a single non-streaming /api/chat call.
// The system prompt is the first message with the system role.
func (o *OllamaClient) Send(ctx context.Context, systemPrompt string, messages []llm.Message, maxTokens int) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    o.model,
		Messages: convertMessages(systemPrompt, messages),
		Stream:   &stream,
	}
	if maxTokens > 0 {
		req.Options = map[string]any{"num_predict": maxTokens}
	}

	debugger := llm.NewPayloadDebugger(ctx, llm.ProviderOllama, o.debugEnabled)
	defer debugger.Close()
	debugger.WriteJSON("request", req)

	var content strings.Builder
	err := o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		debugger.WriteJSON("response", resp)
		content.WriteString(resp.Message.Content)
		if resp.Done && resp.DoneReason == "length" {
			slog.WarnContext(ctx, "Response truncated due to length", "provider", "ollama", "model", o.model)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return content.String(), nil
}

// convertMessages converts the log to Ollama API messages.
func convertMessages(systemPrompt string, messages []llm.Message) []api.Message {
	turns := llm.Turns(messages)
	out := make([]api.Message, 0, len(turns)+1)

	if systemPrompt != "" {
		out = append(out, api.Message{Role: "system", Content: systemPrompt})
	}
	for _, t := range turns {
		role := "user"
		if t.Assistant {
			role = "assistant"
		}
		out = append(out, api.Message{Role: role, Content: t.Text})
	}
	return out
}

// IsTransientError implements llm.Client
func (o *OllamaClient) IsTransientError(err error) bool {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}
	return llm.IsTransientMessage(err)
}

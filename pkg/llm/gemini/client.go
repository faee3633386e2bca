package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/llm"

	"google.golang.org/genai"
)

// GeminiClient Google Gemini API client
type GeminiClient struct {
	client       *genai.Client
	model        string
	debugEnabled bool
}

// NewGeminiClient creates a Gemini client bound to one model and API key.
func NewGeminiClient(ctx context.Context, apiKey string, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  model,
	}, nil
}

func (g *GeminiClient) Provider() llm.Provider { return llm.ProviderGemini }

func (g *GeminiClient) Model() string { return g.model }

// SetDebug implements llm.DebugSetter
func (g *GeminiClient) SetDebug(enabled bool) {
	g.debugEnabled = enabled
}

// Send implements llm.Client. The system prompt is sent as SystemInstruction,
// except for Gemma models which have no system role and get it folded into
// the first user turn.
func (g *GeminiClient) Send(ctx context.Context, systemPrompt string, messages []llm.Message, maxTokens int) (string, error) {
	contents, systemInstruction := convertMessages(g.model, systemPrompt, messages)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction,
	}
	if maxTokens > 0 {
		cfg.MaxOutputTokens = int32(maxTokens)
	}

	debugger := llm.NewPayloadDebugger(ctx, llm.ProviderGemini, g.debugEnabled)
	defer debugger.Close()
	debugger.WriteJSON("request", map[string]any{"contents": contents, "config": cfg})

	slog.DebugContext(ctx, "Gemini request", "model", g.model, "turns", len(contents))
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", err
	}
	debugger.WriteJSON("response", resp)

	for _, candidate := range resp.Candidates {
		if candidate.FinishReason == genai.FinishReasonMaxTokens {
			slog.WarnContext(ctx, "Response truncated due to max tokens", "provider", "gemini", "model", g.model)
		}
	}

	return resp.Text(), nil
}

// IsTransientError implements llm.Client
func (g *GeminiClient) IsTransientError(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}
	return llm.IsTransientMessage(err)
}

// supportsSystemInstruction is false for Gemma models served through the Gemini API.
func supportsSystemInstruction(model string) bool {
	return !strings.HasPrefix(strings.ToLower(model), "gemma")
}

// convertMessages converts the log into GenAI contents plus an optional SystemInstruction.
func convertMessages(model, systemPrompt string, messages []llm.Message) ([]*genai.Content, *genai.Content) {
	turns := llm.MergeTurns(llm.Turns(messages))

	var systemInstruction *genai.Content
	if systemPrompt != "" {
		if supportsSystemInstruction(model) {
			systemInstruction = &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}}
		} else if len(turns) > 0 && !turns[0].Assistant {
			turns[0].Text = systemPrompt + "\n\n" + turns[0].Text
		} else {
			turns = append([]llm.Turn{{Text: systemPrompt}}, turns...)
		}
	}

	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		role := genai.Role(genai.RoleUser)
		if t.Assistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Text, role))
	}
	return contents, systemInstruction
}
